package services

import (
	"context"
	"io"
	"sync"

	"food-ordering/libs"
	"food-ordering/models"
)

// MockAPI implements SessionAPI and AdminAPI for testing. Calls are
// recorded; the *Err fields make the matching call fail.
type MockAPI struct {
	mu sync.Mutex

	Foods     []models.FoodItem
	Snapshot  *models.CartSnapshot
	Order     *models.PaymentOrder
	Orders    []models.Order
	LoginResp *models.LoginResponse
	User      *models.User

	// GetCartGate, when set, blocks GetCart until it is closed.
	GetCartGate chan struct{}

	ListFoodsErr    error
	GetCartErr      error
	SaveCartErr     error
	RemoveErr       error
	RemoveLegacyErr error
	ClearErr        error
	CreateOrderErr  error
	VerifyErr       error
	DeleteOrderErr  error
	LoginErr        error
	ProfileErr      error

	ListFoodsCalls    int
	GetCartCalls      int
	Saves             []models.QuantityMap
	SaveTokens        []string
	RemoveCalls       []int
	RemoveLegacyCalls []int
	ClearCalls        int
	CreatedOrders     []models.CreateOrderRequest
	Verifications     []models.VerifyPaymentRequest
	DeletedOrders     []string
	AddedFoods        []models.CreateFoodRequest
	DeletedFoods      []int
	StatusUpdates     map[string]string
}

func (m *MockAPI) ListFoods(_ context.Context) ([]models.FoodItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListFoodsCalls++
	if m.ListFoodsErr != nil {
		return nil, m.ListFoodsErr
	}
	return append([]models.FoodItem(nil), m.Foods...), nil
}

func (m *MockAPI) GetCart(ctx context.Context, _ string) (*models.CartSnapshot, error) {
	m.mu.Lock()
	m.GetCartCalls++
	gate := m.GetCartGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetCartErr != nil {
		return nil, m.GetCartErr
	}
	if m.Snapshot == nil {
		return &models.CartSnapshot{Items: map[string]int{}}, nil
	}
	snap := *m.Snapshot
	snap.Items = make(map[string]int, len(m.Snapshot.Items))
	for k, v := range m.Snapshot.Items {
		snap.Items[k] = v
	}
	return &snap, nil
}

func (m *MockAPI) SaveCart(_ context.Context, token string, items models.QuantityMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves = append(m.Saves, items.Clone())
	m.SaveTokens = append(m.SaveTokens, token)
	return m.SaveCartErr
}

func (m *MockAPI) RemoveCartItem(_ context.Context, _ string, foodID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls = append(m.RemoveCalls, foodID)
	return m.RemoveErr
}

func (m *MockAPI) RemoveCartItemLegacy(_ context.Context, _ string, foodID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveLegacyCalls = append(m.RemoveLegacyCalls, foodID)
	return m.RemoveLegacyErr
}

func (m *MockAPI) ClearCart(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	return m.ClearErr
}

func (m *MockAPI) CreateOrder(_ context.Context, _ string, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedOrders = append(m.CreatedOrders, req)
	if m.CreateOrderErr != nil {
		return nil, m.CreateOrderErr
	}
	if m.Order == nil {
		return nil, nil
	}
	o := *m.Order
	return &o, nil
}

func (m *MockAPI) VerifyPayment(_ context.Context, _ string, req models.VerifyPaymentRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Verifications = append(m.Verifications, req)
	return m.VerifyErr
}

func (m *MockAPI) DeleteOrder(_ context.Context, _ string, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedOrders = append(m.DeletedOrders, orderID)
	return m.DeleteOrderErr
}

func (m *MockAPI) ListOrders(_ context.Context, _ string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Orders, nil
}

func (m *MockAPI) Login(_ context.Context, _ models.LoginRequest) (*models.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LoginResp, m.LoginErr
}

func (m *MockAPI) Register(_ context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LoginResp, m.LoginErr
}

func (m *MockAPI) Profile(_ context.Context, _ string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	return m.User, nil
}

func (m *MockAPI) AddFood(_ context.Context, req models.CreateFoodRequest, image io.Reader, _ string) (*models.FoodItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := io.Copy(io.Discard, image); err != nil {
		return nil, err
	}
	m.AddedFoods = append(m.AddedFoods, req)
	return &models.FoodItem{ID: len(m.AddedFoods), Name: req.Name, Category: req.Category}, nil
}

func (m *MockAPI) DeleteFood(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedFoods = append(m.DeletedFoods, id)
	return nil
}

func (m *MockAPI) ListAllOrders(_ context.Context, _ string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Orders, nil
}

func (m *MockAPI) UpdateOrderStatus(_ context.Context, _ string, orderID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusUpdates == nil {
		m.StatusUpdates = make(map[string]string)
	}
	m.StatusUpdates[orderID] = status
	return nil
}

func (m *MockAPI) saves() []models.QuantityMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.QuantityMap(nil), m.Saves...)
}

func (m *MockAPI) set(fn func(m *MockAPI)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

func notFound() error {
	return &libs.APIError{Status: 404, Message: "Not Found"}
}

// MockNotifier records user-facing messages.
type MockNotifier struct {
	mu     sync.Mutex
	Infos  []string
	Errors []string
}

func (n *MockNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Infos = append(n.Infos, msg)
}

func (n *MockNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, msg)
}

type MockNavigator struct {
	mu    sync.Mutex
	Views []string
}

func (n *MockNavigator) Navigate(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Views = append(n.Views, view)
}

// MockWidget hands out tasks the test settles itself.
type MockWidget struct {
	OpenErr  error
	Requests []PaymentRequest
	Tasks    chan *PaymentTask
}

func NewMockWidget() *MockWidget {
	return &MockWidget{Tasks: make(chan *PaymentTask, 1)}
}

func (w *MockWidget) Open(_ context.Context, req PaymentRequest) (*PaymentTask, error) {
	if w.OpenErr != nil {
		return nil, w.OpenErr
	}
	w.Requests = append(w.Requests, req)
	task := NewPaymentTask(nil)
	w.Tasks <- task
	return task, nil
}
