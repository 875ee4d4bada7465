package repositories

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"food-ordering/models"

	"github.com/google/uuid"
)

// NewMemoryStore returns a Store that keeps everything in process memory.
func NewMemoryStore() *Store {
	return &Store{
		Users:  &memoryUsers{byID: make(map[string]models.User)},
		Foods:  &memoryFoods{byID: make(map[int]models.FoodItem)},
		Carts:  &memoryCarts{byUser: make(map[string]*models.CartSnapshot)},
		Orders: &memoryOrders{byID: make(map[string]models.Order)},
	}
}

type memoryUsers struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	r.byID[user.ID] = *user
	return nil
}

func (r *memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

type memoryFoods struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]models.FoodItem
}

func (r *memoryFoods) List(_ context.Context) ([]models.FoodItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	foods := make([]models.FoodItem, 0, len(r.byID))
	for _, f := range r.byID {
		foods = append(foods, f)
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].ID < foods[j].ID })
	return foods, nil
}

func (r *memoryFoods) Get(_ context.Context, id int) (*models.FoodItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

func (r *memoryFoods) Create(_ context.Context, food *models.FoodItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	food.ID = r.nextID
	food.CreatedAt = time.Now()
	r.byID[food.ID] = *food
	return nil
}

func (r *memoryFoods) Delete(_ context.Context, id int) (*models.FoodItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.byID, id)
	return &f, nil
}

type memoryCarts struct {
	mu     sync.Mutex
	byUser map[string]*models.CartSnapshot
}

func (r *memoryCarts) Get(_ context.Context, userID string) (*models.CartSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return copySnapshot(r.cart(userID)), nil
}

func (r *memoryCarts) Save(_ context.Context, userID string, items models.QuantityMap) (*models.CartSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.cart(userID)
	cart.Items = make(map[string]int, len(items))
	for id, n := range items.Wire() {
		if n > 0 {
			cart.Items[id] = n
		}
	}
	return copySnapshot(cart), nil
}

func (r *memoryCarts) RemoveItem(_ context.Context, userID string, foodID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cart(userID).Items, strconv.Itoa(foodID))
	return nil
}

func (r *memoryCarts) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cart(userID).Items = map[string]int{}
	return nil
}

// cart returns the user's cart, creating it on first use. Callers hold mu.
func (r *memoryCarts) cart(userID string) *models.CartSnapshot {
	cart, ok := r.byUser[userID]
	if !ok {
		cart = &models.CartSnapshot{ID: uuid.NewString(), UserID: userID, Items: map[string]int{}}
		r.byUser[userID] = cart
	}
	return cart
}

func copySnapshot(s *models.CartSnapshot) *models.CartSnapshot {
	out := &models.CartSnapshot{ID: s.ID, UserID: s.UserID, Items: make(map[string]int, len(s.Items))}
	for k, v := range s.Items {
		out.Items[k] = v
	}
	return out
}

type memoryOrders struct {
	mu   sync.RWMutex
	byID map[string]models.Order
}

func (r *memoryOrders) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, ok := r.byID[order.ID]; ok {
		return ErrAlreadyExists
	}
	if order.Date.IsZero() {
		order.Date = time.Now()
	}
	r.byID[order.ID] = *order
	return nil
}

func (r *memoryOrders) Get(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *memoryOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *memoryOrders) ListAll(_ context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

func (r *memoryOrders) list(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range r.byID {
		if keep(o) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
	return orders
}

func (r *memoryOrders) MarkPaid(_ context.Context, id string) error {
	return r.update(id, func(o *models.Order) { o.Payment = true })
}

func (r *memoryOrders) UpdateStatus(_ context.Context, id, status string) error {
	return r.update(id, func(o *models.Order) { o.Status = status })
}

func (r *memoryOrders) update(id string, fn func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(&o)
	r.byID[id] = o
	return nil
}

func (r *memoryOrders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
