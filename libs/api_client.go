package libs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-ordering/models"

	"go.uber.org/zap"
)

var ErrOrderNotCreated = errors.New("order was not created")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFoundClass reports whether err says the endpoint itself is absent
// rather than that the request failed.
func IsNotFoundClass(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return true
	}
	return false
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// APIClient talks to the food-ordering REST API.
type APIClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *APIClient) ListFoods(ctx context.Context) ([]models.FoodItem, error) {
	var foods []models.FoodItem
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/foods", "", nil, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// AddFood uploads a new food item as multipart form data.
func (c *APIClient) AddFood(ctx context.Context, req models.CreateFoodRequest, image io.Reader, filename string) (*models.FoodItem, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":        req.Name,
		"description": req.Description,
		"category":    req.Category,
		"price":       req.Price,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if image != nil {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, image); err != nil {
			return nil, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var food models.FoodItem
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/foods", "", &buf, w.FormDataContentType(), &food); err != nil {
		return nil, err
	}
	return &food, nil
}

func (c *APIClient) DeleteFood(ctx context.Context, id int) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/foods/"+strconv.Itoa(id), "", nil, nil)
	return err
}

func (c *APIClient) GetCart(ctx context.Context, token string) (*models.CartSnapshot, error) {
	var snap models.CartSnapshot
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/cart", token, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *APIClient) SaveCart(ctx context.Context, token string, items models.QuantityMap) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/api/v1/cart/save", token, models.SaveCartRequest{Items: items.Wire()}, nil)
	return err
}

func (c *APIClient) RemoveCartItem(ctx context.Context, token string, foodID int) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/cart/remove/"+strconv.Itoa(foodID), token, nil, nil)
	return err
}

// RemoveCartItemLegacy uses the older body-addressed remove endpoint.
func (c *APIClient) RemoveCartItemLegacy(ctx context.Context, token string, foodID int) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/v1/cart/remove", token, models.RemoveCartItemRequest{FoodID: foodID}, nil)
	return err
}

func (c *APIClient) ClearCart(ctx context.Context, token string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/cart", token, nil, nil)
	return err
}

// CreateOrder submits the order and returns the provider payment order.
// The answer must be 201 or carry the created status.
func (c *APIClient) CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	status, err := c.doJSON(ctx, http.MethodPost, "/api/v1/orders/create", token, req, &order)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && order.Status != models.PaymentStatusCreated {
		return nil, fmt.Errorf("%w: status %d", ErrOrderNotCreated, status)
	}
	return &order, nil
}

func (c *APIClient) VerifyPayment(ctx context.Context, token string, req models.VerifyPaymentRequest) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/v1/orders/verify", token, req, nil)
	return err
}

func (c *APIClient) DeleteOrder(ctx context.Context, token, orderID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/orders/"+orderID, token, nil, nil)
	return err
}

func (c *APIClient) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var orders []models.Order
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAllOrders walks every page of the admin order list.
func (c *APIClient) ListAllOrders(ctx context.Context, token string) ([]models.Order, error) {
	const limit = 100
	var all []models.Order
	for page := 1; ; page++ {
		var batch []models.Order
		path := fmt.Sprintf("/api/v1/orders/all?page=%d&limit=%d", page, limit)
		if _, err := c.doJSON(ctx, http.MethodGet, path, token, nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < limit {
			return all, nil
		}
	}
}

func (c *APIClient) UpdateOrderStatus(ctx context.Context, token, orderID, status string) error {
	_, err := c.doJSON(ctx, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", token, models.UpdateOrderStatusRequest{Status: status}, nil)
	return err
}

func (c *APIClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the owner of token.
func (c *APIClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) doJSON(ctx context.Context, method, path, token string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, reader, contentType, out)
}

// do sends the request and unwraps the {success, message, data} envelope
// into out.
func (c *APIClient) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errResp models.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Message != "" {
			apiErr.Message = errResp.Message
			apiErr.Detail = errResp.Error
		}
		c.logger.Warn("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return resp.StatusCode, apiErr
	}

	if out == nil || len(raw) == 0 {
		return resp.StatusCode, nil
	}

	envelope := struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response data: %w", err)
	}
	return resp.StatusCode, nil
}
