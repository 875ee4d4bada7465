package services

import (
	"context"
	"io"

	"food-ordering/models"
)

// CatalogAPI is the part of the API the catalog needs.
type CatalogAPI interface {
	ListFoods(ctx context.Context) ([]models.FoodItem, error)
}

type CartAPI interface {
	GetCart(ctx context.Context, token string) (*models.CartSnapshot, error)
	SaveCart(ctx context.Context, token string, items models.QuantityMap) error
	RemoveCartItem(ctx context.Context, token string, foodID int) error
	RemoveCartItemLegacy(ctx context.Context, token string, foodID int) error
	ClearCart(ctx context.Context, token string) error
}

type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, req models.CreateOrderRequest) (*models.PaymentOrder, error)
	VerifyPayment(ctx context.Context, token string, req models.VerifyPaymentRequest) error
	DeleteOrder(ctx context.Context, token, orderID string) error
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
}

type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error)
	Profile(ctx context.Context, token string) (*models.User, error)
}

type AdminAPI interface {
	ListFoods(ctx context.Context) ([]models.FoodItem, error)
	AddFood(ctx context.Context, req models.CreateFoodRequest, image io.Reader, filename string) (*models.FoodItem, error)
	DeleteFood(ctx context.Context, id int) error
	ListAllOrders(ctx context.Context, token string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, token, orderID, status string) error
}

// Notifier shows short user-facing messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Views a front end can be sent to.
const (
	ViewLogin    = "login"
	ViewMyOrders = "myorders"
	ViewCart     = "cart"
)

type Navigator interface {
	Navigate(view string)
}
