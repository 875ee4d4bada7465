package repositories

import (
	"context"
	"errors"

	"food-ordering/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type FoodRepository interface {
	List(ctx context.Context) ([]models.FoodItem, error)
	Get(ctx context.Context, id int) (*models.FoodItem, error)
	Create(ctx context.Context, food *models.FoodItem) error
	// Delete removes the item and returns it so its image can be dropped.
	Delete(ctx context.Context, id int) (*models.FoodItem, error)
}

// CartRepository stores one cart per user. A user without a stored cart
// has an empty one.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.CartSnapshot, error)
	Save(ctx context.Context, userID string, items models.QuantityMap) (*models.CartSnapshot, error)
	RemoveItem(ctx context.Context, userID string, foodID int) error
	Clear(ctx context.Context, userID string) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories backing the sandbox API.
type Store struct {
	Users  UserRepository
	Foods  FoodRepository
	Carts  CartRepository
	Orders OrderRepository
}
