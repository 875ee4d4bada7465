package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"food-ordering/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AdminService backs the admin panel: the food list and order handling.
type AdminService struct {
	api    AdminAPI
	token  string
	logger *zap.Logger
}

func NewAdminService(api AdminAPI, token string, logger *zap.Logger) *AdminService {
	return &AdminService{api: api, token: token, logger: logger}
}

// AddFood checks the form before uploading it with its image.
func (a *AdminService) AddFood(ctx context.Context, req models.CreateFoodRequest, image io.Reader, filename string) (*models.FoodItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !models.IsCategory(req.Category) {
		return nil, fmt.Errorf("unknown category %q", req.Category)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("price must be a positive number, got %q", req.Price)
	}
	req.Price = price.String()
	if image == nil {
		return nil, fmt.Errorf("image is required")
	}

	food, err := a.api.AddFood(ctx, req, image, filename)
	if err != nil {
		a.logger.Error("failed to add food", zap.String("name", req.Name), zap.Error(err))
		return nil, fmt.Errorf("add food: %w", err)
	}
	a.logger.Info("food added", zap.Int("food_id", food.ID), zap.String("name", food.Name))
	return food, nil
}

func (a *AdminService) ListFoods(ctx context.Context) ([]models.FoodItem, error) {
	foods, err := a.api.ListFoods(ctx)
	if err != nil {
		a.logger.Error("failed to list foods", zap.Error(err))
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

func (a *AdminService) RemoveFood(ctx context.Context, id int) error {
	if err := a.api.DeleteFood(ctx, id); err != nil {
		a.logger.Error("failed to remove food", zap.Int("food_id", id), zap.Error(err))
		return fmt.Errorf("remove food %d: %w", id, err)
	}
	a.logger.Info("food removed", zap.Int("food_id", id))
	return nil
}

func (a *AdminService) ListOrders(ctx context.Context) ([]models.Order, error) {
	if a.token == "" {
		return nil, ErrNotAuthenticated
	}
	orders, err := a.api.ListAllOrders(ctx, a.token)
	if err != nil {
		a.logger.Error("failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (a *AdminService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if a.token == "" {
		return ErrNotAuthenticated
	}
	if !models.IsOrderStatus(status) {
		return fmt.Errorf("unknown order status %q", status)
	}
	if err := a.api.UpdateOrderStatus(ctx, a.token, orderID, status); err != nil {
		a.logger.Error("failed to update order status",
			zap.String("order_id", orderID), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	return nil
}
