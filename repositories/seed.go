package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-ordering/models"
	"food-ordering/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var defaultMenu = []models.FoodItem{
	{Name: "Chicken Biryani", Description: "Dum cooked basmati rice with spiced chicken", Category: models.CategoryBiryani, Price: decimal.NewFromInt(250)},
	{Name: "Veg Burger", Description: "Crispy patty, lettuce and house sauce", Category: models.CategoryBurger, Price: decimal.NewFromInt(120)},
	{Name: "Chocolate Cake", Description: "Slice of dark chocolate truffle cake", Category: models.CategoryCake, Price: decimal.NewFromInt(90)},
	{Name: "Mango Ice-Cream", Description: "Two scoops of alphonso mango", Category: models.CategoryIceCream, Price: decimal.NewFromInt(80)},
	{Name: "Margherita Pizza", Description: "Tomato, mozzarella and basil", Category: models.CategoryPizza, Price: decimal.RequireFromString("199.50")},
	{Name: "Greek Salad", Description: "Cucumber, olives and feta", Category: models.CategorySalad, Price: decimal.NewFromInt(150)},
}

// SeedMenu fills an empty food repository with the default menu.
func SeedMenu(ctx context.Context, foods FoodRepository, logger *zap.Logger) error {
	existing, err := foods.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list foods: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, item := range defaultMenu {
		food := item
		if err := foods.Create(ctx, &food); err != nil {
			return fmt.Errorf("failed to seed %q: %w", food.Name, err)
		}
	}
	logger.Info("menu seeded", zap.Int("items", len(defaultMenu)))
	return nil
}

// SeedAdmin creates the admin account unless one with that email exists.
func SeedAdmin(ctx context.Context, users UserRepository, email, password string, logger *zap.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &models.User{
		ID:       uuid.NewString(),
		Name:     "Admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Info("admin account ready", zap.String("email", email))
	return nil
}
