package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryBiryani  = "Biryani"
	CategoryBurger   = "Burger"
	CategoryCake     = "Cake"
	CategoryIceCream = "Ice-Cream"
	CategoryPizza    = "Pizza"
	CategorySalad    = "Salad"
)

var Categories = []string{
	CategoryBiryani,
	CategoryBurger,
	CategoryCake,
	CategoryIceCream,
	CategoryPizza,
	CategorySalad,
}

func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// FoodItem is a catalog entry. It is never mutated after being fetched.
type FoodItem struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	ImageID     string          `json:"-"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

type CreateFoodRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category" binding:"required"`
	Price       string `json:"price" form:"price" binding:"required"`
}
