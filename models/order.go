package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusProcessing     = "Food Processing"
	OrderStatusOutForDelivery = "Out for delivery"
	OrderStatusDelivered      = "Delivered"

	PaymentStatusCreated = "created"

	// ProviderOrderPrefix is the prefix every provider order id carries.
	ProviderOrderPrefix = "order_"
)

var OrderStatuses = []string{OrderStatusProcessing, OrderStatusOutForDelivery, OrderStatusDelivered}

var ErrInvalidPaymentOrder = errors.New("invalid payment order")

type OrderLine struct {
	FoodID   int             `json:"foodId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (l OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderDraft is computed at checkout time and never stored.
type OrderDraft struct {
	Lines    []OrderLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

type BillingDetails struct {
	FirstName string `json:"firstName" validate:"required" binding:"required"`
	LastName  string `json:"lastName" validate:"required" binding:"required"`
	Email     string `json:"email" validate:"required,email" binding:"required,email"`
	Street    string `json:"street" validate:"required" binding:"required"`
	City      string `json:"city" validate:"required" binding:"required"`
	State     string `json:"state" validate:"required" binding:"required"`
	Zipcode   string `json:"zipcode" validate:"required" binding:"required"`
	Country   string `json:"country" validate:"required" binding:"required"`
	Phone     string `json:"phone" validate:"required" binding:"required"`
}

type CreateOrderRequest struct {
	Address BillingDetails  `json:"address" binding:"required"`
	Items   []OrderLine     `json:"items" binding:"required,min=1"`
	Amount  decimal.Decimal `json:"amount"`
}

// PaymentOrder is returned by order creation and drives the payment widget.
type PaymentOrder struct {
	OrderID         string `json:"orderId"`
	ProviderOrderID string `json:"providerOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

func (p *PaymentOrder) Validate() error {
	if p == nil {
		return ErrInvalidPaymentOrder
	}
	if p.ProviderOrderID == "" || !strings.HasPrefix(p.ProviderOrderID, ProviderOrderPrefix) {
		return errors.Join(ErrInvalidPaymentOrder, errors.New("missing or unrecognized provider order id"))
	}
	if p.Amount <= 0 {
		return errors.Join(ErrInvalidPaymentOrder, errors.New("amount must be a positive integer"))
	}
	return nil
}

type VerifyPaymentRequest struct {
	OrderID           string `json:"orderId" binding:"required"`
	ProviderOrderID   string `json:"providerOrderId" binding:"required"`
	ProviderPaymentID string `json:"providerPaymentId" binding:"required"`
	Signature         string `json:"signature" binding:"required"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           []OrderLine     `json:"items"`
	Amount          decimal.Decimal `json:"amount"`
	AmountMinor     int64           `json:"amountMinor"`
	Currency        string          `json:"currency"`
	Address         BillingDetails  `json:"address"`
	Status          string          `json:"status"`
	Payment         bool            `json:"payment"`
	ProviderOrderID string          `json:"providerOrderId"`
	Date            time.Time       `json:"date"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func IsOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// ToMinorUnits converts a decimal amount to hundredths, rounding half away
// from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
