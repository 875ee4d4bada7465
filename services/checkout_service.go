package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"food-ordering/libs"
	"food-ordering/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrIllegalTransition  = errors.New("illegal checkout transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidBilling     = errors.New("invalid billing details")
	ErrPaymentDismissed   = errors.New("payment was cancelled")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrVerificationFailed = errors.New("payment verification failed")
)

type CheckoutState int

const (
	CheckoutCollecting CheckoutState = iota
	CheckoutCreating
	CheckoutAwaitingPayment
	CheckoutVerifying
	CheckoutConfirmed
	CheckoutAbandoned
	CheckoutFailed
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutCollecting:
		return "collecting"
	case CheckoutCreating:
		return "creating"
	case CheckoutAwaitingPayment:
		return "awaiting_payment"
	case CheckoutVerifying:
		return "verifying"
	case CheckoutConfirmed:
		return "confirmed"
	case CheckoutAbandoned:
		return "abandoned"
	case CheckoutFailed:
		return "failed"
	}
	return "unknown"
}

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutCollecting:      {CheckoutCreating},
	CheckoutCreating:        {CheckoutCollecting, CheckoutAwaitingPayment, CheckoutFailed},
	CheckoutAwaitingPayment: {CheckoutVerifying, CheckoutAbandoned, CheckoutFailed},
	CheckoutVerifying:       {CheckoutConfirmed, CheckoutFailed},
	CheckoutConfirmed:       {CheckoutCollecting},
	CheckoutAbandoned:       {CheckoutCreating, CheckoutCollecting},
	CheckoutFailed:          {CheckoutCreating, CheckoutCollecting},
}

// Messages shown to the user by the checkout.
const (
	MsgLoginRequired      = "Please login to continue checkout."
	MsgCartEmpty          = "Your cart is empty."
	MsgOrderFailed        = "Unable to place order, please try again."
	MsgMissingOrder       = "Unable to place order. Missing payment order details."
	MsgWidgetUnavailable  = "Couldn't open payment window."
	MsgPaymentCancelled   = "Payment was cancelled."
	MsgPaymentFailed      = "Payment failed. Please try again."
	MsgPaymentSuccessful  = "Payment successful."
	MsgVerificationFailed = "Payment verification failed."
	MsgContactSupport     = "Something went wrong. Contact support."
	MsgClearCartFailed    = "Error while clearing the cart."
)

type CheckoutConfig struct {
	KeyID       string
	Currency    string
	StoreName   string
	Description string
	Pricing     Pricing
	// bounds the order deletion after a dismissed payment
	CancelTimeout time.Duration
}

// CheckoutService drives one order from billing details to a verified
// payment. Only one checkout runs at a time.
type CheckoutService struct {
	orders   OrderAPI
	cart     *CartStore
	catalog  *Catalog
	widget   PaymentWidget
	notify   Notifier
	nav      Navigator
	validate *validator.Validate
	cfg      CheckoutConfig
	logger   *zap.Logger

	mu    sync.Mutex
	state CheckoutState
	order *models.PaymentOrder
}

func NewCheckoutService(orders OrderAPI, cart *CartStore, catalog *Catalog, widget PaymentWidget,
	notify Notifier, nav Navigator, cfg CheckoutConfig, logger *zap.Logger) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.CancelTimeout <= 0 {
		cfg.CancelTimeout = 10 * time.Second
	}
	return &CheckoutService{
		orders:   orders,
		cart:     cart,
		catalog:  catalog,
		widget:   widget,
		notify:   notify,
		nav:      nav,
		validate: newBillingValidator(),
		cfg:      cfg,
		logger:   logger,
		state:    CheckoutCollecting,
	}
}

func newBillingValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (c *CheckoutService) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Order is the payment order of the current or last checkout.
func (c *CheckoutService) Order() *models.PaymentOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order == nil {
		return nil
	}
	o := *c.order
	return &o
}

// Reset returns a finished checkout to collecting.
func (c *CheckoutService) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case CheckoutCollecting:
		return nil
	case CheckoutConfirmed, CheckoutAbandoned, CheckoutFailed:
		c.state = CheckoutCollecting
		c.order = nil
		return nil
	}
	return ErrCheckoutInProgress
}

// Draft prices the current cart.
func (c *CheckoutService) Draft() models.OrderDraft {
	draft, missing := c.cfg.Pricing.Draft(c.cart.Quantities(), c.catalog.Food)
	if len(missing) > 0 {
		c.logger.Warn("cart holds foods missing from the catalog", zap.Ints("food_ids", missing))
	}
	return draft
}

// PlaceOrder creates the order, collects the payment and verifies it. It
// returns nil once the order is confirmed.
func (c *CheckoutService) PlaceOrder(ctx context.Context, billing models.BillingDetails) error {
	if err := c.begin(); err != nil {
		return err
	}

	token := c.cart.Token()
	if token == "" {
		c.notify.Error(MsgLoginRequired)
		c.nav.Navigate(ViewLogin)
		c.transition(CheckoutCollecting)
		return ErrNotAuthenticated
	}

	draft := c.Draft()
	if len(draft.Lines) == 0 {
		c.notify.Error(MsgCartEmpty)
		c.transition(CheckoutCollecting)
		return ErrEmptyCart
	}

	if err := c.validate.Struct(billing); err != nil {
		c.notify.Error(billingMessage(err))
		c.transition(CheckoutCollecting)
		return fmt.Errorf("%w: %v", ErrInvalidBilling, err)
	}

	order, err := c.orders.CreateOrder(ctx, token, models.CreateOrderRequest{
		Address: billing,
		Items:   draft.Lines,
		Amount:  draft.Total,
	})
	if err != nil {
		c.logger.Error("create order failed", zap.Error(err))
		if errors.Is(err, libs.ErrOrderNotCreated) {
			c.notify.Error(MsgMissingOrder)
		} else {
			c.notify.Error(remoteMessage(err, MsgOrderFailed))
		}
		c.transition(CheckoutFailed)
		return fmt.Errorf("create order: %w", err)
	}

	// server amount wins; the draft total only fills a missing one
	if order != nil && order.Amount == 0 {
		order.Amount = models.ToMinorUnits(draft.Total)
	}
	if err := order.Validate(); err != nil {
		c.logger.Error("create order returned an unusable payment order", zap.Any("order", order), zap.Error(err))
		c.notify.Error(MsgMissingOrder)
		c.transition(CheckoutFailed)
		return err
	}
	if order.Currency == "" {
		order.Currency = c.cfg.Currency
	}

	c.mu.Lock()
	c.order = order
	c.mu.Unlock()
	c.transition(CheckoutAwaitingPayment)

	c.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("provider_order_id", order.ProviderOrderID),
		zap.Int64("amount", order.Amount))

	task, err := c.widget.Open(ctx, PaymentRequest{
		KeyID:           c.cfg.KeyID,
		ProviderOrderID: order.ProviderOrderID,
		Amount:          order.Amount,
		Currency:        order.Currency,
		Name:            c.cfg.StoreName,
		Description:     c.cfg.Description,
		Prefill:         billing,
	})
	if err != nil {
		c.logger.Error("payment widget failed to open", zap.Error(err))
		c.notify.Error(MsgWidgetUnavailable)
		c.transition(CheckoutFailed)
		return fmt.Errorf("open payment widget: %w", err)
	}

	outcome, waitErr := task.Wait(ctx)
	switch outcome.Kind {
	case PaymentCompleted:
		return c.verify(ctx, token, order, outcome.Result)
	case PaymentFailed:
		c.logger.Warn("payment failed", zap.String("reason", outcome.Reason))
		msg := outcome.Reason
		if msg == "" {
			msg = MsgPaymentFailed
		}
		c.notify.Error(msg)
		c.transition(CheckoutFailed)
		return fmt.Errorf("%w: %s", ErrPaymentFailed, outcome.Reason)
	default:
		c.abandon(ctx, token, order)
		if waitErr != nil {
			return errors.Join(ErrPaymentDismissed, waitErr)
		}
		return ErrPaymentDismissed
	}
}

func (c *CheckoutService) verify(ctx context.Context, token string, order *models.PaymentOrder, res PaymentResult) error {
	c.transition(CheckoutVerifying)

	providerOrderID := res.ProviderOrderID
	if providerOrderID == "" {
		providerOrderID = order.ProviderOrderID
	}
	err := c.orders.VerifyPayment(ctx, token, models.VerifyPaymentRequest{
		OrderID:           order.OrderID,
		ProviderOrderID:   providerOrderID,
		ProviderPaymentID: res.ProviderPaymentID,
		Signature:         res.Signature,
	})
	if err != nil {
		c.logger.Error("payment verification failed",
			zap.String("order_id", order.OrderID), zap.Error(err))
		c.notify.Error(MsgVerificationFailed)
		c.transition(CheckoutFailed)
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	c.transition(CheckoutConfirmed)
	c.notify.Info(MsgPaymentSuccessful)
	c.logger.Info("order confirmed", zap.String("order_id", order.OrderID))

	if err := c.cart.ClearCart(ctx); err != nil {
		c.notify.Error(MsgClearCartFailed)
	}
	c.nav.Navigate(ViewMyOrders)
	return nil
}

func (c *CheckoutService) abandon(ctx context.Context, token string, order *models.PaymentOrder) {
	c.transition(CheckoutAbandoned)
	c.notify.Error(MsgPaymentCancelled)
	if order.OrderID == "" {
		return
	}

	// the caller's context may be the reason we are here
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.CancelTimeout)
	defer cancel()
	if err := c.orders.DeleteOrder(dctx, token, order.OrderID); err != nil {
		c.logger.Error("failed to delete abandoned order",
			zap.String("order_id", order.OrderID), zap.Error(err))
		c.notify.Error(MsgContactSupport)
		return
	}
	c.logger.Info("abandoned order deleted", zap.String("order_id", order.OrderID))
}

func (c *CheckoutService) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case CheckoutCollecting, CheckoutAbandoned, CheckoutFailed:
		c.state = CheckoutCreating
		c.order = nil
		return nil
	}
	return ErrCheckoutInProgress
}

// transition moves to the next state if the edge exists; otherwise the
// state is left as is.
func (c *CheckoutService) transition(to CheckoutState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, allowed := range checkoutTransitions[c.state] {
		if allowed == to {
			c.logger.Debug("checkout transition", zap.Stringer("from", c.state), zap.Stringer("to", to))
			c.state = to
			return nil
		}
	}
	err := fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, c.state, to)
	c.logger.Error("checkout transition rejected", zap.Error(err))
	return err
}

func billingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Please check your billing details."
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "Please check your billing details: " + strings.Join(fields, ", ")
}

// remoteMessage prefers the server-supplied message.
func remoteMessage(err error, fallback string) string {
	var apiErr *libs.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
