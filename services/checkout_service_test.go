package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-ordering/libs"
	"food-ordering/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type checkoutFixture struct {
	api     *MockAPI
	store   *CartStore
	widget  *MockWidget
	notify  *MockNotifier
	nav     *MockNavigator
	service *CheckoutService
}

func newCheckoutFixture(t *testing.T, order *models.PaymentOrder) *checkoutFixture {
	t.Helper()
	api := &MockAPI{
		Foods: []models.FoodItem{
			{ID: 1, Name: "Paneer Burger", Category: models.CategoryBurger, Price: decimal.NewFromInt(100)},
			{ID: 2, Name: "Greek Salad", Category: models.CategorySalad, Price: decimal.NewFromInt(50)},
		},
		Order: order,
	}
	catalog := NewCatalog(api, zap.NewNop())
	_, err := catalog.Load(context.Background())
	require.NoError(t, err)

	store := newHydratedStore(t, api)
	store.IncreaseQuantity(1)
	store.IncreaseQuantity(1)
	store.IncreaseQuantity(2)

	f := &checkoutFixture{
		api:    api,
		store:  store,
		widget: NewMockWidget(),
		notify: &MockNotifier{},
		nav:    &MockNavigator{},
	}
	f.service = NewCheckoutService(api, store, catalog, f.widget, f.notify, f.nav, CheckoutConfig{
		KeyID:   "rzp_test_sandbox",
		Pricing: NewPricing(decimal.NewFromInt(10)),
	}, zap.NewNop())
	return f
}

func createdOrder() *models.PaymentOrder {
	return &models.PaymentOrder{
		OrderID:         "o-1",
		ProviderOrderID: "order_1",
		Amount:          28500,
		Currency:        "INR",
		Status:          models.PaymentStatusCreated,
	}
}

func validBilling() models.BillingDetails {
	return models.BillingDetails{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Street:    "12 MG Road",
		City:      "Pune",
		State:     "MH",
		Zipcode:   "411001",
		Country:   "India",
		Phone:     "9876543210",
	}
}

// placeAsync runs PlaceOrder and hands back the opened payment task.
func (f *checkoutFixture) placeAsync(t *testing.T, ctx context.Context) (*PaymentTask, <-chan error) {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- f.service.PlaceOrder(ctx, validBilling()) }()

	select {
	case task := <-f.widget.Tasks:
		return task, errc
	case err := <-errc:
		t.Fatalf("checkout ended before the widget opened: %v", err)
	case <-time.After(time.Second):
		t.Fatal("payment widget was not opened")
	}
	return nil, nil
}

func TestCheckout_Success(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())

	task, errc := f.placeAsync(t, context.Background())
	assert.Equal(t, CheckoutAwaitingPayment, f.service.State())
	task.Complete(PaymentResult{ProviderOrderID: "order_1", ProviderPaymentID: "pay_1", Signature: "sig"})
	require.NoError(t, <-errc)

	assert.Equal(t, CheckoutConfirmed, f.service.State())

	require.Len(t, f.api.CreatedOrders, 1)
	assert.True(t, f.api.CreatedOrders[0].Amount.Equal(decimal.NewFromInt(285)))
	assert.Len(t, f.api.CreatedOrders[0].Items, 2)

	require.Len(t, f.widget.Requests, 1)
	assert.Equal(t, int64(28500), f.widget.Requests[0].Amount)
	assert.Equal(t, "order_1", f.widget.Requests[0].ProviderOrderID)
	assert.Equal(t, "rzp_test_sandbox", f.widget.Requests[0].KeyID)

	require.Len(t, f.api.Verifications, 1)
	assert.Equal(t, models.VerifyPaymentRequest{
		OrderID:           "o-1",
		ProviderOrderID:   "order_1",
		ProviderPaymentID: "pay_1",
		Signature:         "sig",
	}, f.api.Verifications[0])

	assert.Equal(t, 1, f.api.ClearCalls)
	assert.Zero(t, f.store.Count())
	assert.Equal(t, []string{ViewMyOrders}, f.nav.Views)
	assert.Contains(t, f.notify.Infos, MsgPaymentSuccessful)
}

func TestCheckout_MissingProviderOrderID(t *testing.T) {
	for _, id := range []string{"", "pay_123"} {
		t.Run("id="+id, func(t *testing.T) {
			order := createdOrder()
			order.ProviderOrderID = id
			f := newCheckoutFixture(t, order)

			err := f.service.PlaceOrder(context.Background(), validBilling())

			assert.ErrorIs(t, err, models.ErrInvalidPaymentOrder)
			assert.Empty(t, f.widget.Requests)
			assert.Contains(t, f.notify.Errors, MsgMissingOrder)
			assert.Equal(t, CheckoutFailed, f.service.State())
			assert.Equal(t, 3, f.store.Count())
		})
	}
}

func TestCheckout_OrderNotCreated(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.api.CreateOrderErr = libs.ErrOrderNotCreated

	err := f.service.PlaceOrder(context.Background(), validBilling())

	assert.ErrorIs(t, err, libs.ErrOrderNotCreated)
	assert.Contains(t, f.notify.Errors, MsgMissingOrder)
	assert.Empty(t, f.widget.Requests)
}

func TestCheckout_ServerMessageIsShown(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.api.CreateOrderErr = &libs.APIError{Status: 422, Message: "Food 2 is no longer available"}

	err := f.service.PlaceOrder(context.Background(), validBilling())

	require.Error(t, err)
	assert.Equal(t, []string{"Food 2 is no longer available"}, f.notify.Errors)
	assert.Equal(t, CheckoutFailed, f.service.State())
}

func TestCheckout_ServerAmountIsPreferred(t *testing.T) {
	order := createdOrder()
	order.Amount = 30000
	f := newCheckoutFixture(t, order)

	task, errc := f.placeAsync(t, context.Background())
	task.Dismiss()
	<-errc

	assert.Equal(t, int64(30000), f.widget.Requests[0].Amount)
}

func TestCheckout_MissingAmountFallsBackToTotal(t *testing.T) {
	order := createdOrder()
	order.Amount = 0
	f := newCheckoutFixture(t, order)

	task, errc := f.placeAsync(t, context.Background())
	task.Dismiss()
	<-errc

	assert.Equal(t, int64(28500), f.widget.Requests[0].Amount)
}

func TestCheckout_Dismissal(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())

	task, errc := f.placeAsync(t, context.Background())
	task.Dismiss()
	err := <-errc

	assert.ErrorIs(t, err, ErrPaymentDismissed)
	assert.Equal(t, CheckoutAbandoned, f.service.State())
	assert.Equal(t, []string{"o-1"}, f.api.DeletedOrders)
	assert.Zero(t, f.api.ClearCalls)
	assert.Equal(t, 3, f.store.Count())
	assert.Empty(t, f.nav.Views)
	assert.Equal(t, []string{MsgPaymentCancelled}, f.notify.Errors)
}

func TestCheckout_DismissalDeleteFails(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	f.api.DeleteOrderErr = errors.New("timeout")

	task, errc := f.placeAsync(t, context.Background())
	task.Dismiss()
	<-errc

	assert.Contains(t, f.notify.Errors, MsgContactSupport)
	assert.Equal(t, 3, f.store.Count())
}

func TestCheckout_CancelledContextAbandonsOrder(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	ctx, cancel := context.WithCancel(context.Background())

	_, errc := f.placeAsync(t, ctx)
	cancel()
	err := <-errc

	assert.ErrorIs(t, err, ErrPaymentDismissed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"o-1"}, f.api.DeletedOrders)
	assert.Equal(t, CheckoutAbandoned, f.service.State())
}

func TestCheckout_ProviderFailure(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())

	task, errc := f.placeAsync(t, context.Background())
	task.Fail("Card declined by issuer")
	err := <-errc

	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Equal(t, []string{"Card declined by issuer"}, f.notify.Errors)
	assert.Equal(t, CheckoutFailed, f.service.State())
	assert.Empty(t, f.api.Verifications)
	assert.Empty(t, f.api.DeletedOrders)
}

func TestCheckout_VerificationFailure(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	f.api.VerifyErr = &libs.APIError{Status: 400, Message: "invalid signature"}

	task, errc := f.placeAsync(t, context.Background())
	task.Complete(PaymentResult{ProviderOrderID: "order_1", ProviderPaymentID: "pay_1", Signature: "bad"})
	err := <-errc

	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Equal(t, CheckoutFailed, f.service.State())
	assert.Contains(t, f.notify.Errors, MsgVerificationFailed)
	assert.Zero(t, f.api.ClearCalls)
	assert.Equal(t, 3, f.store.Count())
	assert.Empty(t, f.nav.Views)
}

func TestCheckout_RequiresLogin(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	f.store.Close()

	err := f.service.PlaceOrder(context.Background(), validBilling())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, []string{ViewLogin}, f.nav.Views)
	assert.Equal(t, []string{MsgLoginRequired}, f.notify.Errors)
	assert.Empty(t, f.api.CreatedOrders)
	assert.Equal(t, CheckoutCollecting, f.service.State())
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	f.store.ResetLocal()

	err := f.service.PlaceOrder(context.Background(), validBilling())

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, []string{MsgCartEmpty}, f.notify.Errors)
	assert.Empty(t, f.api.CreatedOrders)
	assert.Empty(t, f.nav.Views)
}

func TestCheckout_InvalidBilling(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())
	billing := validBilling()
	billing.Email = "not-an-email"

	err := f.service.PlaceOrder(context.Background(), billing)

	assert.ErrorIs(t, err, ErrInvalidBilling)
	require.Len(t, f.notify.Errors, 1)
	assert.Contains(t, f.notify.Errors[0], "email")
	assert.Empty(t, f.api.CreatedOrders)
}

func TestCheckout_DuplicateSubmitRejected(t *testing.T) {
	f := newCheckoutFixture(t, createdOrder())

	task, errc := f.placeAsync(t, context.Background())
	err := f.service.PlaceOrder(context.Background(), validBilling())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.ErrorIs(t, f.service.Reset(), ErrCheckoutInProgress)

	task.Dismiss()
	require.ErrorIs(t, <-errc, ErrPaymentDismissed)

	// an abandoned checkout may be retried
	task, errc = f.placeAsync(t, context.Background())
	task.Complete(PaymentResult{ProviderOrderID: "order_1", ProviderPaymentID: "pay_2", Signature: "sig"})
	require.NoError(t, <-errc)
	assert.Len(t, f.api.CreatedOrders, 2)
	assert.Equal(t, CheckoutConfirmed, f.service.State())

	require.NoError(t, f.service.Reset())
	assert.Equal(t, CheckoutCollecting, f.service.State())
}
