package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-ordering/libs"
	"food-ordering/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDebounce = 20 * time.Millisecond

func newHydratedStore(t *testing.T, api *MockAPI) *CartStore {
	t.Helper()
	store := NewCartStore(api, testDebounce, zap.NewNop())
	require.NoError(t, store.LoadCartData(context.Background(), "tok"))
	t.Cleanup(store.Close)
	return store
}

func TestCartStore_IncreaseDecrease(t *testing.T) {
	store := NewCartStore(&MockAPI{}, testDebounce, zap.NewNop())

	store.IncreaseQuantity(1)
	store.IncreaseQuantity(1)
	store.IncreaseQuantity(2)
	assert.Equal(t, models.QuantityMap{1: 2, 2: 1}, store.Quantities())
	assert.Equal(t, 3, store.Count())

	store.DecreaseQuantity(2)
	_, present := store.Quantities()[2]
	assert.False(t, present, "decreasing 1 removes the entry")

	store.DecreaseQuantity(99)
	assert.Equal(t, models.QuantityMap{1: 2}, store.Quantities())

	store.DecreaseQuantity(1)
	assert.Equal(t, 1, store.Quantity(1))
}

func TestCartStore_NoSaveBeforeHydration(t *testing.T) {
	api := &MockAPI{}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	store.SetToken("tok")

	store.IncreaseQuantity(1)
	time.Sleep(5 * testDebounce)

	assert.Empty(t, api.saves())
}

func TestCartStore_DebouncedSaveCarriesFinalState(t *testing.T) {
	api := &MockAPI{}
	store := newHydratedStore(t, api)

	for i := 0; i < 5; i++ {
		store.IncreaseQuantity(1)
	}
	store.IncreaseQuantity(2)
	store.DecreaseQuantity(2)

	assert.Eventually(t, func() bool { return len(api.saves()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(5 * testDebounce)

	saves := api.saves()
	require.Len(t, saves, 1)
	assert.Equal(t, models.QuantityMap{1: 5}, saves[0])
}

func TestCartStore_HydrationReplacesLocalState(t *testing.T) {
	api := &MockAPI{Snapshot: &models.CartSnapshot{
		ID:    "c1",
		Items: map[string]int{"3": 4, "bad": 1, "5": 0},
	}}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	defer store.Close()

	store.IncreaseQuantity(1)
	require.NoError(t, store.LoadCartData(context.Background(), "tok"))

	assert.Equal(t, models.QuantityMap{3: 4}, store.Quantities())
	assert.True(t, store.Hydrated())
}

func TestCartStore_HydratesOncePerToken(t *testing.T) {
	api := &MockAPI{}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.LoadCartData(ctx, "tok"))
	require.NoError(t, store.LoadCartData(ctx, "tok"))
	assert.Equal(t, 1, api.GetCartCalls)

	require.NoError(t, store.Rehydrate(ctx))
	assert.Equal(t, 2, api.GetCartCalls)

	require.NoError(t, store.LoadCartData(ctx, "other"))
	assert.Equal(t, 3, api.GetCartCalls)
}

func TestCartStore_LoadWithoutToken(t *testing.T) {
	store := NewCartStore(&MockAPI{}, testDebounce, zap.NewNop())
	assert.ErrorIs(t, store.LoadCartData(context.Background(), ""), ErrNotAuthenticated)
}

func TestCartStore_LoadFailureLeavesStoreUnhydrated(t *testing.T) {
	api := &MockAPI{GetCartErr: errors.New("connection refused")}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	defer store.Close()

	err := store.LoadCartData(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, store.Hydrated())

	store.IncreaseQuantity(1)
	time.Sleep(5 * testDebounce)
	assert.Empty(t, api.saves())
}

func TestCartStore_EditsDuringHydrationSurvive(t *testing.T) {
	gate := make(chan struct{})
	api := &MockAPI{
		Snapshot:    &models.CartSnapshot{Items: map[string]int{"1": 2, "2": 1}},
		GetCartGate: gate,
	}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	defer store.Close()

	done := make(chan error, 1)
	go func() { done <- store.LoadCartData(context.Background(), "tok") }()

	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.GetCartCalls == 1
	}, time.Second, time.Millisecond)

	store.IncreaseQuantity(7)
	store.IncreaseQuantity(2)
	store.DecreaseQuantity(2)
	store.DecreaseQuantity(2)
	close(gate)
	require.NoError(t, <-done)

	want := models.QuantityMap{1: 2, 7: 1}
	assert.Equal(t, want, store.Quantities())

	assert.Eventually(t, func() bool { return len(api.saves()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, api.saves()[0])
}

func TestCartStore_TokenSwitchDuringHydration(t *testing.T) {
	gate := make(chan struct{})
	api := &MockAPI{
		Snapshot:    &models.CartSnapshot{Items: map[string]int{"3": 1}},
		GetCartGate: gate,
	}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	defer store.Close()
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- store.LoadCartData(ctx, "tok-a") }()
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.GetCartCalls == 1
	}, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- store.LoadCartData(ctx, "tok-b") }()
	assert.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.GetCartCalls == 2
	}, time.Second, time.Millisecond)

	close(gate)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, "tok-b", store.Token())
	assert.True(t, store.Hydrated())
	assert.Equal(t, 1, store.Quantity(3))

	store.IncreaseQuantity(3)
	assert.Eventually(t, func() bool { return len(api.saves()) == 1 }, time.Second, 5*time.Millisecond)
	api.mu.Lock()
	assert.Equal(t, []string{"tok-b"}, api.SaveTokens)
	api.mu.Unlock()

	// a repeated load for the bound token is a no-op
	require.NoError(t, store.LoadCartData(ctx, "tok-b"))
	api.mu.Lock()
	assert.Equal(t, 2, api.GetCartCalls)
	api.mu.Unlock()
}

func TestCartStore_RemoveFallsBackOnlyWhenEndpointMissing(t *testing.T) {
	tests := []struct {
		name       string
		primaryErr error
		legacyErr  error
		wantLegacy bool
		wantErr    bool
		wantKept   bool
	}{
		{name: "primary ok"},
		{name: "primary 404 legacy ok", primaryErr: notFound(), wantLegacy: true},
		{name: "primary 405 legacy ok", primaryErr: &libs.APIError{Status: 405}, wantLegacy: true},
		{name: "both missing", primaryErr: notFound(), legacyErr: notFound(), wantLegacy: true, wantErr: true, wantKept: true},
		{name: "server error", primaryErr: &libs.APIError{Status: 500, Message: "boom"}, wantErr: true, wantKept: true},
		{name: "network error", primaryErr: errors.New("connection reset"), wantErr: true, wantKept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAPI{RemoveErr: tt.primaryErr, RemoveLegacyErr: tt.legacyErr}
			store := newHydratedStore(t, api)
			store.IncreaseQuantity(4)

			err := store.RemoveFromCart(context.Background(), 4)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, []int{4}, api.RemoveCalls)
			if tt.wantLegacy {
				assert.Equal(t, []int{4}, api.RemoveLegacyCalls)
			} else {
				assert.Empty(t, api.RemoveLegacyCalls)
			}
			assert.Equal(t, tt.wantKept, store.Quantity(4) == 1)
		})
	}
}

func TestCartStore_RemoveWithoutTokenIsLocal(t *testing.T) {
	api := &MockAPI{}
	store := NewCartStore(api, testDebounce, zap.NewNop())
	store.IncreaseQuantity(4)

	require.NoError(t, store.RemoveFromCart(context.Background(), 4))
	assert.Empty(t, api.RemoveCalls)
	assert.Equal(t, 0, store.Count())
}

func TestCartStore_ClearCancelsPendingSave(t *testing.T) {
	api := &MockAPI{}
	store := newHydratedStore(t, api)

	store.IncreaseQuantity(1)
	require.NoError(t, store.ClearCart(context.Background()))
	time.Sleep(5 * testDebounce)

	assert.Equal(t, 1, api.ClearCalls)
	assert.Empty(t, api.saves())
	assert.Equal(t, 0, store.Count())
}

func TestCartStore_ClearFailureKeepsLocalItems(t *testing.T) {
	api := &MockAPI{ClearErr: errors.New("boom")}
	store := newHydratedStore(t, api)
	store.IncreaseQuantity(1)

	require.Error(t, store.ClearCart(context.Background()))
	assert.Equal(t, 1, store.Count())
}

func TestCartStore_FailedSaveIsNotRetried(t *testing.T) {
	api := &MockAPI{SaveCartErr: errors.New("server down")}
	store := newHydratedStore(t, api)

	store.IncreaseQuantity(1)
	assert.Eventually(t, func() bool { return len(api.saves()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(5 * testDebounce)

	assert.Len(t, api.saves(), 1)
	assert.Equal(t, 1, store.Quantity(1))
}

func TestCartStore_CloseStopsSaves(t *testing.T) {
	api := &MockAPI{}
	store := newHydratedStore(t, api)

	store.IncreaseQuantity(1)
	store.Close()
	store.IncreaseQuantity(1)
	time.Sleep(5 * testDebounce)

	assert.Empty(t, api.saves())
	assert.Empty(t, store.Token())
}
