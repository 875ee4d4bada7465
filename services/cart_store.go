package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"food-ordering/libs"
	"food-ordering/models"

	"go.uber.org/zap"
)

// DefaultSaveDebounce is the quiet period before a cart edit is saved.
const DefaultSaveDebounce = 300 * time.Millisecond

// ErrNotAuthenticated is returned when a server call needs a token and none is set.
var ErrNotAuthenticated = errors.New("not authenticated")

// CartStore is the local view of what the current user wants to buy.
//
// Quantity edits are applied locally at once and pushed to the server by a
// debounced save, which only runs after the cart has been hydrated from the
// server and while a token is set. Saves are never retried.
type CartStore struct {
	api         CartAPI
	logger      *zap.Logger
	debounce    *Debouncer
	saveTimeout time.Duration

	mu        sync.Mutex
	items     models.QuantityMap
	token     string
	hydrated  bool
	hydrating bool
	// ids edited while a hydration request is in flight
	dirty  map[int]struct{}
	closed bool
}

// NewCartStore returns an empty, unhydrated store. A non-positive debounce
// falls back to DefaultSaveDebounce.
func NewCartStore(api CartAPI, debounce time.Duration, logger *zap.Logger) *CartStore {
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	return &CartStore{
		api:         api,
		logger:      logger,
		debounce:    NewDebouncer(debounce),
		saveTimeout: 10 * time.Second,
		items:       make(models.QuantityMap),
	}
}

// IncreaseQuantity adds one unit of foodID.
func (s *CartStore) IncreaseQuantity(foodID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[foodID]++
	s.changedLocked(foodID)
}

// DecreaseQuantity removes the entry when it drops below 1. A missing
// entry is left alone.
func (s *CartStore) DecreaseQuantity(foodID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[foodID]
	if !ok {
		return
	}
	if n <= 1 {
		delete(s.items, foodID)
	} else {
		s.items[foodID] = n - 1
	}
	s.changedLocked(foodID)
}

// RemoveFromCart deletes the item on the server, then locally. When the
// primary endpoint is missing on the server (404, 405, 501) the legacy
// endpoint is tried. On failure the local entry stays so nothing vanishes
// silently.
func (s *CartStore) RemoveFromCart(ctx context.Context, foodID int) error {
	token := s.Token()
	if token != "" {
		err := s.api.RemoveCartItem(ctx, token, foodID)
		if err != nil && libs.IsNotFoundClass(err) {
			s.logger.Info("remove endpoint unavailable, using legacy endpoint",
				zap.Int("food_id", foodID), zap.Error(err))
			err = s.api.RemoveCartItemLegacy(ctx, token, foodID)
		}
		if err != nil {
			s.logger.Error("failed to remove cart item", zap.Int("food_id", foodID), zap.Error(err))
			return fmt.Errorf("remove food %d: %w", foodID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[foodID]; ok {
		delete(s.items, foodID)
		s.changedLocked(foodID)
	}
	return nil
}

// LoadCartData replaces the local quantities with the server cart. It runs
// once per token; use Rehydrate to force another fetch. Edits made while
// the request is in flight are kept on top of the fetched cart.
func (s *CartStore) LoadCartData(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if s.token == token && (s.hydrating || s.hydrated) {
		s.mu.Unlock()
		return nil
	}
	// a hydration for another token is superseded by this one
	s.token = token
	s.hydrated = false
	s.hydrating = true
	s.dirty = make(map[int]struct{})
	s.mu.Unlock()

	snap, err := s.api.GetCart(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		// logged out or switched user meanwhile; the newer hydration owns the state
		s.logger.Info("discarded cart for superseded token")
		return nil
	}
	edited := s.dirty
	s.hydrating = false
	s.dirty = nil

	if err != nil {
		s.logger.Error("failed to load cart", zap.Error(err))
		return fmt.Errorf("load cart: %w", err)
	}

	remote, skipped := snap.Quantities()
	if len(skipped) > 0 {
		s.logger.Warn("dropped invalid cart entries", zap.Strings("keys", skipped))
	}
	for id := range edited {
		if n, ok := s.items[id]; ok {
			remote[id] = n
		} else {
			delete(remote, id)
		}
	}
	s.items = remote
	s.hydrated = true
	s.logger.Info("cart hydrated", zap.Int("items", len(remote)), zap.Int("kept_local_edits", len(edited)))

	if len(edited) > 0 {
		s.scheduleSaveLocked()
	}
	return nil
}

func (s *CartStore) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.hydrated = false
	s.mu.Unlock()
	return s.LoadCartData(ctx, token)
}

// ClearCart empties the server cart, then the local one.
func (s *CartStore) ClearCart(ctx context.Context) error {
	if token := s.Token(); token != "" {
		if err := s.api.ClearCart(ctx, token); err != nil {
			s.logger.Error("failed to clear cart", zap.Error(err))
			return fmt.Errorf("clear cart: %w", err)
		}
	}
	s.ResetLocal()
	return nil
}

// ResetLocal empties the local quantities and drops any pending save.
func (s *CartStore) ResetLocal() {
	s.debounce.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(models.QuantityMap)
}

func (s *CartStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.hydrated = false
		s.hydrating = false
		s.dirty = nil
	}
	s.token = token
}

func (s *CartStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *CartStore) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

func (s *CartStore) Quantities() models.QuantityMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

func (s *CartStore) Quantity(foodID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[foodID]
}

// Count is the number of units in the cart.
func (s *CartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total()
}

// Close drops the pending save and stops further ones.
func (s *CartStore) Close() {
	s.debounce.Cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token = ""
	s.hydrated = false
	s.hydrating = false
	s.dirty = nil
}

func (s *CartStore) changedLocked(foodID int) {
	if s.hydrating {
		s.dirty[foodID] = struct{}{}
	}
	s.scheduleSaveLocked()
}

func (s *CartStore) scheduleSaveLocked() {
	if !s.hydrated || s.token == "" || s.closed {
		return
	}
	s.debounce.Trigger(s.save)
}

func (s *CartStore) save() {
	s.mu.Lock()
	if !s.hydrated || s.token == "" || s.closed {
		s.mu.Unlock()
		return
	}
	token := s.token
	items := s.items.Clone()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.api.SaveCart(ctx, token, items); err != nil {
		s.logger.Error("failed to save cart", zap.Error(err), zap.Int("items", len(items)))
		return
	}
	s.logger.Debug("cart saved", zap.Int("items", len(items)))
}
