package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"food-ordering/libs"
	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/utils"

	"go.uber.org/zap"
)

// SessionAPI is everything a storefront session talks to.
type SessionAPI interface {
	CatalogAPI
	CartAPI
	OrderAPI
	AuthAPI
}

// Session owns the storefront state of one user: the persisted token, the
// catalog and the cart store. Logging out closes the cart store and starts
// a fresh one.
type Session struct {
	api      SessionAPI
	tokens   repositories.TokenRepository
	catalog  *Catalog
	debounce time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	cart *CartStore
	user *models.User
}

func NewSession(api SessionAPI, tokens repositories.TokenRepository, debounce time.Duration, logger *zap.Logger) *Session {
	return &Session{
		api:      api,
		tokens:   tokens,
		catalog:  NewCatalog(api, logger),
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
		cart:     NewCartStore(api, debounce, logger),
	}
}

// Start restores the persisted token, loads the catalog and hydrates the
// cart. An expired or rejected token is discarded and the session
// continues anonymously. Token store, catalog, cart and profile failures
// are logged and leave the session usable; only ctx cancellation is
// returned.
func (s *Session) Start(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	switch {
	case errors.Is(err, repositories.ErrTokenNotFound):
		token = ""
	case err != nil:
		s.logger.Warn("failed to load stored token, continuing anonymously", zap.Error(err))
		token = ""
	}

	if token != "" && utils.TokenExpired(token, s.now()) {
		s.logger.Info("stored token expired, discarding")
		s.forgetToken(ctx)
		token = ""
	}

	// the menu and the cart load independently; a failed menu fetch is
	// retried by the next Catalog.Load
	if _, err := s.catalog.Load(ctx); err != nil {
		s.logger.Warn("failed to load catalog", zap.Error(err))
	}

	if token == "" {
		return ctx.Err()
	}
	if err := s.Cart().LoadCartData(ctx, token); err != nil {
		if libs.IsUnauthorized(err) {
			s.logger.Info("stored token rejected, discarding")
			s.forgetToken(ctx)
			s.resetCart()
			return ctx.Err()
		}
		// the token stays bound so Rehydrate can retry
		s.logger.Warn("failed to hydrate cart", zap.Error(err))
	}

	user, err := s.api.Profile(ctx, token)
	if err != nil {
		s.logger.Warn("failed to load profile", zap.Error(err))
		return ctx.Err()
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.signedIn(ctx, resp)
}

func (s *Session) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	resp, err := s.api.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.signedIn(ctx, resp)
}

func (s *Session) signedIn(ctx context.Context, resp *models.LoginResponse) (*models.User, error) {
	if resp == nil || resp.Token == "" {
		return nil, ErrNotAuthenticated
	}
	if err := s.tokens.Save(ctx, resp.Token); err != nil {
		// the session still works, it just will not survive a restart
		s.logger.Error("failed to persist token", zap.Error(err))
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	cart := s.cart
	s.mu.Unlock()

	if err := cart.LoadCartData(ctx, resp.Token); err != nil {
		return &user, err
	}
	s.logger.Info("signed in", zap.String("user_id", user.ID))
	return &user, nil
}

// Logout forgets the token and drops all cart state, including a pending
// save.
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.Delete(ctx)
	if errors.Is(err, repositories.ErrTokenNotFound) {
		err = nil
	}
	s.resetCart()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *Session) Cart() *CartStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

func (s *Session) Token() string {
	return s.Cart().Token()
}

func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Orders is the signed-in user's order history.
func (s *Session) Orders(ctx context.Context) ([]models.Order, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return s.api.ListOrders(ctx, token)
}

// NewCheckout binds a checkout to the current cart store.
func (s *Session) NewCheckout(widget PaymentWidget, notify Notifier, nav Navigator, cfg CheckoutConfig) *CheckoutService {
	return NewCheckoutService(s.api, s.Cart(), s.catalog, widget, notify, nav, cfg, s.logger)
}

// Close stops the cart store without touching the persisted token.
func (s *Session) Close() {
	s.Cart().Close()
}

func (s *Session) resetCart() {
	s.mu.Lock()
	old := s.cart
	s.cart = NewCartStore(s.api, s.debounce, s.logger)
	s.mu.Unlock()
	old.Close()
}

func (s *Session) forgetToken(ctx context.Context) {
	if err := s.tokens.Delete(ctx); err != nil && !errors.Is(err, repositories.ErrTokenNotFound) {
		s.logger.Warn("failed to delete token", zap.Error(err))
	}
}
