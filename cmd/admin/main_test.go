package main

import (
	"bytes"
	"context"
	"flag"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"food-ordering/config"
	"food-ordering/libs"
	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/routes"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSandbox(t *testing.T) (*config.Config, *repositories.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := repositories.NewMemoryStore()
	require.NoError(t, repositories.SeedMenu(ctx, store.Foods, zap.NewNop()))
	require.NoError(t, repositories.SeedAdmin(ctx, store.Users, "admin@example.com", "admin-password", zap.NewNop()))
	srv := httptest.NewServer(routes.NewRouter(routes.Dependencies{
		Store:         store,
		Images:        libs.NewLocalImageStore(t.TempDir(), "/uploads"),
		JWTSecret:     "jwt-secret",
		JWTExpiry:     time.Hour,
		KeySecret:     "key-secret",
		Currency:      "INR",
		ShippingFee:   decimal.NewFromInt(10),
		MaxUploadSize: 1 << 20,
		Logger:        zap.NewNop(),
	}, ""))
	t.Cleanup(srv.Close)

	return &config.Config{
		AppEnv:         "test",
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		AdminEmail:     "admin@example.com",
		AdminPassword:  "admin-password",
	}, store
}

func TestRun_Foods(t *testing.T) {
	cfg, store := newSandbox(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, []string{"foods"}, &out))
	assert.Contains(t, out.String(), "Chicken Biryani")

	image := filepath.Join(t.TempDir(), "cake.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))
	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"add-food", "-name", "Red Velvet", "-category", models.CategoryCake, "-price", "110", "-image", image}, &out))
	assert.Contains(t, out.String(), "added 7 Red Velvet")

	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"remove-food", "-id", "7"}, &out))
	_, err := store.Foods.Get(ctx, 7)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.Error(t, run(ctx, cfg, []string{"add-food", "-name", "X", "-category", "Soup", "-price", "1", "-image", image}, &out))
	assert.Error(t, run(ctx, cfg, []string{"remove-food"}, &out))
}

func TestRun_Orders(t *testing.T) {
	cfg, store := newSandbox(t)
	ctx := context.Background()

	order := &models.Order{
		UserID:   "u1",
		Amount:   decimal.NewFromInt(285),
		Currency: "INR",
		Status:   models.OrderStatusProcessing,
		Address:  models.BillingDetails{Email: "ann@example.com"},
	}
	require.NoError(t, store.Orders.Create(ctx, order))

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, []string{"orders"}, &out))
	assert.Contains(t, out.String(), order.ID)
	assert.Contains(t, out.String(), "285.00 INR")

	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"set-status", "-id", order.ID, "-status", models.OrderStatusDelivered}, &out))
	got, err := store.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	out.Reset()
	require.NoError(t, run(ctx, cfg, []string{"orders", "-status", models.OrderStatusProcessing}, &out))
	assert.NotContains(t, out.String(), order.ID)

	assert.Error(t, run(ctx, cfg, []string{"set-status", "-id", order.ID, "-status", "Lost"}, &out))

	noCreds := *cfg
	noCreds.AdminPassword = ""
	assert.Error(t, run(ctx, &noCreds, []string{"orders"}, &out))
}

func TestRun_Usage(t *testing.T) {
	cfg, _ := newSandbox(t)
	var out bytes.Buffer

	assert.ErrorIs(t, run(context.Background(), cfg, nil, &out), flag.ErrHelp)
	assert.Contains(t, out.String(), "usage: admin")
	assert.Error(t, run(context.Background(), cfg, []string{"launch"}, &out))
}
