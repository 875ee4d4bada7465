package libs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"food-ordering/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL+"/", time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestAPIClient_UnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/cart", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.Response{
			Success: true,
			Message: "Cart retrieved",
			Data:    models.CartSnapshot{ID: "c1", Items: map[string]int{"3": 2}},
		})
	})

	snap, err := client.GetCart(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "c1", snap.ID)
	assert.Equal(t, 2, snap.Items["3"])
}

func TestAPIClient_SendsWireKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var req models.SaveCartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]int{"1": 5, "12": 1}, req.Items)
		writeJSON(w, http.StatusOK, models.Response{Success: true})
	})

	require.NoError(t, client.SaveCart(context.Background(), "tok", models.QuantityMap{1: 5, 12: 1}))
}

func TestAPIClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessage  string
		notFound     bool
		unauthorized bool
	}{
		{"enveloped", http.StatusBadRequest, `{"success":false,"message":"Invalid order","error":"items"}`, "Invalid order", false, false},
		{"plain text 404", http.StatusNotFound, "404 page not found", "Not Found", true, false},
		{"method not allowed", http.StatusMethodNotAllowed, "", "Method Not Allowed", true, false},
		{"not implemented", http.StatusNotImplemented, "", "Not Implemented", true, false},
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"Invalid or expired token"}`, "Invalid or expired token", false, true},
		{"server error", http.StatusInternalServerError, "", "Internal Server Error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			err := client.ClearCart(context.Background(), "tok")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.notFound, IsNotFoundClass(err))
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
		})
	}
}

func TestIsNotFoundClass_TransportError(t *testing.T) {
	assert.False(t, IsNotFoundClass(errors.New("connection refused")))
	assert.False(t, IsNotFoundClass(nil))
}

func TestAPIClient_CreateOrder(t *testing.T) {
	order := models.PaymentOrder{OrderID: "o-1", ProviderOrderID: "order_1", Amount: 28500, Currency: "INR"}

	t.Run("created", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req models.CreateOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, decimal.NewFromInt(285).Equal(req.Amount))
			writeJSON(w, http.StatusCreated, models.Response{Success: true, Data: order})
		})
		got, err := client.CreateOrder(context.Background(), "tok", models.CreateOrderRequest{Amount: decimal.NewFromInt(285)})
		require.NoError(t, err)
		assert.Equal(t, order, *got)
	})

	t.Run("ok with created status", func(t *testing.T) {
		withStatus := order
		withStatus.Status = models.PaymentStatusCreated
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Response{Success: true, Data: withStatus})
		})
		got, err := client.CreateOrder(context.Background(), "tok", models.CreateOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, "order_1", got.ProviderOrderID)
	})

	t.Run("ok without created status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, models.Response{Success: true, Data: order})
		})
		_, err := client.CreateOrder(context.Background(), "tok", models.CreateOrderRequest{})
		assert.ErrorIs(t, err, ErrOrderNotCreated)
	})
}

func TestAPIClient_ListAllOrdersWalksPages(t *testing.T) {
	var pages []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		n := 100
		if page == "2" {
			n = 3
		}
		orders := make([]models.Order, n)
		writeJSON(w, http.StatusOK, models.PaginatedResponse{Success: true, Data: orders})
	})

	orders, err := client.ListAllOrders(context.Background(), "admin")
	require.NoError(t, err)
	assert.Len(t, orders, 103)
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestAPIClient_AddFoodMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Veg Burger", r.FormValue("name"))
		assert.Equal(t, models.CategoryBurger, r.FormValue("category"))
		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "burger.jpg", hdr.Filename)
		writeJSON(w, http.StatusCreated, models.Response{Success: true, Data: models.FoodItem{ID: 9, Name: "Veg Burger"}})
	})

	food, err := client.AddFood(context.Background(), models.CreateFoodRequest{
		Name: "Veg Burger", Category: models.CategoryBurger, Price: "120",
	}, strings.NewReader("jpeg-bytes"), "burger.jpg")
	require.NoError(t, err)
	assert.Equal(t, 9, food.ID)
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalImageStore(dir, "/uploads/")

	url, id, err := store.Save(context.Background(), strings.NewReader("png"), "Photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(id, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, id))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(context.Background(), id))
	require.NoError(t, store.Delete(context.Background(), id))
	_, err = os.Stat(filepath.Join(dir, id))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderConfirmation(t *testing.T) {
	body, err := RenderConfirmation(models.Order{
		ID:       "o-1",
		Address:  models.BillingDetails{FirstName: "Ann"},
		Status:   models.OrderStatusProcessing,
		Items:    []models.OrderLine{{Name: "Veg Burger", Quantity: 2, Price: decimal.NewFromInt(120)}},
		Amount:   decimal.NewFromInt(274),
		Currency: "INR",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Thanks for your order, Ann!")
	assert.Contains(t, body, "Veg Burger")
	assert.Contains(t, body, "274 INR")
}

func TestNewMailer_RequiresSMTP(t *testing.T) {
	_, err := NewMailer(MailConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	m, err := NewMailer(MailConfig{Host: "smtp.example.com", User: "u", Pass: "p", From: "orders@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestCloudinaryConfig_Enabled(t *testing.T) {
	assert.False(t, CloudinaryConfig{}.Enabled())
	assert.False(t, CloudinaryConfig{CloudName: "demo"}.Enabled())
	assert.True(t, CloudinaryConfig{CloudName: "demo", APIKey: "k", APISecret: "s"}.Enabled())
	assert.True(t, CloudinaryConfig{URL: "cloudinary://k:s@demo"}.Enabled())

	_, err := NewCloudinaryImageStore(CloudinaryConfig{}, "food")
	assert.Error(t, err)
}
