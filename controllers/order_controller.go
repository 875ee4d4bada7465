package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/services"
	"food-ordering/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderMailer sends the confirmation for a paid order.
type OrderMailer interface {
	SendOrderConfirmation(order models.Order) error
}

type OrderController struct {
	Orders    repositories.OrderRepository
	Foods     repositories.FoodRepository
	Carts     repositories.CartRepository
	Pricing   services.Pricing
	Currency  string
	KeySecret string
	// Mailer is optional.
	Mailer OrderMailer
	Logger *zap.Logger
}

func (ctrl *OrderController) getPaginationParams(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}

	offset = (page - 1) * limit
	return page, limit, offset
}

func (ctrl *OrderController) generateLinks(c *gin.Context, page, limit, totalPages int) models.PaginationLinks {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}

	makeURL := func(pageNum int) string {
		params := url.Values{}
		for key, values := range c.Request.URL.Query() {
			if key == "page" || key == "limit" {
				continue
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("limit", strconv.Itoa(limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
	}

	links := models.PaginationLinks{Self: makeURL(page)}
	if page > 1 {
		links.Prev = makeURL(page - 1)
	}
	if page < totalPages {
		links.Next = makeURL(page + 1)
	}
	return links
}

// CreateOrder godoc
// @Summary Create order
// @Description Price the order on the server and open a provider payment order for it
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.Response{data=models.PaymentOrder}
// @Failure 400 {object} models.ErrorResponse
// @Router /orders/create [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid order", Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	quantities := make(models.QuantityMap, len(req.Items))
	foods := make(map[int]models.FoodItem, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: fmt.Sprintf("Invalid quantity for food %d", line.FoodID)})
			return
		}
		food, err := ctrl.Foods.Get(ctx, line.FoodID)
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: fmt.Sprintf("Food %d is no longer available", line.FoodID)})
			return
		}
		if err != nil {
			ctrl.Logger.Error("food lookup failed", zap.Int("food_id", line.FoodID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Unable to place order, please try again."})
			return
		}
		foods[food.ID] = *food
		quantities[food.ID] += line.Quantity
	}

	draft, _ := ctrl.Pricing.Draft(quantities, func(id int) (models.FoodItem, bool) {
		f, ok := foods[id]
		return f, ok
	})
	if !req.Amount.IsZero() && !req.Amount.Equal(draft.Total) {
		ctrl.Logger.Warn("client total differs from server total",
			zap.String("client", req.Amount.String()), zap.String("server", draft.Total.String()))
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          middleware.UserID(c),
		Items:           draft.Lines,
		Amount:          draft.Total,
		AmountMinor:     models.ToMinorUnits(draft.Total),
		Currency:        ctrl.Currency,
		Address:         req.Address,
		Status:          models.OrderStatusProcessing,
		ProviderOrderID: newProviderOrderID(),
	}
	if err := ctrl.Orders.Create(ctx, order); err != nil {
		ctrl.Logger.Error("create order failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Unable to place order, please try again."})
		return
	}

	ctrl.Logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("provider_order_id", order.ProviderOrderID),
		zap.Int64("amount_minor", order.AmountMinor))

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order created",
		Data: models.PaymentOrder{
			OrderID:         order.ID,
			ProviderOrderID: order.ProviderOrderID,
			Amount:          order.AmountMinor,
			Currency:        order.Currency,
			Status:          models.PaymentStatusCreated,
		},
	})
}

func newProviderOrderID() string {
	return models.ProviderOrderPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

// VerifyPayment godoc
// @Summary Verify payment
// @Description Check the provider signature, mark the order paid and clear the cart
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.VerifyPaymentRequest true "Payment identifiers"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/verify [post]
func (ctrl *OrderController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	order, ok := ctrl.ownOrder(c, req.OrderID)
	if !ok {
		return
	}

	if order.ProviderOrderID != req.ProviderOrderID {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Payment does not belong to this order"})
		return
	}
	if !utils.VerifyPaymentSignature(req.ProviderOrderID, req.ProviderPaymentID, req.Signature, ctrl.KeySecret) {
		ctrl.Logger.Warn("payment signature mismatch", zap.String("order_id", order.ID))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid payment signature"})
		return
	}

	if !order.Payment {
		if err := ctrl.Orders.MarkPaid(ctx, order.ID); err != nil {
			ctrl.Logger.Error("mark paid failed", zap.String("order_id", order.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Payment verification failed"})
			return
		}
		order.Payment = true

		if err := ctrl.Carts.Clear(ctx, userID); err != nil {
			ctrl.Logger.Warn("clear cart after payment failed", zap.String("user_id", userID), zap.Error(err))
		}
		ctrl.sendConfirmation(*order)
	}

	ctrl.Logger.Info("payment verified",
		zap.String("order_id", order.ID), zap.String("payment_id", req.ProviderPaymentID))
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Payment verified", Data: order})
}

func (ctrl *OrderController) sendConfirmation(order models.Order) {
	if ctrl.Mailer == nil {
		return
	}
	go func() {
		if err := ctrl.Mailer.SendOrderConfirmation(order); err != nil {
			ctrl.Logger.Warn("order confirmation not sent", zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}

// DeleteOrder godoc
// @Summary Delete order
// @Description Cancel an unpaid order, e.g. after the payment window was dismissed
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id} [delete]
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	order, ok := ctrl.ownOrder(c, c.Param("id"))
	if !ok {
		return
	}
	if order.Payment {
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Paid orders cannot be deleted"})
		return
	}

	if err := ctrl.Orders.Delete(c.Request.Context(), order.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		ctrl.Logger.Error("delete order failed", zap.String("order_id", order.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to delete order"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order deleted"})
}

// ownOrder loads the order and checks it belongs to the caller. It writes
// the error response itself.
func (ctrl *OrderController) ownOrder(c *gin.Context, id string) (*models.Order, bool) {
	order, err := ctrl.Orders.Get(c.Request.Context(), id)
	if err == nil && order.UserID != middleware.UserID(c) {
		err = repositories.ErrNotFound
	}
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		return nil, false
	}
	if err != nil {
		ctrl.Logger.Error("get order failed", zap.String("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get order"})
		return nil, false
	}
	return order, true
}

// ListMyOrders godoc
// @Summary My orders
// @Description Order history of the caller, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Order}
// @Router /orders [get]
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	orders, err := ctrl.Orders.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ctrl.Logger.Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Orders retrieved", Data: orders})
}

// ListAllOrders godoc
// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.PaginatedResponse{data=[]models.Order}
// @Router /orders/all [get]
func (ctrl *OrderController) ListAllOrders(c *gin.Context) {
	page, limit, offset := ctrl.getPaginationParams(c, 20)
	status := c.Query("status")

	all, err := ctrl.Orders.ListAll(c.Request.Context())
	if err != nil {
		ctrl.Logger.Error("list all orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get orders"})
		return
	}

	filtered := all[:0:0]
	for _, o := range all {
		if status == "" || status == "All" || o.Status == status {
			filtered = append(filtered, o)
		}
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	pageItems := []models.Order{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		pageItems = filtered[offset:end]
	}

	c.JSON(http.StatusOK, models.PaginatedResponse{
		Success: true,
		Message: "Orders retrieved successfully",
		Data:    pageItems,
		Meta: models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
		Links: ctrl.generateLinks(c, page, limit, totalPages),
	})
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Status is required"})
		return
	}
	status := strings.TrimSpace(req.Status)
	if !models.IsOrderStatus(status) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Unknown order status"})
		return
	}

	err := ctrl.Orders.UpdateStatus(c.Request.Context(), id, status)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
		return
	}
	if err != nil {
		ctrl.Logger.Error("update order status failed", zap.String("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Order status updated successfully",
		Data:    gin.H{"id": id, "status": status},
	})
}
