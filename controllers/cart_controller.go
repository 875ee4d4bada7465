package controllers

import (
	"net/http"
	"strconv"

	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/repositories"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartController struct {
	Carts  repositories.CartRepository
	Logger *zap.Logger
}

// GetCart godoc
// @Summary Get cart
// @Description Get the caller's cart; a user without one gets an empty cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartSnapshot}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.Carts.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		ctrl.Logger.Error("get cart failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get cart"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: cart})
}

// SaveCart godoc
// @Summary Save cart
// @Description Replace the caller's cart items
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.SaveCartRequest true "Cart items keyed by food id"
// @Success 200 {object} models.Response{data=models.CartSnapshot}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/save [put]
func (ctrl *CartController) SaveCart(c *gin.Context) {
	var req models.SaveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	items, skipped := models.CartSnapshot{Items: req.Items}.Quantities()
	if len(skipped) > 0 {
		ctrl.Logger.Warn("ignored invalid cart entries", zap.Strings("keys", skipped))
	}

	cart, err := ctrl.Carts.Save(c.Request.Context(), middleware.UserID(c), items)
	if err != nil {
		ctrl.Logger.Error("save cart failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart saved", Data: cart})
}

// RemoveItem godoc
// @Summary Remove cart item
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param foodId path int true "Food ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/remove/{foodId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	foodID, err := strconv.Atoi(c.Param("foodId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid food id"})
		return
	}
	ctrl.removeItem(c, foodID)
}

// RemoveItemLegacy godoc
// @Summary Remove cart item (legacy)
// @Description Body-addressed variant of the remove endpoint
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.RemoveCartItemRequest true "Food to remove"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/remove [post]
func (ctrl *CartController) RemoveItemLegacy(c *gin.Context) {
	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}
	ctrl.removeItem(c, req.FoodID)
}

func (ctrl *CartController) removeItem(c *gin.Context, foodID int) {
	if err := ctrl.Carts.RemoveItem(c.Request.Context(), middleware.UserID(c), foodID); err != nil {
		ctrl.Logger.Error("remove cart item failed", zap.Int("food_id", foodID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed"})
}

// ClearCart godoc
// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.Carts.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		ctrl.Logger.Error("clear cart failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared"})
}
