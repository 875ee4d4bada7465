package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"food-ordering/libs"
	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type FoodController struct {
	Foods         repositories.FoodRepository
	Images        libs.ImageStore
	MaxUploadSize int64
	Logger        *zap.Logger
}

// ListFoods godoc
// @Summary List foods
// @Description Get the whole food catalog
// @Tags Foods
// @Produce json
// @Success 200 {object} models.Response{data=[]models.FoodItem}
// @Router /foods [get]
func (ctrl *FoodController) ListFoods(c *gin.Context) {
	foods, err := ctrl.Foods.List(c.Request.Context())
	if err != nil {
		ctrl.Logger.Error("list foods failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get foods"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Foods retrieved", Data: foods})
}

// GetFood godoc
// @Summary Get food
// @Tags Foods
// @Produce json
// @Param id path int true "Food ID"
// @Success 200 {object} models.Response{data=models.FoodItem}
// @Failure 404 {object} models.ErrorResponse
// @Router /foods/{id} [get]
func (ctrl *FoodController) GetFood(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid food id"})
		return
	}

	food, err := ctrl.Foods.Get(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Food not found"})
		return
	}
	if err != nil {
		ctrl.Logger.Error("get food failed", zap.Int("food_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get food"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Food retrieved", Data: food})
}

// CreateFood godoc
// @Summary Create food
// @Description Add a food item with its image (admin panel)
// @Tags Foods
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string false "Description"
// @Param category formData string true "Category"
// @Param price formData string true "Price"
// @Param image formData file true "Image"
// @Success 201 {object} models.Response{data=models.FoodItem}
// @Failure 400 {object} models.ErrorResponse
// @Router /foods [post]
func (ctrl *FoodController) CreateFood(c *gin.Context) {
	var req models.CreateFoodRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Name, category and price are required", Error: err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Food name must be at least 2 characters"})
		return
	}
	if !models.IsCategory(req.Category) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Unknown category"})
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || !price.IsPositive() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid price"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Image is required"})
		return
	}
	if err := utils.ValidateImage(file, ctrl.MaxUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Failed to read image"})
		return
	}
	defer src.Close()

	imageURL, imageID, err := ctrl.Images.Save(c.Request.Context(), src, file.Filename)
	if err != nil {
		ctrl.Logger.Error("image upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to save image"})
		return
	}

	food := &models.FoodItem{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Price:       price,
		Image:       imageURL,
		ImageID:     imageID,
		CreatedAt:   time.Now(),
	}
	if err := ctrl.Foods.Create(c.Request.Context(), food); err != nil {
		ctrl.Logger.Error("create food failed", zap.Error(err))
		if derr := ctrl.Images.Delete(c.Request.Context(), imageID); derr != nil {
			ctrl.Logger.Warn("orphaned image", zap.String("image_id", imageID), zap.Error(derr))
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to create food"})
		return
	}

	ctrl.Logger.Info("food created", zap.Int("food_id", food.ID), zap.String("name", food.Name))
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Food added", Data: food})
}

// DeleteFood godoc
// @Summary Delete food
// @Description Remove a food item and its image (admin panel)
// @Tags Foods
// @Produce json
// @Param id path int true "Food ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /foods/{id} [delete]
func (ctrl *FoodController) DeleteFood(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid food id"})
		return
	}

	food, err := ctrl.Foods.Delete(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Food not found"})
		return
	}
	if err != nil {
		ctrl.Logger.Error("delete food failed", zap.Int("food_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to delete food"})
		return
	}

	if err := ctrl.Images.Delete(c.Request.Context(), food.ImageID); err != nil {
		ctrl.Logger.Warn("failed to delete food image", zap.String("image_id", food.ImageID), zap.Error(err))
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Food removed"})
}
