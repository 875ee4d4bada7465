package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/repositories"
	"food-ordering/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthController struct {
	Users     repositories.UserRepository
	JWTSecret string
	JWTExpiry time.Duration
	Logger    *zap.Logger
}

// Register godoc
// @Summary Register new user
// @Description Register a new customer account and return a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response{data=models.LoginResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
		return
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hash,
		Role:      models.RoleCustomer,
		CreatedAt: time.Now(),
	}
	if err := ctrl.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Email already exists"})
			return
		}
		ctrl.Logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Registration failed"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, ctrl.JWTSecret, ctrl.JWTExpiry)
	if err != nil {
		ctrl.Logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Registration failed"})
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Registration successful",
		Data:    models.LoginResponse{Token: token, User: *user},
	})
}

// Login godoc
// @Summary User login
// @Description Login with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response{data=models.LoginResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	user, err := ctrl.Users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, ctrl.JWTSecret, ctrl.JWTExpiry)
	if err != nil {
		ctrl.Logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Login failed"})
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token, User: *user},
	})
}

// Profile godoc
// @Summary Get current user
// @Description Get the profile of the token's owner
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (ctrl *AuthController) Profile(c *gin.Context) {
	user, err := ctrl.Users.FindByID(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "User no longer exists"})
		return
	}
	if err != nil {
		ctrl.Logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile retrieved", Data: user})
}
