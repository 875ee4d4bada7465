package routes

import (
	"net/http"
	"time"

	"food-ordering/controllers"
	"food-ordering/handler"
	"food-ordering/libs"
	"food-ordering/middleware"
	"food-ordering/repositories"
	"food-ordering/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies is what the sandbox API is built from.
type Dependencies struct {
	Store         *repositories.Store
	Images        libs.ImageStore
	Mailer        controllers.OrderMailer
	JWTSecret     string
	JWTExpiry     time.Duration
	KeySecret     string
	Currency      string
	ShippingFee   decimal.Decimal
	MaxUploadSize int64
	// UploadDir is served under /uploads when images are stored locally.
	UploadDir string
	// LegacyCartOnly leaves out DELETE /cart/remove/{foodId}, like older
	// deployments.
	LegacyCartOnly bool
	Logger         *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	authCtrl := &controllers.AuthController{
		Users:     deps.Store.Users,
		JWTSecret: deps.JWTSecret,
		JWTExpiry: deps.JWTExpiry,
		Logger:    deps.Logger,
	}
	foodCtrl := &controllers.FoodController{
		Foods:         deps.Store.Foods,
		Images:        deps.Images,
		MaxUploadSize: deps.MaxUploadSize,
		Logger:        deps.Logger,
	}
	cartCtrl := &controllers.CartController{Carts: deps.Store.Carts, Logger: deps.Logger}
	orderCtrl := &controllers.OrderController{
		Orders:    deps.Store.Orders,
		Foods:     deps.Store.Foods,
		Carts:     deps.Store.Carts,
		Pricing:   services.NewPricing(deps.ShippingFee),
		Currency:  deps.Currency,
		KeySecret: deps.KeySecret,
		Mailer:    deps.Mailer,
		Logger:    deps.Logger,
	}

	router.GET("/", gin.WrapF(handler.Index))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", authCtrl.Register)
	v1.POST("/auth/login", authCtrl.Login)

	v1.GET("/foods", foodCtrl.ListFoods)
	v1.GET("/foods/:id", foodCtrl.GetFood)
	v1.POST("/foods", foodCtrl.CreateFood)
	v1.DELETE("/foods/:id", foodCtrl.DeleteFood)

	auth := v1.Group("/")
	auth.Use(middleware.AuthMiddleware(deps.JWTSecret))
	{
		auth.GET("/auth/me", authCtrl.Profile)

		auth.GET("/cart", cartCtrl.GetCart)
		auth.PUT("/cart/save", cartCtrl.SaveCart)
		auth.POST("/cart/remove", cartCtrl.RemoveItemLegacy)
		auth.DELETE("/cart", cartCtrl.ClearCart)
		if !deps.LegacyCartOnly {
			auth.DELETE("/cart/remove/:foodId", cartCtrl.RemoveItem)
		}

		auth.POST("/orders/create", orderCtrl.CreateOrder)
		auth.POST("/orders/verify", orderCtrl.VerifyPayment)
		auth.GET("/orders", orderCtrl.ListMyOrders)
		auth.DELETE("/orders/:id", orderCtrl.DeleteOrder)
	}

	admin := v1.Group("/orders")
	admin.Use(middleware.AuthMiddleware(deps.JWTSecret), middleware.AdminMiddleware())
	{
		admin.GET("/all", orderCtrl.ListAllOrders)
		admin.PATCH("/:id/status", orderCtrl.UpdateOrderStatus)
	}

	if deps.UploadDir != "" {
		router.Static("/uploads", deps.UploadDir)
	}
}
