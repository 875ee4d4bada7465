package routes

import (
	"context"
	"fmt"
	"os"

	"food-ordering/config"
	"food-ordering/libs"
	"food-ordering/middleware"
	"food-ordering/repositories"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewDependencies builds the sandbox backing services from cfg. Postgres is
// used when DATABASE_URL is set, process memory otherwise. The returned
// func releases whatever was opened.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Dependencies, func(), error) {
	cleanup := func() {}
	deps := Dependencies{
		JWTSecret:      cfg.JWTSecret,
		JWTExpiry:      cfg.JWTExpiry,
		KeySecret:      cfg.PaymentKeySecret,
		Currency:       cfg.Currency,
		ShippingFee:    cfg.ShippingFee,
		MaxUploadSize:  cfg.MaxUploadSize,
		LegacyCartOnly: cfg.LegacyCartOnly,
		Logger:         logger,
	}

	if cfg.DatabaseURL != "" {
		pool, err := config.ConnectDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return deps, cleanup, err
		}
		deps.Store = repositories.NewPostgresStore(pool)
		cleanup = pool.Close
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		deps.Store = repositories.NewMemoryStore()
	}

	cld := libs.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}
	if cld.Enabled() {
		images, err := libs.NewCloudinaryImageStore(cld, "food-ordering")
		if err != nil {
			cleanup()
			return deps, func() {}, err
		}
		deps.Images = images
	} else {
		if err := os.MkdirAll(cfg.UploadDir, os.ModePerm); err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to create upload directory: %w", err)
		}
		deps.Images = libs.NewLocalImageStore(cfg.UploadDir, "/uploads")
		deps.UploadDir = cfg.UploadDir
	}

	mailer, err := libs.NewMailer(libs.MailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
	if err != nil {
		logger.Info("order confirmation emails disabled", zap.Error(err))
	} else {
		deps.Mailer = mailer
	}

	if cfg.SeedMenu {
		if err := repositories.SeedMenu(ctx, deps.Store.Foods, logger); err != nil {
			logger.Warn("menu seed failed", zap.Error(err))
		}
	}
	if err := repositories.SeedAdmin(ctx, deps.Store.Users, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		logger.Warn("admin seed failed", zap.Error(err))
	}

	return deps, cleanup, nil
}

// NewRouter returns the sandbox engine with recovery, CORS and every route.
func NewRouter(deps Dependencies, origin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(origin))
	SetupRoutes(router, deps)
	return router
}
