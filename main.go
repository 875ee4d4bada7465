package main

import (
	"context"
	"log"

	"food-ordering/config"
	_ "food-ordering/docs"
	"food-ordering/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Food Ordering Sandbox API
// @version 1.0
// @description Catalog, cart and order endpoints with a sandbox payment provider.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger, err := config.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	deps, cleanup, err := routes.NewDependencies(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	router := routes.NewRouter(deps, cfg.OriginURL)

	port := ":" + cfg.Port
	logger.Info("server starting",
		zap.String("port", port),
		zap.String("env", cfg.AppEnv),
		zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/index.html"),
	)

	if err := router.Run(port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
