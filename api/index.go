package api

import (
	"context"
	"net/http"
	"sync"

	"food-ordering/config"
	"food-ordering/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	router  *gin.Engine
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger, err := config.NewLogger("production")
		if err != nil {
			initErr = err
			return
		}

		// The pool lives for the whole function instance.
		deps, _, err := routes.NewDependencies(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("failed to initialize dependencies", zap.Error(err))
			initErr = err
			return
		}

		router = routes.NewRouter(deps, cfg.OriginURL)
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, `{"success":false,"message":"Service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	router.ServeHTTP(w, r)
}
