package config

import (
	"go.uber.org/zap"
)

// NewLogger returns a production logger for APP_ENV=production and a
// development logger otherwise.
func NewLogger(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
