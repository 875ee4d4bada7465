package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"food-ordering/config"
	"food-ordering/libs"
	"food-ordering/repositories"
	"food-ordering/services"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config.LoadConfig(), os.Stdin, os.Stdout); err != nil {
		log.Fatalf("storefront stopped with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger, err := config.NewLogger(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	tokens, closeTokens, err := newTokenRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTokens()

	api := libs.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	session := services.NewSession(api, tokens, cfg.SaveDebounce, logger)
	defer session.Close()

	// Start only fails when ctx is done
	if err := session.Start(ctx); err != nil {
		return nil
	}
	if u := session.User(); u != nil {
		fmt.Fprintf(out, "signed in as %s\n", u.Email)
	}

	sh := newShell(session, cfg.PaymentKeySecret, services.CheckoutConfig{
		KeyID:       cfg.PaymentKeyID,
		Currency:    cfg.Currency,
		StoreName:   "Food Ordering",
		Description: "Food order payment",
		Pricing:     services.NewPricing(cfg.ShippingFee),
	}, in, out)
	return sh.run(ctx)
}

// newTokenRepository picks the token store named by TOKEN_STORE. An
// unreachable Redis falls back to the token file.
func newTokenRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.TokenRepository, func(), error) {
	switch cfg.TokenStore {
	case "redis":
		client, err := repositories.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, using token file", zap.Error(err), zap.String("path", cfg.TokenFile))
			return repositories.NewFileTokenRepository(cfg.TokenFile), func() {}, nil
		}
		return repositories.NewRedisTokenRepository(client, "storefront"), func() { client.Close() }, nil
	case "file", "":
		return repositories.NewFileTokenRepository(cfg.TokenFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
	}
}
