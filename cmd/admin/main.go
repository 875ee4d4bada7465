package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"food-ordering/config"
	"food-ordering/libs"
	"food-ordering/models"
	"food-ordering/services"

	"go.uber.org/zap"
)

const usage = `usage: admin <command> [flags]

commands:
  foods                      list foods
  add-food -name -category -price -image [-description]
  remove-food -id
  orders [-status]           list all orders (needs ADMIN_EMAIL/ADMIN_PASSWORD)
  set-status -id -status     update an order's status`

func main() {
	cfg := config.LoadConfig()
	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("admin: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return flag.ErrHelp
	}

	logger, err := config.NewLogger(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	api := libs.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "foods":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		foods, err := services.NewAdminService(api, "", logger).ListFoods(ctx)
		if err != nil {
			return err
		}
		for _, f := range foods {
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", f.ID, f.Name, f.Category, f.Price.StringFixed(2))
		}
		return nil

	case "add-food":
		var req models.CreateFoodRequest
		var imagePath string
		fs.StringVar(&req.Name, "name", "", "food name")
		fs.StringVar(&req.Description, "description", "", "description")
		fs.StringVar(&req.Category, "category", "", "one of "+strings.Join(models.Categories, ", "))
		fs.StringVar(&req.Price, "price", "", "price, e.g. 120.50")
		fs.StringVar(&imagePath, "image", "", "path to the image file")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if imagePath == "" {
			return errors.New("-image is required")
		}
		f, err := os.Open(imagePath)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		food, err := services.NewAdminService(api, "", logger).AddFood(ctx, req, f, filepath.Base(imagePath))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added %d %s\n", food.ID, food.Name)
		return nil

	case "remove-food":
		id := fs.Int("id", 0, "food id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id <= 0 {
			return errors.New("-id is required")
		}
		if err := services.NewAdminService(api, "", logger).RemoveFood(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d\n", *id)
		return nil

	case "orders":
		status := fs.String("status", "", "only orders with this status")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		admin, err := signIn(ctx, api, cfg, logger)
		if err != nil {
			return err
		}
		orders, err := admin.ListOrders(ctx)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if *status != "" && o.Status != *status {
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%s %s\t%s\tpaid=%t\t%s\n",
				o.ID, o.Date.Format("2006-01-02 15:04"), o.Amount.StringFixed(2), o.Currency, o.Status, o.Payment, o.Address.Email)
		}
		return nil

	case "set-status":
		id := fs.String("id", "", "order id")
		status := fs.String("status", "", "one of "+strings.Join(models.OrderStatuses, ", "))
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("-id is required")
		}
		admin, err := signIn(ctx, api, cfg, logger)
		if err != nil {
			return err
		}
		if err := admin.UpdateOrderStatus(ctx, *id, *status); err != nil {
			return err
		}
		fmt.Fprintf(out, "order %s is now %s\n", *id, *status)
		return nil

	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	}

	fmt.Fprintln(out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func signIn(ctx context.Context, api *libs.APIClient, cfg *config.Config, logger *zap.Logger) (*services.AdminService, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	resp, err := api.Login(ctx, models.LoginRequest{Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	return services.NewAdminService(api, resp.Token, logger), nil
}
