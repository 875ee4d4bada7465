package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"food-ordering/models"
	"food-ordering/services"
)

const help = `commands:
  menu [category]            list foods
  add <foodId> | sub <foodId>
  remove <foodId>            remove a food from the cart
  cart                       show the cart and totals
  clear                      empty the cart
  register <name> <email> <password>
  login <email> <password>
  logout
  checkout                   enter billing details and pay
  orders                     order history
  help | quit`

// shell is the interactive storefront. Payments go through a sandbox
// widget whose outcome is picked at the prompt.
type shell struct {
	session  *services.Session
	widget   services.PaymentWidget
	cfg      services.CheckoutConfig
	checkout *services.CheckoutService
	in       *bufio.Scanner
	out      io.Writer
}

func newShell(session *services.Session, keySecret string, cfg services.CheckoutConfig, in io.Reader, out io.Writer) *shell {
	sh := &shell{session: session, cfg: cfg, in: bufio.NewScanner(in), out: out}
	sh.widget = &services.SandboxWidget{Secret: keySecret, Decide: sh.decidePayment}
	sh.rebind()
	return sh
}

// Info, Error and Navigate make the shell the checkout's notifier and
// navigator.
func (sh *shell) Info(msg string)  { fmt.Fprintln(sh.out, msg) }
func (sh *shell) Error(msg string) { fmt.Fprintln(sh.out, "! "+msg) }

func (sh *shell) Navigate(view string) {
	if view == services.ViewMyOrders {
		sh.printOrders(context.Background())
		return
	}
	fmt.Fprintf(sh.out, "-> %s\n", view)
}

func (sh *shell) run(ctx context.Context) error {
	fmt.Fprintln(sh.out, "food-ordering storefront, type help for commands")
	for {
		fmt.Fprint(sh.out, "> ")
		line, ok := sh.readLine()
		if !ok {
			return sh.in.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := sh.exec(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, cmd string, args []string) error {
	cart := sh.session.Cart()
	switch cmd {
	case "help":
		fmt.Fprintln(sh.out, help)
	case "menu":
		return sh.printMenu(ctx, strings.Join(args, " "))
	case "add", "sub", "remove":
		id, err := foodArg(args)
		if err != nil {
			return err
		}
		if _, err := sh.session.Catalog().Load(ctx); err != nil {
			return errors.New("menu is unavailable, try again later")
		}
		if _, ok := sh.session.Catalog().Food(id); !ok {
			return fmt.Errorf("no food with id %d", id)
		}
		switch cmd {
		case "add":
			cart.IncreaseQuantity(id)
		case "sub":
			cart.DecreaseQuantity(id)
		default:
			if err := cart.RemoveFromCart(ctx, id); err != nil {
				return err
			}
		}
		fmt.Fprintf(sh.out, "cart: %d item(s)\n", cart.Count())
	case "cart":
		sh.printCart()
	case "clear":
		if sh.session.Token() == "" {
			cart.ResetLocal()
			return nil
		}
		return cart.ClearCart(ctx)
	case "register":
		if len(args) < 3 {
			return errors.New("usage: register <name> <email> <password>")
		}
		name := strings.Join(args[:len(args)-2], " ")
		user, err := sh.session.Register(ctx, name, args[len(args)-2], args[len(args)-1])
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "welcome, %s\n", user.Name)
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <password>")
		}
		user, err := sh.session.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "welcome back, %s\n", user.Name)
	case "logout":
		if err := sh.session.Logout(ctx); err != nil {
			return err
		}
		sh.rebind()
		fmt.Fprintln(sh.out, "logged out")
	case "checkout":
		return sh.placeOrder(ctx)
	case "orders":
		sh.printOrders(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// rebind starts a checkout on the session's current cart store, which
// changes on logout.
func (sh *shell) rebind() {
	sh.checkout = sh.session.NewCheckout(sh.widget, sh, sh, sh.cfg)
}

func (sh *shell) placeOrder(ctx context.Context) error {
	if err := sh.checkout.Reset(); err != nil {
		return err
	}
	sh.printCart()

	var billing models.BillingDetails
	prompts := []struct {
		label string
		dst   *string
	}{
		{"first name", &billing.FirstName},
		{"last name", &billing.LastName},
		{"email", &billing.Email},
		{"street", &billing.Street},
		{"city", &billing.City},
		{"state", &billing.State},
		{"zipcode", &billing.Zipcode},
		{"country", &billing.Country},
		{"phone", &billing.Phone},
	}
	if sh.session.Token() != "" && sh.session.Cart().Count() > 0 {
		for _, p := range prompts {
			fmt.Fprintf(sh.out, "%s: ", p.label)
			line, ok := sh.readLine()
			if !ok {
				return io.ErrUnexpectedEOF
			}
			*p.dst = strings.TrimSpace(line)
		}
	}

	err := sh.checkout.PlaceOrder(ctx, billing)
	// the user has already been told what happened
	if errors.Is(err, services.ErrPaymentDismissed) || errors.Is(err, services.ErrPaymentFailed) ||
		errors.Is(err, services.ErrNotAuthenticated) || errors.Is(err, services.ErrEmptyCart) {
		return nil
	}
	return err
}

func (sh *shell) decidePayment(req services.PaymentRequest) services.PaymentOutcomeKind {
	amount := strconv.FormatFloat(float64(req.Amount)/100, 'f', 2, 64)
	fmt.Fprintf(sh.out, "pay %s %s for %s? [p]ay / [f]ail / [d]ismiss: ", amount, req.Currency, req.ProviderOrderID)
	line, _ := sh.readLine()
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "p", "pay", "y", "yes":
		return services.PaymentCompleted
	case "f", "fail":
		return services.PaymentFailed
	default:
		return services.PaymentDismissed
	}
}

func (sh *shell) readLine() (string, bool) {
	if !sh.in.Scan() {
		return "", false
	}
	return sh.in.Text(), true
}

func (sh *shell) printMenu(ctx context.Context, category string) error {
	foods, err := sh.session.Catalog().Load(ctx)
	if err != nil {
		return errors.New("menu is unavailable, try again later")
	}
	if category != "" {
		foods = sh.session.Catalog().ByCategory(category)
	}
	for _, f := range foods {
		fmt.Fprintf(sh.out, "%3d  %-24s %-10s %8s\n", f.ID, f.Name, f.Category, f.Price.StringFixed(2))
	}
	return nil
}

func (sh *shell) printCart() {
	q := sh.session.Cart().Quantities()
	if len(q) == 0 {
		fmt.Fprintln(sh.out, "cart is empty")
		return
	}
	draft := sh.checkout.Draft()
	ids := make([]int, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, line := range draft.Lines {
		fmt.Fprintf(sh.out, "%3d  %-24s x%-3d %8s\n", line.FoodID, line.Name, line.Quantity, line.Amount().StringFixed(2))
	}
	for _, id := range ids {
		if _, ok := sh.session.Catalog().Food(id); !ok {
			fmt.Fprintf(sh.out, "%3d  (no longer available) x%d\n", id, q[id])
		}
	}
	fmt.Fprintf(sh.out, "subtotal %s  shipping %s  tax %s  total %s\n",
		draft.Subtotal.StringFixed(2), draft.Shipping.StringFixed(2), draft.Tax.StringFixed(2), draft.Total.StringFixed(2))
}

func (sh *shell) printOrders(ctx context.Context) {
	orders, err := sh.session.Orders(ctx)
	if err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(sh.out, "no orders yet")
		return
	}
	for _, o := range orders {
		paid := "unpaid"
		if o.Payment {
			paid = "paid"
		}
		fmt.Fprintf(sh.out, "%s  %s  %s %s  %s  %s\n",
			o.Date.Format("2006-01-02 15:04"), o.ID, o.Amount.StringFixed(2), o.Currency, o.Status, paid)
	}
}

func foodArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a food id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid food id %q", args[0])
	}
	return id, nil
}
