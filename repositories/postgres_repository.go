package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"food-ordering/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// NewPostgresStore returns a Store backed by the given pool. The schema is
// created by config.ConnectDB.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:  &pgUsers{db: pool},
		Foods:  &pgFoods{db: pool},
		Carts:  &pgCarts{db: pool},
		Orders: &pgOrders{db: pool},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type pgUsers struct {
	db *pgxpool.Pool
}

func (r *pgUsers) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, name, email, password, role)
		VALUES ($1, $2, lower($3), $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.Password, user.Role).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *pgUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT id, name, email, password, role, created_at FROM users WHERE email = lower($1)`, email)
}

func (r *pgUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, `SELECT id, name, email, password, role, created_at FROM users WHERE id = $1`, id)
}

func (r *pgUsers) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

type pgFoods struct {
	db *pgxpool.Pool
}

const foodColumns = `id, name, description, category, price::text, image, image_id, created_at`

func scanFood(row pgx.Row) (*models.FoodItem, error) {
	var (
		f     models.FoodItem
		price string
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Category, &price, &f.Image, &f.ImageID, &f.CreatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	f.Price = p
	return &f, nil
}

func (r *pgFoods) List(ctx context.Context) ([]models.FoodItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := []models.FoodItem{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}

func (r *pgFoods) Get(ctx context.Context, id int) (*models.FoodItem, error) {
	f, err := scanFood(r.db.QueryRow(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *pgFoods) Create(ctx context.Context, food *models.FoodItem) error {
	query := `
		INSERT INTO foods (name, description, category, price, image, image_id)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		food.Name, food.Description, food.Category, food.Price.String(), food.Image, food.ImageID,
	).Scan(&food.ID, &food.CreatedAt)
}

func (r *pgFoods) Delete(ctx context.Context, id int) (*models.FoodItem, error) {
	f, err := scanFood(r.db.QueryRow(ctx, `DELETE FROM foods WHERE id = $1 RETURNING `+foodColumns, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

type pgCarts struct {
	db *pgxpool.Pool
}

func (r *pgCarts) Get(ctx context.Context, userID string) (*models.CartSnapshot, error) {
	snap := &models.CartSnapshot{UserID: userID, Items: map[string]int{}}

	err := r.db.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&snap.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT food_id, quantity FROM cart_items WHERE cart_id = $1`, snap.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var foodID, qty int
		if err := rows.Scan(&foodID, &qty); err != nil {
			return nil, err
		}
		snap.Items[strconv.Itoa(foodID)] = qty
	}
	return snap, rows.Err()
}

func (r *pgCarts) Save(ctx context.Context, userID string, items models.QuantityMap) (*models.CartSnapshot, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cartID, err := ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, err
	}

	snap := &models.CartSnapshot{ID: cartID, UserID: userID, Items: map[string]int{}}
	for foodID, qty := range items {
		if qty <= 0 {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO cart_items (cart_id, food_id, quantity) VALUES ($1, $2, $3)`,
			cartID, foodID, qty)
		if err != nil {
			return nil, err
		}
		snap.Items[strconv.Itoa(foodID)] = qty
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return snap, nil
}

func ensureCart(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var cartID string
	err := tx.QueryRow(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id
	`, uuid.NewString(), userID).Scan(&cartID)
	return cartID, err
}

func (r *pgCarts) RemoveItem(ctx context.Context, userID string, foodID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_items ci USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.food_id = $2
	`, userID, foodID)
	return err
}

func (r *pgCarts) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM cart_items ci USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1
	`, userID)
	return err
}

type pgOrders struct {
	db *pgxpool.Pool
}

const orderColumns = `id, user_id, items, amount::text, amount_minor, currency, address, status, payment, provider_order_id, created_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o       models.Order
		items   []byte
		address []byte
		amount  string
	)
	err := row.Scan(&o.ID, &o.UserID, &items, &amount, &o.AmountMinor, &o.Currency,
		&address, &o.Status, &o.Payment, &o.ProviderOrderID, &o.Date)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, fmt.Errorf("decode order address: %w", err)
	}
	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	return &o, nil
}

func (r *pgOrders) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	address, err := json.Marshal(order.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (id, user_id, items, amount, amount_minor, currency, address, status, payment, provider_order_id)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		order.ID, order.UserID, items, order.Amount.String(), order.AmountMinor, order.Currency,
		address, order.Status, order.Payment, order.ProviderOrderID,
	).Scan(&order.Date)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *pgOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *pgOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *pgOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *pgOrders) list(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *pgOrders) MarkPaid(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE orders SET payment = true WHERE id = $1`, id)
}

func (r *pgOrders) UpdateStatus(ctx context.Context, id, status string) error {
	return r.exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
}

func (r *pgOrders) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
}

func (r *pgOrders) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
