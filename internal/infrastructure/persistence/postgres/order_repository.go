package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "book_orders/internal/domain/order"
)

// SQLSTATE codes the store translates into domain errors.
const (
	codeCheckViolation    = "23514"
	codeInvalidTextRepr   = "22P02"
	codeNumericOutOfRange = "22003"
	codeUndefinedTable    = "42P01"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// EnsureSchema creates the orders table when it does not exist yet.
func (r *OrderRepository) EnsureSchema(ctx context.Context) error {
	const stmt = `
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			book_id TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity > 0),
			total_price DOUBLE PRECISION NOT NULL CHECK (total_price >= 0),
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at);
	`
	if _, err := r.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("ensure orders schema: %w", err)
	}
	return nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}

	const query = `
		INSERT INTO orders (id, book_id, quantity, total_price, status, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, book_id, quantity, total_price, status, currency, created_at;
	`

	row := r.pool.QueryRow(ctx, query,
		order.ID(),
		order.BookID(),
		order.Quantity(),
		order.TotalPrice(),
		string(order.Status()),
		order.Currency(),
		order.CreatedAt(),
	)

	saved, err := scanOrder(row)
	if err != nil {
		return nil, translateWrite(err, order.Quantity())
	}
	return saved, nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	const query = `
		SELECT id, book_id, quantity, total_price, status, currency, created_at
		FROM orders
		ORDER BY created_at, id;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, translateRead(err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, translateRead(err)
	}

	if len(orders) == 0 {
		return nil, domain.OrdersNotFound()
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		p         domain.RestoreParams
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&p.ID, &p.BookID, &p.Quantity, &p.TotalPrice, &status, &p.Currency, &createdAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.CreatedAt = createdAt.UTC()

	o, err := domain.Restore(p)
	if err != nil {
		return nil, fmt.Errorf("restore order %s: %w", p.ID, err)
	}
	return o, nil
}

// translateWrite maps constraint violations onto domain errors. Anything
// else is returned wrapped and unclassified.
func translateWrite(err error, quantity int) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeCheckViolation, codeInvalidTextRepr, codeNumericOutOfRange:
			return domain.InvalidQuantity(float64(quantity))
		}
	}
	return fmt.Errorf("save order: %w", err)
}

// translateRead treats a missing table as an empty store.
func translateRead(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return domain.OrdersNotFound()
	}
	return fmt.Errorf("list orders: %w", err)
}
