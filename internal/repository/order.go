package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"streetbite/internal/model"
)

// PostgreSQL foreign_key_violation
const pqForeignKeyViolation = "23503"

const orderColumns = `id, user_id, vendor_id, items, total_amount, status, created_at, updated_at`

type orderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts a new order. A dangling user or vendor reference is reported
// as a NotFoundError rather than a driver error.
func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
		INSERT INTO orders (user_id, vendor_id, items, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, o.UserID, o.VendorID, o.Items, o.TotalAmount, o.Status)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			if pqErr.Constraint == "orders_vendor_id_fkey" {
				return model.NewNotFound("vendor", o.VendorID)
			}
			return model.NewNotFound("user", o.UserID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o model.Order
	err := r.db.GetContext(ctx, &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("order", id)
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	orders := []model.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) ListByVendor(ctx context.Context, vendorID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE vendor_id = $1 ORDER BY created_at DESC`

	orders := []model.Order{}
	if err := r.db.SelectContext(ctx, &orders, query, vendorID); err != nil {
		return nil, fmt.Errorf("list orders by vendor: %w", err)
	}
	return orders, nil
}

// UpdateStatus is a single UPDATE ... RETURNING, so concurrent updates to the
// same order never interleave a read and a write.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + orderColumns

	var o model.Order
	err := r.db.GetContext(ctx, &o, query, status, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("order", id)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &o, nil
}
