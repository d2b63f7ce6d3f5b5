package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ffstore/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrStatusConflict is returned when the order's status changed
	// between read and update
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// CheckoutLine is one cart entry about to be snapshotted into an order item
type CheckoutLine struct {
	ProductID   uuid.UUID
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateWithItems runs the whole checkout write set in one
	// transaction: the order row, one snapshot item per line, the
	// conditional sold-marking of every product, and (for authenticated
	// buyers) the cart row deletion. Any failure rolls everything back;
	// an already-sold product surfaces as ErrProductUnavailable.
	CreateWithItems(ctx context.Context, order *domain.Order, lines []CheckoutLine) error

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)

	// UpdateStatus moves the order from one status to another. The WHERE
	// clause checks the expected current status so concurrent admin
	// updates cannot silently overwrite each other.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error)

	// SalesSince sums the totals of paid orders created at or after the
	// given time
	SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

type orderRepository struct {
	db          *sql.DB
	productRepo ProductRepository
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB, productRepo ProductRepository) OrderRepository {
	return &orderRepository{db: db, productRepo: productRepo}
}

const orderColumns = `id, user_id, total, payment_method, customer_name, customer_email, customer_phone, notes, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Total,
		&order.PaymentMethod,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.Notes,
		&order.Status,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateWithItems performs the checkout write set atomically
func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order, lines []CheckoutLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, user_id, total, payment_method, customer_name, customer_email, customer_phone, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.Total,
		order.PaymentMethod,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.Notes,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, price, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, line := range lines {
		item := &domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Position:    i,
		}

		_, err = tx.ExecContext(ctx, itemQuery, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Price, item.Quantity, item.Position)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}

		// The account is sold the moment its snapshot is taken. If
		// another checkout got here first, this aborts the whole
		// transaction.
		if err := r.productRepo.MarkSoldTx(ctx, tx, line.ProductID); err != nil {
			return err
		}

		order.Items = append(order.Items, item)
	}

	if order.UserID != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, *order.UserID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkout transaction: %w", err)
	}

	return nil
}

// FindByID retrieves an order and its item snapshots
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, price, quantity, position
		FROM order_items
		WHERE order_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Price, &item.Quantity, &item.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListByUser retrieves a customer's orders, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, orderColumns)
	return r.queryOrders(ctx, query, userID)
}

// ListAll retrieves every order, newest first, for the admin panel
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	return r.queryOrders(ctx, query)
}

// ListRecent retrieves the most recent orders for the dashboard
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC LIMIT $1`, orderColumns)
	return r.queryOrders(ctx, query, limit)
}

// UpdateStatus moves the order status with a compare-and-set on the expected
// current status
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, id, to, from)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the order is gone or its status moved underneath us
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}

	return nil
}

// Count returns the total number of orders
func (r *orderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of orders in the given status
func (r *orderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}

// SalesSince sums paid order totals created at or after the given time
func (r *orderRepository) SalesSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = $1 AND created_at >= $2
	`

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, domain.StatusPaid, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}

	return total, nil
}
