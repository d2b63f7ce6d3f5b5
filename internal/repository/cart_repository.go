package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ffstore/internal/domain"

	"github.com/google/uuid"
)

// ErrAlreadyInCart is a notice, not a failure: each product is a unique unit,
// so a cart can hold at most one row for it.
var ErrAlreadyInCart = errors.New("product is already in the cart")

// CartRepository defines the interface for persisted (authenticated) cart
// data access
type CartRepository interface {
	// Add inserts a cart row. Returns ErrAlreadyInCart when the
	// (user, product) pair already exists.
	Add(ctx context.Context, userID, productID uuid.UUID) error

	// Remove deletes a cart row. Removing an absent row is a no-op.
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// ListEntries resolves the cart rows against live product data, in
	// insertion order.
	ListEntries(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error)

	Count(ctx context.Context, userID uuid.UUID) (int, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Add inserts a cart row using parameterized queries
func (r *cartRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), userID, productID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyInCart
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// Remove deletes a cart row; absent rows are silently ignored
func (r *cartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ListEntries joins cart rows to live products. Quantity is always 1: each
// product is a unique unit.
func (r *cartRepository) ListEntries(ctx context.Context, userID uuid.UUID) ([]*domain.CartEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC
	`, prefixedProductColumns("p"))

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart entries: %w", err)
	}
	defer rows.Close()

	entries := []*domain.CartEntry{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart entry: %w", err)
		}
		entries = append(entries, &domain.CartEntry{Product: product, Quantity: 1})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of items in the user's cart
func (r *cartRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}

// Clear deletes every cart row for the user
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
