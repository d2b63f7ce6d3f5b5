package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ffstore/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrProductUnavailable is returned when a sold account is about to be
	// sold a second time. The conditional write in MarkSoldTx is the only
	// guard against concurrent checkouts of the same unit.
	ErrProductUnavailable = errors.New("product is no longer available")
)

const productColumns = `id, name, description, price, original_price, image, level, diamonds, skins_count, characters, rank, category_id, is_available, is_featured, views, created_at, updated_at`

// prefixedProductColumns qualifies the product column list with a table alias
// for use in joins
func prefixedProductColumns(alias string) string {
	cols := strings.Split(productColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListAvailable(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error)
	ListRelated(ctx context.Context, excludeID uuid.UUID, limit int) ([]*domain.Product, error)
	ListAll(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Counts(ctx context.Context) (total, available int, err error)

	// MarkSoldTx flips is_available to false within the caller's
	// transaction. Returns ErrProductUnavailable if the product was
	// already sold, which must abort the whole transaction.
	MarkSoldTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.OriginalPrice,
		&product.Image,
		&product.Level,
		&product.Diamonds,
		&product.SkinsCount,
		&product.Characters,
		&product.Rank,
		&product.CategoryID,
		&product.Available,
		&product.Featured,
		&product.Views,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, original_price, image, level, diamonds, skins_count, characters, rank, category_id, is_available, is_featured, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.OriginalPrice,
		product.Image,
		product.Level,
		product.Diamonds,
		product.SkinsCount,
		product.Characters,
		product.Rank,
		product.CategoryID,
		product.Available,
		product.Featured,
		product.Views,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, original_price = $5,
		    image = $6, level = $7, diamonds = $8, skins_count = $9,
		    characters = $10, rank = $11, category_id = $12,
		    is_available = $13, is_featured = $14, updated_at = $15
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.OriginalPrice,
		product.Image,
		product.Level,
		product.Diamonds,
		product.SkinsCount,
		product.Characters,
		product.Rank,
		product.CategoryID,
		product.Available,
		product.Featured,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListAvailable retrieves unsold products, newest first, optionally filtered
// by category. Sold products never appear here.
func (r *productRepository) ListAvailable(ctx context.Context, categoryID *uuid.UUID) ([]*domain.Product, error) {
	if categoryID != nil {
		query := fmt.Sprintf(`
			SELECT %s FROM products
			WHERE is_available = TRUE AND category_id = $1
			ORDER BY created_at DESC
		`, productColumns)
		return r.queryProducts(ctx, query, *categoryID)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_available = TRUE
		ORDER BY created_at DESC
	`, productColumns)
	return r.queryProducts(ctx, query)
}

// ListFeatured retrieves unsold featured products for the home page
func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_available = TRUE AND is_featured = TRUE
		ORDER BY created_at DESC
		LIMIT $1
	`, productColumns)
	return r.queryProducts(ctx, query, limit)
}

// ListRelated retrieves other unsold products shown on a product page
func (r *productRepository) ListRelated(ctx context.Context, excludeID uuid.UUID, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_available = TRUE AND id <> $1
		ORDER BY created_at DESC
		LIMIT $2
	`, productColumns)
	return r.queryProducts(ctx, query, excludeID, limit)
}

// ListAll retrieves every product including sold ones, for the admin panel
func (r *productRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY created_at DESC`, productColumns)
	return r.queryProducts(ctx, query)
}

// likeEscaper neutralizes ILIKE wildcards so they match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search searches unsold products by name or description
func (r *productRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return r.ListAvailable(ctx, nil)
	}

	// Use ILIKE for case-insensitive search
	searchPattern := "%" + likeEscaper.Replace(query) + "%"

	searchQuery := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE is_available = TRUE AND (name ILIKE $1 OR description ILIKE $1)
		ORDER BY created_at DESC
	`, productColumns)
	return r.queryProducts(ctx, searchQuery, searchPattern)
}

// IncrementViews bumps the product view counter
func (r *productRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE products SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Counts returns the total and available product counts for the dashboard
func (r *productRepository) Counts(ctx context.Context) (total, available int, err error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_available) FROM products`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &available); err != nil {
		return 0, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, available, nil
}

// MarkSoldTx flips is_available within tx. The WHERE clause re-checks
// availability so that of two concurrent checkouts holding the same product,
// exactly one commits.
func (r *productRepository) MarkSoldTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	query := `
		UPDATE products
		SET is_available = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_available = TRUE
	`

	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark product sold: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductUnavailable
	}

	return nil
}
