package service

import (
	"context"
	"errors"

	"ffstore/internal/domain"
	"ffstore/internal/repository"
	"ffstore/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notice errors: user-facing messages, never server failures.
var (
	ErrAlreadyInCart      = repository.ErrAlreadyInCart
	ErrProductUnavailable = repository.ErrProductUnavailable
)

// Cart is the single contract both cart representations expose. The checkout
// engine only ever sees this interface and never branches on visitor kind.
type Cart interface {
	// Resolve returns the current cart entries in insertion order and the
	// total computed from live product prices. Read-only.
	Resolve(ctx context.Context) ([]*domain.CartEntry, decimal.Decimal, error)

	// Add records intent to buy the product. Duplicate adds return
	// ErrAlreadyInCart.
	Add(ctx context.Context, productID uuid.UUID) error

	// Remove forgets the product. Removing an absent product is a no-op.
	Remove(ctx context.Context, productID uuid.UUID) error

	// Clear empties the cart. Idempotent.
	Clear(ctx context.Context) error

	// Count returns the number of entries without resolving products
	Count(ctx context.Context) (int, error)

	// Owner returns the owning user ID, or nil for anonymous visitors
	Owner() *uuid.UUID
}

// PersistedCart is the cart of an authenticated user, backed by cart_items
// rows.
type PersistedCart struct {
	userID   uuid.UUID
	cartRepo repository.CartRepository
}

func (c *PersistedCart) Resolve(ctx context.Context) ([]*domain.CartEntry, decimal.Decimal, error) {
	entries, err := c.cartRepo.ListEntries(ctx, c.userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return entries, cartTotal(entries), nil
}

func (c *PersistedCart) Add(ctx context.Context, productID uuid.UUID) error {
	return c.cartRepo.Add(ctx, c.userID, productID)
}

func (c *PersistedCart) Remove(ctx context.Context, productID uuid.UUID) error {
	return c.cartRepo.Remove(ctx, c.userID, productID)
}

func (c *PersistedCart) Clear(ctx context.Context) error {
	return c.cartRepo.Clear(ctx, c.userID)
}

func (c *PersistedCart) Count(ctx context.Context) (int, error) {
	return c.cartRepo.Count(ctx, c.userID)
}

func (c *PersistedCart) Owner() *uuid.UUID {
	id := c.userID
	return &id
}

// EphemeralCart is the cart of an anonymous visitor: a session-scoped list of
// product IDs that disappears with the session.
type EphemeralCart struct {
	sessionID   string
	store       *session.CartStore
	productRepo repository.ProductRepository
}

// Resolve looks up each remembered product ID. IDs whose product row no
// longer exists are silently dropped. Products that merely became
// unavailable are kept; the checkout transaction is what finally rejects
// them.
func (c *EphemeralCart) Resolve(ctx context.Context) ([]*domain.CartEntry, decimal.Decimal, error) {
	ids, err := c.store.List(ctx, c.sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	entries := []*domain.CartEntry{}
	for _, id := range ids {
		product, err := c.productRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			return nil, decimal.Zero, err
		}
		entries = append(entries, &domain.CartEntry{Product: product, Quantity: 1})
	}

	return entries, cartTotal(entries), nil
}

func (c *EphemeralCart) Add(ctx context.Context, productID uuid.UUID) error {
	added, err := c.store.Add(ctx, c.sessionID, productID)
	if err != nil {
		return err
	}
	if !added {
		return ErrAlreadyInCart
	}
	return nil
}

func (c *EphemeralCart) Remove(ctx context.Context, productID uuid.UUID) error {
	return c.store.Remove(ctx, c.sessionID, productID)
}

func (c *EphemeralCart) Clear(ctx context.Context) error {
	return c.store.Clear(ctx, c.sessionID)
}

func (c *EphemeralCart) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx, c.sessionID)
}

func (c *EphemeralCart) Owner() *uuid.UUID {
	return nil
}

func cartTotal(entries []*domain.CartEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return total
}

// CartService builds carts for visitors and guards cart additions
type CartService interface {
	// CartFor returns the visitor's cart: persisted when a user ID is
	// present, session-backed otherwise.
	CartFor(userID *uuid.UUID, sessionID string) Cart

	// AddProduct validates the product before delegating to the cart:
	// unknown products are ErrProductNotFound, sold ones
	// ErrProductUnavailable.
	AddProduct(ctx context.Context, cart Cart, productID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	store       *session.CartStore
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, store *session.CartStore) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		store:       store,
	}
}

func (s *cartService) CartFor(userID *uuid.UUID, sessionID string) Cart {
	if userID != nil {
		return &PersistedCart{userID: *userID, cartRepo: s.cartRepo}
	}
	return &EphemeralCart{sessionID: sessionID, store: s.store, productRepo: s.productRepo}
}

func (s *cartService) AddProduct(ctx context.Context, cart Cart, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	if !product.Available {
		return ErrProductUnavailable
	}

	return cart.Add(ctx, productID)
}
