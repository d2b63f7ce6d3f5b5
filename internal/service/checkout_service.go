package service

import (
	"context"
	"errors"
	"time"

	"ffstore/internal/domain"
	"ffstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCartEmpty is the notice returned when checkout is attempted on an empty
// cart
var ErrCartEmpty = errors.New("cart is empty")

// CheckoutInput carries the customer form fields submitted at checkout.
// Payment method is a free-form label (the store takes manual pix payments);
// it is recorded, not validated against an enum.
type CheckoutInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PaymentMethod string
	Notes         string
}

// CheckoutService converts a resolved cart into an order
type CheckoutService interface {
	// Checkout resolves the cart, writes the order with its item
	// snapshots, marks every purchased product sold, and empties the
	// cart. The database writes are one transaction: either the whole
	// purchase lands or none of it does. A product sold out from under
	// the buyer aborts with ErrProductUnavailable.
	Checkout(ctx context.Context, cart Cart, input CheckoutInput) (*domain.Order, error)
}

type checkoutService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(orderRepo repository.OrderRepository, logger *zap.Logger) CheckoutService {
	return &checkoutService{orderRepo: orderRepo, logger: logger}
}

func (s *checkoutService) Checkout(ctx context.Context, cart Cart, input CheckoutInput) (*domain.Order, error) {
	entries, total, err := cart.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrCartEmpty
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        cart.Owner(),
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Notes:         input.Notes,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now(),
	}

	// Snapshot name and price from the live rows the resolver just read.
	// Later catalog edits never touch these copies.
	lines := make([]repository.CheckoutLine, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, repository.CheckoutLine{
			ProductID:   entry.Product.ID,
			ProductName: entry.Product.Name,
			Price:       entry.Product.Price,
			Quantity:    entry.Quantity,
		})
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, lines); err != nil {
		return nil, err
	}

	// Persisted cart rows were already deleted inside the transaction;
	// this empties the session list for anonymous buyers and is a no-op
	// for everyone else. The order is committed either way.
	if err := cart.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}
