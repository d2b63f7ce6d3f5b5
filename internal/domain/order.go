package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is an order lifecycle state. The values are the Portuguese
// labels the store has always shown to admins and customers.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pendente"
	StatusPaid      OrderStatus = "pago"
	StatusDelivered OrderStatus = "entregue"
	StatusCancelled OrderStatus = "cancelado"
)

// statusTransitions is the allowed-transition table. Payment is confirmed
// manually by an admin, delivery happens after payment, and any order can be
// cancelled until it has been delivered.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order represents a customer purchase. UserID is nil for guest checkouts.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        *uuid.UUID      `json:"user_id" db:"user_id"`
	Total         decimal.Decimal `json:"total" db:"total"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	CustomerEmail string          `json:"customer_email" db:"customer_email"`
	CustomerPhone string          `json:"customer_phone" db:"customer_phone"`
	Notes         string          `json:"notes" db:"notes"`
	Status        OrderStatus     `json:"status" db:"status"`
	Items         []*OrderItem    `json:"items,omitempty" db:"-"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is an immutable snapshot of a product at checkout time. Name and
// price are copied from the live product row so later catalog edits or
// deletions never corrupt order history. ProductID is nil once the product
// row has been deleted. Position preserves the cart's insertion order.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   *uuid.UUID      `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Position    int             `json:"-" db:"position"`
}
