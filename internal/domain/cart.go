package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a persisted cart row for an authenticated user. The
// (user, product) pair is unique: each product is a unique unit, so a cart
// can hold at most one of it and quantity is always 1.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartEntry is a resolved cart line: the live product plus its quantity.
type CartEntry struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}
