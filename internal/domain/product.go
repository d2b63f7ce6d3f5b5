package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a single game account offered for sale. Every product is
// a unique, non-restockable unit: there is no stock counter, only the
// availability flag. Once Available flips to false the account is sold and
// must never appear in listings or be added to a cart again.
type Product struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	Description   string              `json:"description" db:"description"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price" db:"original_price"`
	Image         string              `json:"image" db:"image"`
	Level         *int                `json:"level" db:"level"`
	Diamonds      int                 `json:"diamonds" db:"diamonds"`
	SkinsCount    int                 `json:"skins_count" db:"skins_count"`
	Characters    string              `json:"characters" db:"characters"`
	Rank          string              `json:"rank" db:"rank"`
	CategoryID    *uuid.UUID          `json:"category_id" db:"category_id"`
	Available     bool                `json:"is_available" db:"is_available"`
	Featured      bool                `json:"is_featured" db:"is_featured"`
	Views         int                 `json:"views" db:"views"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
