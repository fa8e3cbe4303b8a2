package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a conscious-store item. Inventory is a live stock count and is
// only ever mutated through the guarded decrement in the product repository.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand,omitempty"`
	Image       string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Product categories accepted by the catalog filter.
const (
	CategorySkincare  = "skincare"
	CategorySnacks    = "snacks"
	CategoryFashion   = "fashion"
	CategoryHousehold = "household"
	CategoryWellness  = "wellness"
	CategoryFood      = "food"
)

func IsValidCategory(c string) bool {
	switch c {
	case CategorySkincare, CategorySnacks, CategoryFashion, CategoryHousehold, CategoryWellness, CategoryFood:
		return true
	}
	return false
}
