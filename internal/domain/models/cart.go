package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one (user, product) line. Price is the unit price captured when
// the line was created and does not follow later product price changes.
type CartItem struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartLine is a cart item joined with live product data, used by the cart
// summary and by order placement (inventory is the current stock count,
// Price stays the snapshot).
type CartLine struct {
	CartItem
	ProductName      string          `json:"product_name"`
	ProductSlug      string          `json:"product_slug"`
	ProductImage     string          `json:"product_image,omitempty"`
	ProductPrice     decimal.Decimal `json:"product_price"`
	ProductInventory int             `json:"product_inventory"`
}
