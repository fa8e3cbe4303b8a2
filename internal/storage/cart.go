package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hapibara/hapibara-api/internal/domain/models"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStorage describes the per-user cart lines. Reads joining live product
// data come in two flavors: plain for the summary endpoint and transactional
// for order placement, which must see inventory inside its own transaction.
type CartStorage interface {
	GetCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error)
	GetCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error)
	GetItemByUserAndProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	GetItemByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error
	DeleteItem(ctx context.Context, userID, cartItemID int64) error
	ClearCart(ctx context.Context, userID int64) error
	ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

const cartLineQuery = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.price, ci.created_at,
	       p.name, p.slug, p.image, p.price, p.inventory
	FROM cart_items ci
	JOIN products p ON ci.product_id = p.id
	WHERE ci.user_id = $1
	ORDER BY ci.created_at`

func scanCartLines(rows *sql.Rows) ([]*models.CartLine, error) {
	var lines []*models.CartLine
	for rows.Next() {
		line := &models.CartLine{}
		if err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.Price, &line.CreatedAt,
			&line.ProductName, &line.ProductSlug, &line.ProductImage, &line.ProductPrice, &line.ProductInventory); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) GetCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, cartLineQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()
	return scanCartLines(rows)
}

func (r *cartRepository) GetCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	rows, err := tx.QueryContext(ctx, cartLineQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()
	return scanCartLines(rows)
}

func (r *cartRepository) GetItemByUserAndProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity, price, created_at FROM cart_items WHERE user_id = $1 AND product_id = $2",
		userID, productID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) GetItemByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, product_id, quantity, price, created_at FROM cart_items WHERE id = $1 AND user_id = $2",
		cartItemID, userID)
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *cartRepository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, price, created_at)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`,
		item.UserID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2",
		cartItemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, userID, cartItemID int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id = $1 AND user_id = $2", cartItemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ClearCart deletes every line for the user. Clearing an already empty cart
// is not an error.
func (r *cartRepository) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *cartRepository) ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
