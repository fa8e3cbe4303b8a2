package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned by DecrementInventory when the guarded
	// update matches no row, i.e. the remaining stock is below the requested
	// quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows the catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Category string
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string // newest | price_asc | price_desc
	Limit    int
	Offset   int
}

// ProductStorage describes reads of the catalog plus the one permitted
// mutation of inventory.
type ProductStorage interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error)
	// DecrementInventory atomically subtracts quantity from the product's
	// inventory, refusing to go below zero. Must run inside the order
	// placement transaction.
	DecrementInventory(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, name, slug, description, category, brand, image, price, inventory, created_at"

func scanProduct(row *sql.Row) (*models.Product, error) {
	p := &models.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Brand,
		&p.Image, &p.Price, &p.Inventory, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanProduct(row)
}

func (r *productRepository) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE slug = $1", slug)
	return scanProduct(row)
}

func (r *productRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]*models.Product, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Search != "" {
		conds = append(conds, "name ILIKE "+arg("%"+filter.Search+"%"))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*filter.MaxPrice))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch filter.SortBy {
	case "price_asc":
		query += " ORDER BY price ASC"
	case "price_desc":
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY created_at DESC"
	}
	query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Brand,
			&p.Image, &p.Price, &p.Inventory, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementInventory is the single compare-and-decrement used by order
// placement. A blind "SET inventory = computed" write is never issued.
func (r *productRepository) DecrementInventory(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET inventory = inventory - $2 WHERE id = $1 AND inventory >= $2",
		productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement inventory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
