package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hapibara/hapibara-api/internal/domain/models"
)

// OrderStorage describes persistence of orders and their line items. Creation
// always happens inside the order placement transaction.
type OrderStorage interface {
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	GetOrdersByUserID(ctx context.Context, userID int64, status string, limit, offset int) ([]*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, order_number, status, payment_status, subtotal, shipping, tax, total, shipping_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING id`,
		order.UserID, order.OrderNumber, order.Status, order.PaymentStatus,
		order.Subtotal, order.Shipping, order.Tax, order.Total, address,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = id
	return id, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64, status string, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, order_number, status, payment_status, subtotal, shipping, tax, total, shipping_address, created_at
		FROM orders
		WHERE user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var address []byte
		if err := rows.Scan(&order.ID, &order.UserID, &order.OrderNumber, &order.Status, &order.PaymentStatus,
			&order.Subtotal, &order.Shipping, &order.Tax, &order.Total, &address, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if len(address) > 0 {
			if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
				return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
			}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, product_id, product_name, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id",
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
