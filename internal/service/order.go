package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
	"github.com/shopspring/decimal"
)

// OrderService converts a cart into a persisted order.
type OrderService interface {
	Place(ctx context.Context, userID int64, address models.ShippingAddress) (*models.Order, error)
	List(ctx context.Context, userID int64, status string, limit, offset int) ([]*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
	shippingFee decimal.Decimal
	taxRate     decimal.Decimal
}

func NewOrderService(log *slog.Logger, db *sql.DB, cartRepo storage.CartStorage,
	productRepo storage.ProductStorage, orderRepo storage.OrderStorage,
	shippingFee, taxRate decimal.Decimal) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		shippingFee: shippingFee,
		taxRate:     taxRate,
	}
}

func (s *orderService) rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}

// Place runs the whole order placement as one transaction: load the cart with
// live product data, validate every line, compute decimal totals, persist the
// order header and line items, decrement inventory with a guarded conditional
// update per product, clear the cart. Any failure rolls everything back; the
// cart and the inventory are left exactly as they were.
func (s *orderService) Place(ctx context.Context, userID int64, address models.ShippingAddress) (*models.Order, error) {
	const op = "service.OrderService.Place"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("starting order placement transaction")

	if address == (models.ShippingAddress{}) {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingShippingAddress)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	lines, err := s.cartRepo.GetCartLinesTx(ctx, tx, userID)
	if err != nil {
		s.rollback(logger, tx)
		logger.Error("failed to load cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load cart: %w", op, err)
	}
	if len(lines) == 0 {
		s.rollback(logger, tx)
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}

	// Validate every line against live inventory before writing anything.
	for _, line := range lines {
		if line.ProductInventory < line.Quantity {
			s.rollback(logger, tx)
			logger.Warn("insufficient inventory",
				slog.String("product", line.ProductName),
				slog.Int("inventory", line.ProductInventory),
				slog.Int("requested", line.Quantity))
			return nil, fmt.Errorf("%s: %w", op, &InsufficientInventoryError{ProductName: line.ProductName})
		}
	}

	// Totals use the snapshot price of each line, never the current product
	// price. Tax and total are rounded to two places at persistence.
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(s.taxRate).Round(2)
	total := subtotal.Add(s.shippingFee).Add(tax).Round(2)

	order := &models.Order{
		UserID:          userID,
		OrderNumber:     "HB-" + uuid.NewString(),
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		Subtotal:        subtotal,
		Shipping:        s.shippingFee,
		Tax:             tax,
		Total:           total,
		ShippingAddress: address,
	}

	orderID, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		s.rollback(logger, tx)
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	for _, line := range lines {
		item := &models.OrderItem{
			OrderID:     orderID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.Price,
		}
		if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
			s.rollback(logger, tx)
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create order item: %w", op, err)
		}
		order.Items = append(order.Items, item)
	}

	// Guarded compare-and-decrement per product. Concurrent orders against
	// the same product serialize here; losing the race aborts the whole
	// placement.
	for _, line := range lines {
		if err := s.productRepo.DecrementInventory(ctx, tx, line.ProductID, line.Quantity); err != nil {
			s.rollback(logger, tx)
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("lost inventory race", slog.String("product", line.ProductName))
				return nil, fmt.Errorf("%s: %w", op, &InsufficientInventoryError{ProductName: line.ProductName})
			}
			logger.Error("failed to decrement inventory", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrement inventory: %w", op, err)
		}
	}

	if err := s.cartRepo.ClearCartTx(ctx, tx, userID); err != nil {
		s.rollback(logger, tx)
		logger.Error("failed to clear cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed successfully",
		slog.String("orderNumber", order.OrderNumber),
		slog.String("total", order.Total.String()))
	return order, nil
}

// List returns the user's order history, newest first, with line items.
func (s *orderService) List(ctx context.Context, userID int64, status string, limit, offset int) ([]*models.Order, error) {
	const op = "service.OrderService.List"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID, status, limit, offset)
	if err != nil {
		logger.Error("failed to get orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get orders: %w", op, err)
	}
	for _, order := range orders {
		items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
		if err != nil {
			logger.Error("failed to get order items", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get order items: %w", op, err)
		}
		order.Items = items
	}
	return orders, nil
}
