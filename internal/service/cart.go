package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
	"github.com/shopspring/decimal"
)

// CartService manages a user's cart lines. The contract is price-protected,
// inventory-live: a line keeps the unit price captured when it was added,
// while every quantity change is validated against the product's current
// stock.
type CartService interface {
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error
	Clear(ctx context.Context, userID int64) error
	Summary(ctx context.Context, userID int64) (*CartSummary, error)
}

// CartSummary is the cart plus its computed totals. Subtotal is the decimal
// sum of snapshot price times quantity per line.
type CartSummary struct {
	Items      []*models.CartLine `json:"items"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	TotalItems int                `json:"totalItems"`
	ItemCount  int                `json:"itemCount"`
}

type cartService struct {
	log         *slog.Logger
	cartRepo    storage.CartStorage
	productRepo storage.ProductStorage
}

func NewCartService(log *slog.Logger, cartRepo storage.CartStorage, productRepo storage.ProductStorage) CartService {
	return &cartService{
		log:         log,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem creates a new line at the product's current price, or raises an
// existing line's quantity while keeping its snapshot price. The combined
// quantity must fit in the product's current inventory.
func (s *cartService) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.CartItem, error) {
	const op = "service.CartService.AddItem"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("productID", productID))

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	existing, err := s.cartRepo.GetItemByUserAndProduct(ctx, userID, productID)
	if err != nil && !errors.Is(err, storage.ErrCartItemNotFound) {
		logger.Error("failed to get cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart item: %w", op, err)
	}

	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if product.Inventory < newQuantity {
			logger.Warn("insufficient inventory", slog.Int("inventory", product.Inventory), slog.Int("requested", newQuantity))
			return nil, fmt.Errorf("%s: %w", op, &InsufficientInventoryError{ProductName: product.Name})
		}
		if err := s.cartRepo.UpdateItemQuantity(ctx, userID, existing.ID, newQuantity); err != nil {
			logger.Error("failed to update cart item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update cart item: %w", op, err)
		}
		existing.Quantity = newQuantity
		logger.Info("cart line quantity raised", slog.Int("quantity", newQuantity))
		return existing, nil
	}

	if product.Inventory < quantity {
		logger.Warn("insufficient inventory", slog.Int("inventory", product.Inventory), slog.Int("requested", quantity))
		return nil, fmt.Errorf("%s: %w", op, &InsufficientInventoryError{ProductName: product.Name})
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.Price, // snapshot of the current price
	}
	created, err := s.cartRepo.CreateItem(ctx, item)
	if err != nil {
		logger.Error("failed to create cart item", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create cart item: %w", op, err)
	}
	logger.Info("cart line created", slog.Int64("cartItemID", created.ID))
	return created, nil
}

// UpdateQuantity sets a line's quantity; zero removes the line. Raising the
// quantity re-checks current inventory.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error {
	const op = "service.CartService.UpdateQuantity"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.Int64("cartItemID", cartItemID))

	if quantity < 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	if quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, userID, cartItemID); err != nil {
			logger.Error("failed to delete cart item", slog.Any("error", err))
			return fmt.Errorf("%s: failed to delete cart item: %w", op, err)
		}
		logger.Info("cart line removed")
		return nil
	}

	item, err := s.cartRepo.GetItemByID(ctx, userID, cartItemID)
	if err != nil {
		logger.Error("failed to get cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get cart item: %w", op, err)
	}

	product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
	if err != nil {
		logger.Error("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	if product.Inventory < quantity {
		logger.Warn("insufficient inventory", slog.Int("inventory", product.Inventory), slog.Int("requested", quantity))
		return fmt.Errorf("%s: %w", op, &InsufficientInventoryError{ProductName: product.Name})
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, userID, cartItemID, quantity); err != nil {
		logger.Error("failed to update cart item", slog.Any("error", err))
		return fmt.Errorf("%s: failed to update cart item: %w", op, err)
	}
	logger.Info("cart line updated", slog.Int("quantity", quantity))
	return nil
}

// Clear removes every line for the user. Clearing an empty cart succeeds.
func (s *cartService) Clear(ctx context.Context, userID int64) error {
	const op = "service.CartService.Clear"
	if err := s.cartRepo.ClearCart(ctx, userID); err != nil {
		s.log.Error("failed to clear cart", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}
	return nil
}

func (s *cartService) Summary(ctx context.Context, userID int64) (*CartSummary, error) {
	const op = "service.CartService.Summary"

	lines, err := s.cartRepo.GetCartLines(ctx, userID)
	if err != nil {
		s.log.Error("failed to get cart lines", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart lines: %w", op, err)
	}

	summary := &CartSummary{
		Items:     lines,
		Subtotal:  decimal.Zero,
		ItemCount: len(lines),
	}
	for _, line := range lines {
		summary.Subtotal = summary.Subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		summary.TotalItems += line.Quantity
	}
	return summary, nil
}
