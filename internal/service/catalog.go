package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
)

// CatalogService is the read-only product surface.
type CatalogService interface {
	List(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

func (s *catalogService) List(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error) {
	const op = "service.CatalogService.List"
	products, err := s.productRepo.ListProducts(ctx, filter)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	const op = "service.CatalogService.GetBySlug"
	product, err := s.productRepo.GetProductBySlug(ctx, slug)
	if err != nil {
		s.log.Error("failed to get product", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}
	return product, nil
}
