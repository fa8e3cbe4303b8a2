package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/service"
	"github.com/hapibara/hapibara-api/internal/storage"
	"github.com/shopspring/decimal"
)

// ListProductsHandler handles GET /api/products.
func ListProductsHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		q := r.URL.Query()
		page, limit, offset := parsePagination(r, 12, 100)

		filter := storage.ProductFilter{
			Search: q.Get("search"),
			Limit:  limit,
			Offset: offset,
		}

		if category := q.Get("category"); category != "" {
			if !models.IsValidCategory(category) {
				respondError(w, http.StatusBadRequest, "invalid category")
				return
			}
			filter.Category = category
		}
		if raw := q.Get("minPrice"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid minPrice")
				return
			}
			filter.MinPrice = &price
		}
		if raw := q.Get("maxPrice"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid maxPrice")
				return
			}
			filter.MaxPrice = &price
		}
		switch sortBy := q.Get("sortBy"); sortBy {
		case "", "newest", "price_asc", "price_desc":
			filter.SortBy = sortBy
		default:
			respondError(w, http.StatusBadRequest, "invalid sortBy")
			return
		}

		products, err := catalogService.List(r.Context(), filter)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}

		respondData(logger, w, http.StatusOK, map[string]interface{}{
			"products":   products,
			"pagination": pagination{Page: page, Limit: limit, HasMore: len(products) == limit},
		})
	}
}

// GetProductHandler handles GET /api/products/{slug}.
func GetProductHandler(log *slog.Logger, catalogService service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		slug := chi.URLParam(r, "slug")
		if slug == "" {
			respondError(w, http.StatusBadRequest, "slug is required")
			return
		}

		product, err := catalogService.GetBySlug(r.Context(), slug)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, product)
	}
}
