package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hapibara/hapibara-api/internal/app"
	"github.com/hapibara/hapibara-api/internal/app/handlers"
	"github.com/hapibara/hapibara-api/internal/config"
	"github.com/hapibara/hapibara-api/internal/lib/logger"
	"github.com/hapibara/hapibara-api/internal/lib/logger/handlers/urllog"
	"github.com/hapibara/hapibara-api/internal/security/jwtmiddleware"
	"github.com/hapibara/hapibara-api/internal/service"
	"github.com/hapibara/hapibara-api/internal/storage"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	shippingFee, err := decimal.NewFromString(cfg.Order.ShippingFee)
	if err != nil {
		panic(errors.Wrap(err, "invalid shipping_fee in config"))
	}
	taxRate, err := decimal.NewFromString(cfg.Order.TaxRate)
	if err != nil {
		panic(errors.Wrap(err, "invalid tax_rate in config"))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	kindnessRepo := storage.NewKindnessRepository(application.DB)
	eventRepo := storage.NewEventRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, cartRepo, productRepo, orderRepo, shippingFee, taxRate)
	impactService := service.NewImpactService(application.Logger, application.DB, kindnessRepo, userRepo)
	eventService := service.NewEventService(application.Logger, application.DB, eventRepo, kindnessRepo)

	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{slug}", handlers.GetProductHandler(application.Logger, catalogService))
	router.Get("/api/events", handlers.ListEventsHandler(application.Logger, eventService))
	router.Get("/api/events/{id}", handlers.GetEventHandler(application.Logger, eventService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/api/cart", handlers.AddToCartHandler(application.Logger, cartService))
		r.Put("/api/cart", handlers.UpdateCartHandler(application.Logger, cartService))
		r.Delete("/api/cart", handlers.ClearCartHandler(application.Logger, cartService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Post("/api/impact", handlers.LogActivityHandler(application.Logger, impactService))
		r.Get("/api/impact", handlers.GetImpactHandler(application.Logger, impactService))
		r.Post("/api/events/{id}/attend", handlers.AttendEventHandler(application.Logger, eventService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
