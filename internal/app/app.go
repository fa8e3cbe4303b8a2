package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/hapibara/hapibara-api/internal/config"
	_ "github.com/lib/pq"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
}

// NewApp opens the database connection and assembles the app container.
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is not set")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		dbPassword,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	return app, nil
}
