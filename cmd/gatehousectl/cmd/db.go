package cmd

import (
	"fmt"
	"log/slog"

	"github.com/gatehouse-dev/gatehouse/internal/config"
	"github.com/gatehouse-dev/gatehouse/internal/db"
	"github.com/gatehouse-dev/gatehouse/internal/logger"
	"github.com/gatehouse-dev/gatehouse/internal/rbac"
	"gorm.io/gorm"
)

// openDatabase loads configuration, connects to the database, and runs
// migrations so admin commands can operate on a fresh deployment.
func openDatabase() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Log.Format, cfg.Log.Level)

	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC: %w", err)
	}

	return database, nil
}
