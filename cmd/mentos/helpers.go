package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/sammoorhouse/mentos/internal/config"
	"github.com/sammoorhouse/mentos/internal/service"
	"github.com/sammoorhouse/mentos/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/mentos/mentos.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// cardsDir returns the configured insight card directory.
func cardsDir() string {
	dir := viper.GetString("insights.cards_dir")
	if dir == "" {
		dir = "cards"
	}
	return config.ExpandPath(dir)
}
