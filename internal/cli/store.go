package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/orderrecon/internal/infrastructure/config"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
	"github.com/eshaffer321/orderrecon/internal/observability/metrics"
)

// OpenStore opens the order store selected by cfg.Storage.Driver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.OrderStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger)
		if err != nil {
			return nil, err
		}
		metrics.RegisterOrderCount(store.CountOrders, logger)
		return store, nil
	case config.DriverMongo:
		return storage.NewMongoStore(ctx, storage.MongoConfig{
			URI:        cfg.Storage.MongoURI,
			Database:   cfg.Storage.MongoDatabase,
			Collection: cfg.Storage.MongoCollection,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// OpenSQLite opens the local SQLite store, the only writable driver.
func OpenSQLite(cfg *config.Config, logger *slog.Logger) (*storage.Storage, error) {
	if cfg.Storage.Driver != config.DriverSQLite {
		return nil, fmt.Errorf("import needs the sqlite driver, configured %q", cfg.Storage.Driver)
	}
	return storage.NewStorageWithLogger(cfg.Storage.DatabasePath, logger)
}
