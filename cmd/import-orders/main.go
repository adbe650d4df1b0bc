package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/eshaffer321/orderrecon/internal/cli"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/logging"
)

func main() {
	flags, err := cli.ParseImportFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import-orders: %v\n", err)
		os.Exit(2)
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewComponentLogger(cfg.Observability.Logging, "import")

	store, err := cli.OpenSQLite(cfg, logger)
	if err != nil {
		logger.Error("failed to open order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	var in io.Reader = os.Stdin
	if flags.Input != "-" {
		f, err := os.Open(flags.Input)
		if err != nil {
			logger.Error("failed to open input", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	n, err := cli.ImportOrders(context.Background(), store, in, logger)
	if err != nil {
		logger.Error("import failed", slog.Int("imported", n), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("import complete", slog.Int("imported", n), slog.String("database", cfg.Storage.DatabasePath))
}
