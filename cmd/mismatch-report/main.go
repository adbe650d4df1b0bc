package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/cli"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/logging"
)

func main() {
	flags, err := cli.ParseReportFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mismatch-report: %v\n", err)
		os.Exit(2)
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays clean for the report.
	logger := logging.NewLoggerTo(os.Stderr, cfg.Observability.Logging).With(logging.ComponentKey, "report-cli")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open order store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	var out io.Writer = os.Stdout
	if flags.Out != "" {
		f, err := os.Create(flags.Out)
		if err != nil {
			logger.Error("failed to create output file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	svc := report.NewService(store, logger)
	if err := cli.RunReport(ctx, svc, flags, cfg.Reports.DefaultHours, out); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
