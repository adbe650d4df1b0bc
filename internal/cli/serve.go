package cli

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/orderrecon/internal/api"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/config"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/logging"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Port       int
	Verbose    bool
}

// ParseServeFlags parses command line flags for the serve command.
// A zero Port keeps the configured port.
func ParseServeFlags(args []string, stderr io.Writer) (*ServeFlags, error) {
	flags := &ServeFlags{}
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "Configuration file path")
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// LoadConfig loads path, falling back to the environment, and validates
// the result.
func LoadConfig(path string, verbose bool) (*config.Config, error) {
	cfg := config.LoadOrEnvWithPath(path)
	if verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// APIConfig maps application config onto the server config.
func APIConfig(cfg *config.Config) api.Config {
	return api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		StaticDir:      cfg.Server.StaticDir,
		JWTSecret:      cfg.Auth.JWTSecret,
		ExposeErrors:   cfg.IsDevelopment(),
		DefaultHours:   cfg.Reports.DefaultHours,
	}
}

// RunServe runs the API server until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	if flags.Port != 0 {
		cfg.Server.Port = flags.Port
	}
	logger := logging.NewComponentLogger(cfg.Observability.Logging, "api")

	store, err := OpenStore(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := api.NewServer(APIConfig(cfg), store, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
