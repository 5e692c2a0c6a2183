package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/dateplanner/internal/application"
	"github.com/example/dateplanner/internal/config"
	httptransport "github.com/example/dateplanner/internal/http"
	"github.com/example/dateplanner/internal/logging"
	"github.com/example/dateplanner/internal/model"
	"github.com/example/dateplanner/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("planner exited", "error", err)
		os.Exit(1)
	}
}

type options struct {
	seedFile    string
	migrateOnly bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.seedFile, "seed", "", "SQL script executed once after migrations")
	fs.BoolVar(&opts.migrateOnly, "migrate-only", false, "apply migrations and the seed script, then exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.New(stdout, cfg.LogLevel, "planner")

	storage, err := store.Open(ctx, store.Options{
		Path:           cfg.DBFile,
		MaxConnections: cfg.DBMaxConnections,
		BusyTimeout:    cfg.DBTimeout,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if opts.seedFile != "" {
		script, err := os.ReadFile(opts.seedFile)
		if err != nil {
			return fmt.Errorf("read seed script: %w", err)
		}
		if err := storage.Seed(ctx, string(script)); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		logger.Info("seed script applied", "file", opts.seedFile)
	}

	if opts.migrateOnly {
		logger.Info("database ready", "path", storage.Path())
		return nil
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(model.NewManager(storage), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner listening", "addr", server.Addr, "db", storage.Path())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newHandler(mm *model.Manager, logger *slog.Logger) http.Handler {
	planService := application.NewPlanServiceWithLogger(mm, nil, logger)
	userService := application.NewUserServiceWithLogger(mm, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(mm, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Plans:      httptransport.NewPlanHandler(planService, availabilityService, logger),
		Users:      httptransport.NewUserHandler(userService, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
}
