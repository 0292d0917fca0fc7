package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quatton/jobsched/pkg/db"
	"github.com/quatton/jobsched/pkg/kv"
	"github.com/quatton/jobsched/pkg/qapi"
	"github.com/quatton/jobsched/pkg/qapi/config"
	"github.com/quatton/jobsched/pkg/qapi/routes"
	"github.com/quatton/jobsched/pkg/qapi/services"
	"github.com/quatton/jobsched/pkg/qauth"
	"github.com/quatton/jobsched/pkg/qlog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP gateway",
	RunE:    serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.ValidateEnv()
	if err != nil {
		return err
	}
	cfg.Print(log.Printf)

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openAccountStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	cache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	verifier := qauth.NewVerifier(store, cache, cfg.AuthCacheTTL, logger.Logger)
	svcs := services.NewServices(cfg, verifier, logger.Logger)

	api := qapi.NewApi(qapi.Options{Prefix: cfg.Prefix(), ServerURL: cfg.BaseURL})
	routes.RegisterAPI(api.Api, svcs, logger.Logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway starting", "addr", srv.Addr, "root", cfg.ApplicationRoot)
		logger.Info("OpenAPI docs", "url", cfg.BaseURL+cfg.Prefix()+"/docs")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(cfg *config.EnvConfig) (*qlog.Logger, error) {
	level, err := qlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := qlog.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return qlog.New(level, format, os.Stderr), nil
}

// openAccountStore returns the configured credential store and a func that
// releases it.
func openAccountStore(ctx context.Context, cfg *config.EnvConfig) (qauth.Store, func(), error) {
	switch cfg.AuthBackend {
	case config.AuthBackendDB:
		database, err := db.New(ctx, dbConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return qauth.NewDBStore(database), func() { database.Close() }, nil
	default:
		store, err := qauth.ParseStaticStore(cfg.AuthUsers)
		if err != nil {
			return nil, nil, fmt.Errorf("AUTH_USERS: %w", err)
		}
		return store, func() {}, nil
	}
}

// openCache returns nil when caching is disabled.
func openCache(ctx context.Context, cfg *config.EnvConfig) (kv.Store, error) {
	switch {
	case cfg.AuthCacheTTL <= 0:
		return nil, nil
	case cfg.ValkeyAddr != "":
		store, err := kv.NewValkeyStore(ctx, kv.ValkeyConfig{
			Addr:     cfg.ValkeyAddr,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
			Prefix:   "jobsched:",
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

func dbConfig(cfg *config.EnvConfig) db.Config {
	return db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}
