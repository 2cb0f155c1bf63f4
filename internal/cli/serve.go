package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	serverhttp "github.com/molonc/treealign/internal/adapters/http"
	redisstore "github.com/molonc/treealign/internal/adapters/redis"
	"github.com/molonc/treealign/internal/config"
	"github.com/molonc/treealign/pkg/adapters/memory"
	"github.com/molonc/treealign/pkg/ports"
)

// ServeOptions holds the flags of the serve command.
type ServeOptions struct {
	ConfigPath string
	Port       string
}

// Serve starts the results server and blocks until an interrupt or a
// listener error.
func Serve(opts ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel)

	store, cleanup := openStore(cfg, logger)
	defer cleanup()

	srv := &http.Server{
		Addr:    ":" + opts.Port,
		Handler: serverhttp.NewHandler(store, logger),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("results server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		logger.Info("server stopped")
		return nil
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (ports.ResultStore, func()) {
	if cfg.Redis.Addr == "" {
		logger.Warn("no redis address configured, serving an empty in-memory store")
		return memory.NewStore(), func() {}
	}
	store := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	return store, func() { store.Close() }
}
