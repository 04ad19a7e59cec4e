// Command formserver serves a demo signup form over HTTP using goform.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	j "github.com/goccy/go-json"

	"github.com/reoring/goform/i18n"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := LoadConfig(".env")
	if err != nil {
		return err
	}
	log, err := NewLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	i18n.SetLanguage(cfg.Language)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, log),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("formserver: listening", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("formserver: serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("formserver: shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return errors.Join(srv.Shutdown(sctx), shutdownTracing(sctx))
}

func jsonEncode(w io.Writer, v any) error { return j.NewEncoder(w).Encode(v) }
