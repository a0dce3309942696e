package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/mdblocks/internal/api"
	"github.com/dgallion1/mdblocks/internal/config"
	"github.com/dgallion1/mdblocks/internal/pipeline"
	"github.com/dgallion1/mdblocks/internal/render"
	"github.com/dgallion1/mdblocks/internal/source"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	langs := render.DefaultLanguageList()
	if cfg.CodeLanguagesFile != "" {
		var err error
		langs, err = render.LoadLanguages(cfg.CodeLanguagesFile)
		if err != nil {
			log.Error("load code languages", "path", cfg.CodeLanguagesFile, "error", err)
			os.Exit(1)
		}
		log.Info("loaded code languages", "path", cfg.CodeLanguagesFile, "count", len(langs.Labels()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	renderer := render.New(langs, log)
	conv := pipeline.NewConverter(renderer, source.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext})
	orch := pipeline.NewOrchestrator(cfg, conv, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		log.Error("listen failed", "addr", httpServer.Addr, "error", err)
		os.Exit(1)
	}
	if err := run(sigCtx, httpServer, ln, orch, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// stopper is the part of the orchestrator that shutdown needs.
type stopper interface {
	Stop()
}

// run serves until ctx is done, then drains in-flight requests and stops the
// pipeline. It returns only after both have finished. The server goes first
// so no handler can submit to a stopped queue.
func run(ctx context.Context, httpServer *http.Server, ln net.Listener, p stopper, log *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting mdblocks", "addr", ln.Addr().String())
		serveErr <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		p.Stop()
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownErr := httpServer.Shutdown(shutdownCtx)
	p.Stop()

	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}
