package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/procure-chat/backend/internal/config"
	"github.com/zhouzirui/procure-chat/backend/internal/devserver/handler"
	"github.com/zhouzirui/procure-chat/backend/internal/devserver/notetaker"
	"github.com/zhouzirui/procure-chat/backend/internal/devserver/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessions := store.New()

	notes, err := notetaker.New(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize Ark-backed note taker: %v", err)
		log.Println("continuing with deterministic prompting only")
		notes, _ = notetaker.New(ctx, config.AIConfig{})
	}
	if notes.Enabled() {
		log.Println("note taker using Ark model for field extraction")
	} else {
		log.Println("Ark credentials not configured, note taker running in prompt-only mode")
	}

	router := handler.NewRouter(sessions, notes)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("procure-chat devserver listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
