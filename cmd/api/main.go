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

	"github.com/zhouzirui/z-interview/internal/app"
	"github.com/zhouzirui/z-interview/internal/config"
	"github.com/zhouzirui/z-interview/internal/handler"
	"github.com/zhouzirui/z-interview/internal/service/interview"
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

	personaStore, err := app.Personas(cfg.Interview)
	if err != nil {
		log.Fatalf("failed to load personas: %v", err)
	}

	archiveStore, closeArchive, err := app.OpenArchive(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to open archive: %v", err)
	}
	defer func() {
		if err := closeArchive(); err != nil {
			log.Printf("warning: failed to close archive: %v", err)
		}
	}()

	// Interviews need a model; personas and the archive stay available without one.
	var manager *interview.Manager
	if err := cfg.AI.Validate(); err != nil {
		log.Printf("AI 凭证未配置，跳过访谈功能初始化: %v", err)
	} else {
		manager, err = app.NewManager(ctx, cfg, personaStore)
		if err != nil {
			log.Printf("warning: failed to initialize interview service: %v", err)
			manager = nil
		} else {
			log.Printf("AI service initialized provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model)
		}
	}

	router := handler.NewRouter(personaStore, manager, archiveStore)

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

	log.Printf("Z Interview backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
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
