// Command portal serves the alumni network pages and admin API behind the
// role and permission guards.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"alumni-portal/internal/app"
	"alumni-portal/internal/config"

	"github.com/joho/godotenv"
)

const envFilePath = ".env"

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(envFilePath); err != nil {
		log.Printf("Warning: %s not loaded, reading the process environment only", envFilePath)
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
	log.Println("portal stopped")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, err := app.NewService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("portal listening on :%s", cfg.Server.Port)
		serveErr <- service.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := service.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
