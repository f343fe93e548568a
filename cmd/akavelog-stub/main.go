package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akave-ai/akavelog-dash/internal/config"
	"github.com/akave-ai/akavelog-dash/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg)
	if err := srv.Start(ctx); err != nil {
		log.Printf("server exited: %v", err)
		os.Exit(1)
	}
}
