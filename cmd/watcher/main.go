package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/filmquorum/core/internal/app"
	"github.com/filmquorum/core/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.GoWatcher(ctx, config.Load()); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
