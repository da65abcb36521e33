package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanolf/sonos-manager/internal/config"
	"github.com/ryanolf/sonos-manager/internal/controller"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	facade, err := controller.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("controller init error: %v", err)
	}
	_ = facade // exposed for an HTTP/CLI front end to issue DoZoneAction commands against

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	log.Printf("zonectl controller running (seed room: %q)", cfg.SeedRoomName)
	<-shutdownCh
	log.Printf("shutting down")
	cancel()
}
