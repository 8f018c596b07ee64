package main

import (
	"log"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/bootstrap"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/config"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/server"
	"github.com/WilsonLimSet/CoffeeChatAI/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer app.Close()
	defer telemetry.Sync()

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
