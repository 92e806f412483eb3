package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/gazetteer"
	"github.com/recall-postcards/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("=== Recall Preview Server ===")
	fmt.Printf("Server: http://%s:%d\n", cfg.HTTPHost, cfg.HTTPPort)
	fmt.Printf("Gazetteer: %s\n", cfg.GazetteerSource)

	ctx := context.Background()
	g, err := gazetteer.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load gazetteer: %v", err)
	}

	server := web.NewServer(web.ConfigFrom(cfg), address.NewResolver(g), g.Stats, prometheus.NewRegistry())

	fmt.Println("\nEndpoints:")
	fmt.Println("  • GET /api/window?offset=&date=")
	fmt.Println("  • GET /api/resolve?address=")
	fmt.Println("  • GET /api/postal-code?code=")
	fmt.Println("  • GET /healthz, /metrics")
	fmt.Println()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
