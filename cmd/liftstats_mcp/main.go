// Package main runs the liftstats MCP server over stdio (for local Cursor use).
// The same MCP server is also mounted on the main backend at /mcp over HTTP,
// so you can use either: stdio (this cmd) or the backend URL (no extra deploy).
package main

import (
	"context"
	"flag"
	"log"

	"github.com/strengthlab/liftstats/internal/config"
	"github.com/strengthlab/liftstats/internal/db"
	"github.com/strengthlab/liftstats/internal/telemetry/metrics"
	liftstatsmcp "github.com/strengthlab/liftstats/internal/training/mcp"
	"github.com/strengthlab/liftstats/internal/training/plates"
	"github.com/strengthlab/liftstats/internal/training/program"
	"github.com/strengthlab/liftstats/internal/training/sets"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	platePairs, err := cfg.PlateInventory()
	if err != nil {
		log.Fatalf("plate inventory: %v", err)
	}

	setsRepo := sets.NewRepo(dbPool)
	engine := program.NewEngine(program.Increments{
		Upper: cfg.ProgressionUpperIncrement,
		Lower: cfg.ProgressionLowerIncrement,
	}, cfg.RoundingStep)
	// metrics are not scraped here, the manager just satisfies the service deps
	programService := program.NewService(
		program.NewRepo(dbPool),
		engine,
		plates.Inventory{BarWeight: cfg.BarWeight, Pairs: platePairs},
		metrics.NewManager("backend", "mcp", prometheus.NewRegistry()),
	)
	server := liftstatsmcp.NewServer(dbPool, setsRepo, programService)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
