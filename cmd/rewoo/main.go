package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/karanj/rewoo/internal/agent"
	"github.com/karanj/rewoo/internal/executor"
	"github.com/karanj/rewoo/internal/gateway"
	"github.com/karanj/rewoo/internal/governance"
	"github.com/karanj/rewoo/internal/llm"
	"github.com/karanj/rewoo/internal/observability"
	"github.com/karanj/rewoo/internal/planner"
	"github.com/karanj/rewoo/internal/prompts"
	"github.com/karanj/rewoo/internal/store"
	"github.com/karanj/rewoo/internal/tools"
	"github.com/karanj/rewoo/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal(err)
		}
		log.Printf("Config file %s not found, using defaults", *configPath)
		cfg = config.Default()
	}

	logger := observability.NewLogger()

	// Initialize Tools
	registry := tools.NewRegistry()

	if cfg.ToolEnabled("search") {
		searchTool, err := tools.NewSearchTool()
		if err != nil {
			log.Printf("Warning: Failed to initialize search tool: %v", err)
		} else {
			registry.Register(searchTool)
		}
	}
	if cfg.ToolEnabled("wikipedia") {
		registry.Register(tools.NewWikipediaTool())
	}
	if cfg.ToolEnabled("calculator") {
		registry.Register(tools.NewCalculatorTool())
	}

	gov := governance.NewDefaultPolicyEngine()
	for _, name := range cfg.Governance.DeniedTools {
		gov.DenyTool(name)
	}
	for _, pattern := range cfg.Governance.DeniedPatterns {
		if err := gov.DenyInput(pattern); err != nil {
			log.Fatalf("Invalid denied pattern %q: %v", pattern, err)
		}
	}

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}
	completer, err := llm.New(pCfg.APIKey, pCfg.Model, pCfg.BaseURL)
	if err != nil {
		log.Fatal(err)
	}

	taskStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer taskStore.Close()

	pm := prompts.NewManager(cfg.App.PromptDir)
	pl := planner.New(completer, registry, pm, logger)
	ex := executor.New(registry, completer, pm, logger, cfg.Engine.MaxIterations).WithPolicy(gov)

	ttl := time.Duration(cfg.Store.TTLSeconds) * time.Second
	orchestrator := agent.NewOrchestrator(pl, ex, taskStore, logger, ttl)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	gw := gateway.NewHTTPGateway(orchestrator, registry, logger, addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sweep expired task snapshots in the background
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := taskStore.PurgeExpired(); err != nil {
					log.Printf("Warning: snapshot purge failed: %v", err)
				} else if n > 0 {
					log.Printf("Purged %d expired task snapshots", n)
				}
			}
		}
	}()

	go func() {
		log.Printf("Agent listening on %s", addr)
		if err := gw.Start(); err != nil {
			log.Printf("Gateway error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gw.Stop(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Agent stopped")
}
