// Package main provides the MCP server entry point for the video chatbot.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/ytchat/internal/chatbot"
	"github.com/bull/ytchat/internal/config"
	mcpserver "github.com/bull/ytchat/internal/mcp"
	"github.com/bull/ytchat/internal/web"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.HasAPIKey() {
		log.Println("OPENAI_API_KEY not set, model calls will fail")
	}
	logger := cfg.NewLogger()

	rt, err := chatbot.NewRuntime(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize chatbot: %v", err)
	}
	defer rt.Close()

	manager := chatbot.NewManager(rt.Deps)
	defer manager.Close()

	server := mcpserver.NewServer(&mcpserver.Config{
		Chatbot: manager,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", web.NewHealthHandler(rt, rt.Backend(), manager))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := os.Getenv("SERVER_MODE") == "true"
	addr := "0.0.0.0:" + cfg.Port

	if serverMode {
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			srv.Shutdown(context.Background())
		}()
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
		return
	}

	// Stdio mode: the health endpoint still runs in the background for local testing
	go func() {
		log.Printf("Starting health server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	log.Println("Starting ytchat MCP server (stdio mode)...")
	if err := server.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}
