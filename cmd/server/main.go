// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Annany2002/sqlprompt/api"
	"github.com/Annany2002/sqlprompt/config"
	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/Annany2002/sqlprompt/internal/nl2sql"
	"github.com/Annany2002/sqlprompt/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting sqlprompt server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize History Database Connection
	historyDB, err := storage.ConnectHistoryDB(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize history database: %v", err)
	}
	defer func() {
		customLog.Println("Closing history database connection...")
		if err := historyDB.Close(); err != nil {
			customLog.Printf("Error closing history database: %v", err)
		}
	}()

	// 3. Language model client
	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		customLog.Fatalf("Failed to configure language model client: %v", err)
	}

	// 4. Setup Router (passing dependencies)
	router := api.SetupRouter(historyDB, cfg, translator)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// A run may wait on both the model and the target database.
		WriteTimeout: cfg.LLMTimeout*2 + cfg.QueryTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Start Server
	go func() {
		customLog.Printf("Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			customLog.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customLog.Println("Shutting down server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		customLog.Errorf("Graceful shutdown failed: %v", err)
		_ = server.Close()
		os.Exit(1)
	}
}
