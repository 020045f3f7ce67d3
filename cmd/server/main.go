package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/httpapi"
	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/llm/openai"
	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/repository/postgres"
	"github.com/pocketpilot/pocketpilot-backend/internal/adapter/snapshot"
	"github.com/pocketpilot/pocketpilot-backend/internal/domain"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/assistant"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/ledger"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/receipt"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/report"
	"github.com/pocketpilot/pocketpilot-backend/internal/usecase/seeder"
)

const (
	defaultHTTPAddr = ":8080"

	// hydrateLimit bounds how many transactions are loaded into the
	// snapshot at startup
	hydrateLimit = 1000
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := getenv("DB_HOST", "localhost")
		port := getenv("DB_PORT", "5432")
		user := getenv("DB_USER", "postgres")
		password := getenv("DB_PASSWORD", "postgres")
		dbname := getenv("DB_NAME", "pocketpilot")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	transactionRepo := postgres.NewTransactionRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	budgetRepo := postgres.NewBudgetSettingsRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	ctx := context.Background()

	// Seed the default category set on first run
	categorySeeder := seeder.NewCategorySeeder(categoryRepo)
	if err := categorySeeder.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	log.Println("Default categories seeded")

	// 3. Hydrate the in-memory snapshot from the remote store
	store := snapshot.NewStore()
	if err := hydrate(ctx, store, transactionRepo, taskRepo, budgetRepo, categoryRepo); err != nil {
		log.Fatalf("Failed to hydrate snapshot: %v", err)
	}

	// 4. Initialize Services (Use Cases)
	ledgerService := ledger.NewService(store, transactionRepo, taskRepo, budgetRepo, categoryRepo)
	ledgerService.SetWriteFailureHook(func(operation string, err error) {
		log.Printf("write-behind failure observed: op=%s err=%v", operation, err)
	})
	reportService := report.NewService(store)

	// The assistant and receipt scanner need a model API key; without one
	// the endpoints report themselves unavailable.
	var chats *httpapi.ChatManager
	var receiptService *receipt.Service
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		llmClient, err := openai.NewClient(openai.Config{
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			APIKey:  apiKey,
			Model:   os.Getenv("OPENAI_MODEL"),
		})
		if err != nil {
			log.Fatalf("Failed to configure model client: %v", err)
		}

		executor := assistant.NewExecutor(ledgerService)
		chats = httpapi.NewChatManager(llmClient, executor, store)
		receiptService = receipt.NewService(openai.NewVisionAnalyzer(llmClient, os.Getenv("OPENAI_VISION_MODEL")))
	} else {
		log.Println("OPENAI_API_KEY not set, assistant and receipt endpoints disabled")
	}

	// 5. Start HTTP Server
	apiToken := os.Getenv("API_TOKEN")
	if apiToken == "" {
		log.Println("API_TOKEN not set, running without authentication")
	}

	server := httpapi.NewServer(ledgerService, reportService, receiptService, chats, apiToken)

	addr := getenv("HTTP_ADDR", defaultHTTPAddr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Chat turns can take several model round-trips
	}

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(httpServer)
}

// hydrate loads the full record set into the snapshot store
func hydrate(
	ctx context.Context,
	store *snapshot.Store,
	transactionRepo domain.TransactionRepository,
	taskRepo domain.TaskRepository,
	budgetRepo domain.BudgetSettingsRepository,
	categoryRepo domain.CategoryRepository,
) error {
	transactions, err := transactionRepo.List(ctx, hydrateLimit, 0)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	tasks, err := taskRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	settings, err := budgetRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load budget settings: %w", err)
	}

	categories, err := categoryRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	store.Hydrate(transactions, tasks, settings, categories)
	log.Printf("Snapshot hydrated: %d transactions, %d tasks, %d categories",
		len(transactions), len(tasks), len(categories))
	return nil
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(httpServer *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
