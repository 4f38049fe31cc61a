package main

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/pocketbank/backend/internal/alerts"
	"github.com/pocketbank/backend/internal/config"
	"github.com/pocketbank/backend/internal/database"
	"github.com/pocketbank/backend/internal/ledger"
	mW "github.com/pocketbank/backend/internal/middleware"
	"github.com/pocketbank/backend/internal/services"
)

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	cfg := config.LoadLedgerConfig()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Core: accounts, transaction log, alert mailbox, ledger engine.
	store := ledger.NewAccountStore()
	txlog := ledger.NewTransactionLog()

	var channels alerts.ChannelStore = alerts.NewMemoryChannelStore()
	if redisClient != nil {
		channels = alerts.NewRedisChannelStore(redisClient)
	}
	queue := alerts.NewQueue(channels, uuid.NewString)

	engine := ledger.NewEngine(store, txlog, queue, ledger.EngineConfig{
		AllowOverdraft: cfg.AllowOverdraft,
		OverdraftLimit: cfg.OverdraftLimit,
	})

	// Bootstrap the treasury account that funds deposits.
	if _, err := store.Open(cfg.FundingAccountID, cfg.FundingUserID, "Treasury", "USD"); err != nil {
		log.Fatalf("Failed to open funding account: %v", err)
	}
	if _, err := store.AdjustBalance(cfg.FundingAccountID, cfg.FundingFloat, math.MinInt64); err != nil {
		log.Fatalf("Failed to seed funding account: %v", err)
	}

	accountService := services.NewAccountService(store)
	transferService := services.NewTransferService(engine, txlog, redisClient, cfg)
	alertService := services.NewAlertService(queue)
	paymentRequestService := services.NewPaymentRequestService(store, redisClient, cfg)
	settlementService := services.NewSettlementService(txlog)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", accountService.OpenAccount)
		r.Get("/accounts", accountService.ListAccounts)
		r.Get("/accounts/balance-enquiry", accountService.BalanceEnquiry)
		r.Get("/accounts/{accountId}", accountService.GetAccount)
		r.Put("/accounts/{accountId}/close", accountService.CloseAccount)

		r.Post("/transfers", transferService.CreateTransfer)
		r.Post("/deposits", transferService.Deposit)
		r.Post("/cards/authorize", transferService.AuthorizeCard)
		r.Get("/transactions", transferService.ListTransactions)
		r.Get("/transactions/{txId}", transferService.GetTransaction)

		r.Post("/alerts/poll", alertService.PollAlerts)
		r.Post("/alerts/subscribe", alertService.Subscribe)
		r.Get("/alerts/channels", alertService.ListChannels)

		r.Post("/payment-requests", paymentRequestService.CreatePaymentRequest)
		r.Post("/payment-requests/resolve", paymentRequestService.ResolvePaymentRequest)

		r.Post("/settlement/convert", settlementService.ConvertTransaction)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
