package main

import (
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/config"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/ownership"
	redisclient "github.com/mahsa-meymari/FinancialTracker/internal/shared/redis"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/token"
	"github.com/mahsa-meymari/FinancialTracker/internal/transaction/handler"
	"github.com/mahsa-meymari/FinancialTracker/internal/transaction/repository"
	"github.com/mahsa-meymari/FinancialTracker/internal/transaction/service"
)

func main() {
	cfg, err := config.LoadTransaction()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Verify-only: this service never issues tokens, so the lifetime is unused.
	tokens, err := token.NewManager(cfg.JWTSecret, 0)
	if err != nil {
		log.Fatalf("Refusing to start: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	redis, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	publisher := events.NewPublisher(redis.Client)
	transactionRepo := repository.NewTransactionRepository(db)
	chain := ownership.NewChain(cfg.UserServiceURL, cfg.AccountServiceURL, cfg.ValidationTimeout, cfg.ValidationRetries)
	transactionSvc := service.NewTransactionService(transactionRepo, chain, publisher)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Authenticate(tokens))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "transaction-service"})
	})

	api := router.Group("/api/transactions")
	{
		api.POST("", middleware.Require(middleware.RequiresMatchingUserHeader), transactionHandler.RecordTransaction)
		api.GET("", middleware.Require(middleware.RequiresMatchingUserHeader), transactionHandler.ListTransactions)
	}

	log.Printf("Transaction service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
