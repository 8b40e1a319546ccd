package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/mahsa-meymari/FinancialTracker/internal/account/handler"
	"github.com/mahsa-meymari/FinancialTracker/internal/account/repository"
	"github.com/mahsa-meymari/FinancialTracker/internal/account/service"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/config"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/ownership"
	redisclient "github.com/mahsa-meymari/FinancialTracker/internal/shared/redis"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/token"
)

func main() {
	cfg, err := config.LoadAccount()
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
	accountRepo := repository.NewAccountRepository(db)
	processedLog := repository.NewProcessedLog(redis.Client)
	// Only the user hop is exercised here; this service answers the account
	// hop itself.
	chain := ownership.NewChain(cfg.UserServiceURL, "", cfg.ValidationTimeout, cfg.ValidationRetries)
	accountSvc := service.NewAccountService(accountRepo, chain, publisher, processedLog)
	accountHandler := handler.NewAccountHandler(accountSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Authenticate(tokens))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "account-service"})
	})

	api := router.Group("/api/accounts")
	{
		api.POST("", middleware.Require(middleware.RequiresMatchingUserHeader), accountHandler.CreateAccount)
		api.GET("", middleware.Require(middleware.RequiresMatchingUserHeader), accountHandler.ListAccounts)

		// Service-to-service ownership check used by the transaction service.
		api.GET("/validate/:accountId", middleware.Require(middleware.Public), accountHandler.ValidateAccount)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Balance projection: consume transaction.created events and apply them
	// to account balances exactly once.
	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    cfg.ConsumerGroup,
			Consumer: cfg.ConsumerName,
			Stream:   events.TransactionEventsStream,
			Handler:  accountSvc.HandleTransactionEvent,
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Account service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
