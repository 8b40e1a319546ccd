package main

import (
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/mahsa-meymari/FinancialTracker/internal/identity/handler"
	"github.com/mahsa-meymari/FinancialTracker/internal/identity/repository"
	"github.com/mahsa-meymari/FinancialTracker/internal/identity/service"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/config"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/events"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
	redisclient "github.com/mahsa-meymari/FinancialTracker/internal/shared/redis"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/token"
)

func main() {
	cfg, err := config.LoadIdentity()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// A weak signing secret is a deployment error, not a runtime condition.
	tokens, err := token.NewManager(cfg.JWTSecret, cfg.TokenLifetime)
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
	userRepo := repository.NewUserRepository(db)
	identitySvc := service.NewIdentityService(userRepo, tokens, publisher)
	userHandler := handler.NewUserHandler(identitySvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Authenticate(tokens))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "identity-service"})
	})

	api := router.Group("/api/users")
	{
		api.POST("/register", middleware.Require(middleware.Public), userHandler.Register)
		api.POST("/login", middleware.Require(middleware.Public), userHandler.Login)

		// Service-to-service existence check used by the ownership chain.
		api.GET("/validate/:userId", middleware.Require(middleware.Public), userHandler.ValidateUser)
	}

	log.Printf("Identity service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
