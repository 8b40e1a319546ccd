package main

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahsa-meymari/FinancialTracker/internal/shared/config"
	"github.com/mahsa-meymari/FinancialTracker/internal/shared/middleware"
)

// The gateway forwards requests verbatim, headers included. Authentication
// and authorization stay with the owning services; the internal validate
// endpoints are deliberately not routed here.
func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userServiceURL := strings.TrimSuffix(cfg.UserServiceURL, "/")
	accountServiceURL := strings.TrimSuffix(cfg.AccountServiceURL, "/")
	transactionServiceURL := strings.TrimSuffix(cfg.TransactionServiceURL, "/")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "api-gateway"})
	})

	router.POST("/api/users/register", proxyTo(userServiceURL))
	router.POST("/api/users/login", proxyTo(userServiceURL))

	router.POST("/api/accounts", proxyTo(accountServiceURL))
	router.GET("/api/accounts", proxyTo(accountServiceURL))

	router.POST("/api/transactions", proxyTo(transactionServiceURL))
	router.GET("/api/transactions", proxyTo(transactionServiceURL))

	log.Printf("API Gateway starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func proxyTo(serviceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read request body"})
				return
			}
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, bytes.NewBuffer(bodyBytes))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}
		for key, values := range c.Request.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("Error proxying request to %s: %v", targetURL, err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read response"})
			return
		}

		for key, values := range resp.Header {
			for _, value := range values {
				c.Header(key, value)
			}
		}
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}
