// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teklifware/product_match_api/configs"
	"github.com/teklifware/product_match_api/internal/ai"
	"github.com/teklifware/product_match_api/internal/analytics"
	"github.com/teklifware/product_match_api/internal/api"
	"github.com/teklifware/product_match_api/internal/matcher"
	"github.com/teklifware/product_match_api/internal/storage"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Connect to the catalog database
	store, err := storage.NewPostgresStore(configs.DATABASE_URL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer store.Close()

	// Step 2: Analytics sink (optional - degrades to log-only)
	var sink matcher.AnalyticsSink
	var reader api.AnalyticsReader
	if configs.MONGO_URI != "" {
		mongoSink, err := analytics.NewMongoSink(configs.MONGO_URI, configs.MONGO_DB_NAME)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoSink.Close()
		sink = mongoSink
		reader = mongoSink
	} else {
		sink = analytics.NewLogSink()
	}

	// Step 3: AI providers
	oracle, err := ai.CreateMatchProvider()
	if err != nil {
		log.Fatalf("Failed to create match provider: %v", err)
	}
	vision := ai.CreateVisionProvider()

	// Step 4: Matching engine
	engineCfg := matcher.Config{
		SearchLimit:      configs.SEARCH_LIMIT,
		AICandidateLimit: configs.AI_CANDIDATE_LIMIT,
		AISampleLimit:    configs.AI_SAMPLE_LIMIT,
		MultiMatchGap:    configs.MULTI_MATCH_GAP,
		ExactThreshold:   configs.EXACT_ACCEPT_THRESHOLD,
		LexicalThreshold: configs.LEXICAL_ACCEPT_THRESHOLD,
		OracleTimeout:    time.Duration(configs.AI_TIMEOUT_SEC) * time.Second,
	}
	var engineOracle matcher.Oracle
	if oracle != nil {
		engineOracle = oracle
	}
	engine := matcher.NewEngine(store, engineOracle, sink, engineCfg)

	handler := &api.Handler{
		Engine:    engine,
		Store:     store,
		Vision:    vision,
		Analytics: reader,
	}

	// Step 5: Initialize the Gin router
	router := gin.Default()

	// Add CORS middleware - configure allowed origins for production
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "product-match-api",
			"version": "1.0.0",
		})
	})

	// Step 6: Define the API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/match-product", handler.MatchProduct)
		v1.POST("/match-products", handler.MatchProducts)
		v1.POST("/process-image", handler.ProcessImage)

		v1.GET("/products", handler.ListProducts)
		v1.POST("/products", handler.CreateProduct)
		v1.POST("/products/import", handler.ImportProducts)
		v1.GET("/products/:id", handler.GetProduct)
		v1.PUT("/products/:id", handler.UpdateProduct)
		v1.DELETE("/products/:id", handler.DeleteProduct)

		v1.GET("/companies", handler.ListCompanies)
		v1.POST("/companies", handler.CreateCompany)
		v1.GET("/companies/:id", handler.GetCompany)
		v1.PUT("/companies/:id", handler.UpdateCompany)
		v1.DELETE("/companies/:id", handler.DeleteCompany)

		v1.GET("/quotations", handler.ListQuotations)
		v1.POST("/quotations", handler.CreateQuotation)
		v1.GET("/quotations/:id", handler.GetQuotation)

		v1.GET("/analytics/recent", handler.RecentAnalytics)
	}

	// Step 7: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second, // Image uploads need more than a few seconds
		WriteTimeout:   3 * time.Minute,  // Allow bulk matching with AI fallback to finish
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  POST /api/v1/match-product")
		log.Println("  POST /api/v1/match-products")
		log.Println("  POST /api/v1/process-image")
		log.Println("  CRUD /api/v1/products, /api/v1/companies, /api/v1/quotations")
		log.Println("  GET  /api/v1/analytics/recent")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
