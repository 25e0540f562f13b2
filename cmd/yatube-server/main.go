package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kasaress/yatube/pkg/yatube/auth"
	"github.com/kasaress/yatube/pkg/yatube/database"
	"github.com/kasaress/yatube/pkg/yatube/follows"
	"github.com/kasaress/yatube/pkg/yatube/models"
	"github.com/kasaress/yatube/pkg/yatube/pagecache"
	"github.com/kasaress/yatube/pkg/yatube/pagination"
	"github.com/kasaress/yatube/pkg/yatube/posts"
)

// @title Yatube API
// @version 1.0
// @description A small blogging platform: posts, groups, comments, and follows.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}"

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Connect to database
	dbPath := getenv("YATUBE_DB_PATH", "yatube.db")
	if err := database.Connect(dbPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Listing page size
	if size, err := strconv.Atoi(getenv("YATUBE_PAGE_SIZE", "10")); err == nil && size > 0 {
		pagination.PageSize = size
	}

	// Page cache: Redis when reachable, disabled otherwise
	cache := pagecache.New(connectRedis(getenv("REDIS_ADDR", "localhost:6379")), cacheTTL())

	mediaDir := getenv("YATUBE_MEDIA_DIR", "media")

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Auth routes (public)
	authHandler := auth.NewHandler(database.GetDB())
	authHandler.RegisterRoutes(r.Group("/auth"))

	// Page routes; each handler guards its own protected actions
	root := r.Group("")
	postsHandler := posts.NewHandler(database.GetDB(), cache, mediaDir)
	postsHandler.RegisterRoutes(root)

	followsHandler := follows.NewHandler(database.GetDB())
	followsHandler.RegisterRoutes(root)

	// Get port from environment or use default
	port := getenv("PORT", "8080")

	log.Printf("Starting Yatube server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// cacheTTL reads the index cache lifetime in seconds.
func cacheTTL() time.Duration {
	seconds, err := strconv.Atoi(getenv("YATUBE_CACHE_TTL", "20"))
	if err != nil || seconds < 0 {
		seconds = 20
	}
	return time.Duration(seconds) * time.Second
}

// connectRedis returns a pinged client, or nil so the app runs with the
// page cache disabled.
func connectRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without page cache)", err)
		return nil
	}
	log.Println("Redis connected successfully")
	return client
}
