package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dentara/backend/internal/adapters/cache"
	"github.com/dentara/backend/internal/adapters/database"
	"github.com/dentara/backend/internal/adapters/events"
	"github.com/dentara/backend/internal/adapters/search"
	"github.com/dentara/backend/internal/api/handlers"
	"github.com/dentara/backend/internal/api/middleware"
	"github.com/dentara/backend/internal/api/routes"
	"github.com/dentara/backend/internal/application/services"
	"github.com/dentara/backend/internal/domain/providers"
	"github.com/dentara/backend/internal/domain/repositories"
	"github.com/dentara/backend/internal/infrastructure/clients/litellm"
	"github.com/dentara/backend/internal/infrastructure/clients/postgres"
	"github.com/dentara/backend/internal/infrastructure/clients/redis"
	"github.com/dentara/backend/internal/infrastructure/clients/typesense"
	"github.com/dentara/backend/internal/infrastructure/observability"
	"github.com/dentara/backend/pkg/config"
)

func main() {
	// Load .env in development; in production configuration comes from the environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for live dashboard updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters
	articleAdapter := database.NewArticleAdapter(pgClient)
	articleViewAdapter := database.NewArticleViewAdapter(pgClient)
	glossaryAdapter := database.NewGlossaryAdapter(pgClient)
	profileAdapter := database.NewProfileAdapter(pgClient)
	searchLogAdapter := database.NewSearchLogAdapter(pgClient)
	analyticsAdapter := database.NewAnalyticsAdapter(pgClient)

	var searchRepo repositories.ArticleSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)

		// Ensure schema exists
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	var suggester providers.MetadataSuggester
	if !cfg.LiteLLM.Configured() {
		log.Println("Warning: LITELLM_PROXY_URL or LITELLM_API_KEY is not set; AI glossary enhancement disabled")
	} else {
		litellmClient, err := litellm.NewClient(&cfg.LiteLLM)
		if err != nil {
			log.Printf("Warning: Failed to initialize LiteLLM client: %v", err)
		} else {
			suggester = litellmClient
		}
	}

	// Initialize services
	articleService := services.NewArticleService(articleAdapter, searchRepo)
	glossaryService := services.NewGlossaryService(glossaryAdapter)
	trackingService := services.NewViewTrackingService(articleViewAdapter, searchLogAdapter, eventBus)
	analyticsService := services.NewAnalyticsService(analyticsAdapter, articleAdapter, cfg.Analytics)
	enhancementService := services.NewEnhancementService(glossaryAdapter, suggester)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(profileAdapter, cfg.Auth.JWTSecret)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Initialize handlers
	articleHandler := handlers.NewArticleHandler(articleService, trackingService)
	glossaryHandler := handlers.NewGlossaryHandler(glossaryService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	enhancementHandler := handlers.NewEnhancementHandler(enhancementService, authMiddleware)
	liveHandler := handlers.NewLiveAnalyticsHandler(eventBus, metrics)

	// Set up router
	router := routes.NewRouter(
		articleHandler,
		glossaryHandler,
		analyticsHandler,
		enhancementHandler,
		liveHandler,
		authMiddleware,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server. WriteTimeout must stay generous enough for the
	// admin SSE streams to run multi-batch enhancement jobs.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
