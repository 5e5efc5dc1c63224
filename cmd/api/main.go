package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dinescout/backend/internal/adapters/cache"
	"github.com/dinescout/backend/internal/adapters/database"
	"github.com/dinescout/backend/internal/adapters/search"
	"github.com/dinescout/backend/internal/api/handlers"
	"github.com/dinescout/backend/internal/api/routes"
	"github.com/dinescout/backend/internal/application/services"
	"github.com/dinescout/backend/internal/domain/providers"
	"github.com/dinescout/backend/internal/domain/repositories"
	"github.com/dinescout/backend/internal/infrastructure/clients/openai"
	"github.com/dinescout/backend/internal/infrastructure/clients/postgres"
	"github.com/dinescout/backend/internal/infrastructure/clients/redis"
	"github.com/dinescout/backend/internal/infrastructure/clients/tavily"
	"github.com/dinescout/backend/internal/infrastructure/clients/typesense"
	"github.com/dinescout/backend/internal/infrastructure/observability"
	"github.com/dinescout/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// PostgreSQL is the only hard dependency
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the application works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Typesense is optional; catalog search falls back to the database
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client, continuing without search engine")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	baseRestaurantAdapter := database.NewRestaurantAdapter(pgClient)

	var restaurantAdapter repositories.RestaurantRepository
	if cacheProvider != nil {
		restaurantAdapter = database.NewCachedRestaurantAdapter(baseRestaurantAdapter, cacheProvider)
		log.Info().Msg("restaurant adapter wrapped with caching layer")
	} else {
		restaurantAdapter = baseRestaurantAdapter
		log.Info().Msg("restaurant adapter running without cache")
	}

	reviewAdapter := database.NewReviewAdapter(pgClient)
	preferenceAdapter := database.NewPreferenceAdapter(pgClient)

	var searchRepo repositories.RestaurantSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Chat model is optional; the assistant degrades to heuristics
	var chatModel providers.ChatModelProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; assistant running in heuristic-only mode")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			chatModel = openaiClient
			log.Info().Msg("OpenAI client initialized")
		}
	}

	// Web search is optional; suggestions skip live enrichment without it
	var webSearch providers.WebSearchProvider
	if cfg.Tavily.APIKey == "" {
		log.Warn().Msg("TAVILY_API_KEY is not set; live web enrichment disabled")
	} else {
		tavilyClient, err := tavily.NewClient(&cfg.Tavily)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Tavily client")
		} else {
			webSearch = tavilyClient
			log.Info().Msg("Tavily client initialized")
		}
	}

	// Initialize services
	intentService := services.NewIntentService(chatModel)
	rankingService := services.NewRankingService(restaurantAdapter, reviewAdapter)
	assistantService := services.NewAssistantService(
		restaurantAdapter,
		reviewAdapter,
		preferenceAdapter,
		intentService,
		rankingService,
		chatModel,
		webSearch,
	)
	restaurantService := services.NewRestaurantService(restaurantAdapter, reviewAdapter, searchRepo)
	reviewService := services.NewReviewService(reviewAdapter, restaurantAdapter)
	preferenceService := services.NewPreferenceService(preferenceAdapter)

	// Initialize handlers
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)

	// Set up router
	router := routes.NewRouter(
		assistantHandler,
		restaurantHandler,
		reviewHandler,
		preferenceHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
