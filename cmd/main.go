/**
 * @description
 * This is the main entry point for the mining-service. It is responsible for
 * initializing all components of the service, including configuration, database connection,
 * external API clients, message brokers, repositories, the core application service,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/go-chi/chi/v5: For HTTP routing.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - internal/api, internal/app, internal/config, internal/domain, internal/store: Internal packages for the service.
 * - pkg/chainclient: Client for the external chain settlement API.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pawmine/mining-service/internal/api"
	"github.com/pawmine/mining-service/internal/app"
	"github.com/pawmine/mining-service/internal/config"
	"github.com/pawmine/mining-service/internal/domain"
	"github.com/pawmine/mining-service/internal/store"
	"github.com/pawmine/mining-service/pkg/chainclient"
	"github.com/pawmine/mining-service/pkg/rabbitmq"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.InternalAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"internal api key must be configured\" env=INTERNAL_API_KEY")
	}

	log.Printf("level=info component=bootstrap msg=\"starting mining-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	// Claim and feed traffic is bursty around reward windows; keep a warm pool.
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer to publish claim and rank-up events.
	// This service only needs to publish, so we use a producer.
	var eventProducer rabbitmq.Publisher
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		eventProducer = &rabbitmq.EventProducerFallback{}
	} else {
		defer producer.Close()
		eventProducer = producer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}

	// Initialize the client for the external chain settlement API. Missing
	// settlement config should not prevent the service from booting; large
	// claims will simply stay off-chain.
	var settlementClient app.SettlementClient
	if strings.TrimSpace(cfg.SettlementAPIBaseURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"settlement api not configured; chain settlement disabled\" env=SETTLEMENT_API_BASE_URL")
	} else {
		settlementClient = chainclient.NewClient(cfg.SettlementAPIBaseURL, cfg.SettlementAPIKey)
	}

	var redisClient *redis.Client
	rateLimitingEnabled := cfg.ClaimRateLimitPerMinute > 0 || cfg.FeedRateLimitPerMinute > 0
	if rateLimitingEnabled {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; action rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; action rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; action rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	feedRules := domain.FeedRules{
		CostPerFeed:   cfg.FeedCostPoints,
		XPPerFeed:     cfg.XPPerFeed,
		XPForLevelUp:  cfg.XPForLevelUp,
		MaxDailySpend: cfg.MaxDailySpendPoints,
		MaxLevel:      cfg.MaxPetLevel,
	}

	// Initialize the core application service with its dependencies.
	miningService := app.NewService(
		repository,
		settlementClient,
		eventProducer,
		feedRules,
		time.Duration(cfg.MaxClaimWindowHours)*time.Hour,
		cfg.DefaultGrowthRate,
		cfg.SettlementMinClaimPoints,
		cfg.MiningEventExchange,
	)
	if redisClient != nil {
		miningService.SetRateLimiter(
			app.NewRedisActionRateLimiter(redisClient, cfg.RedisRateLimitPrefix),
			cfg.ClaimRateLimitPerMinute,
			cfg.FeedRateLimitPerMinute,
		)
	}

	// Initialize the API handlers.
	miningHandlers := api.NewMiningHandlers(miningService)

	// Set up the HTTP router and define the API routes.
	router := chi.NewRouter()
	router.Mount("/mining", api.MiningRoutes(miningHandlers, cfg.JWKSURL, cfg.InternalAPIKey))

	// Start the HTTP server, binding to all interfaces.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
