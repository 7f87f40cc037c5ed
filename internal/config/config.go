/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * Economy tunables (feed cost, XP curve, daily cap, claim window, growth rate)
 * are validated after loading so a bad deployment cannot push the accrual or
 * feeding math into negative territory.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the mining-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string  `mapstructure:"SERVER_PORT"`
	DatabaseURL              string  `mapstructure:"DATABASE_URL"`
	RedisURL                 string  `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string  `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string  `mapstructure:"RABBITMQ_URL"`
	MiningEventExchange      string  `mapstructure:"MINING_EVENT_EXCHANGE"`
	JWKSURL                  string  `mapstructure:"JWKS_URL"`
	InternalAPIKey           string  `mapstructure:"INTERNAL_API_KEY"`
	SettlementAPIBaseURL     string  `mapstructure:"SETTLEMENT_API_BASE_URL"`
	SettlementAPIKey         string  `mapstructure:"SETTLEMENT_API_KEY"`
	SettlementMinClaimPoints int64   `mapstructure:"SETTLEMENT_MIN_CLAIM_POINTS"`
	FeedCostPoints           int64   `mapstructure:"FEED_COST_POINTS"`
	XPPerFeed                int64   `mapstructure:"XP_PER_FEED"`
	XPForLevelUp             int64   `mapstructure:"XP_FOR_LEVEL_UP"`
	MaxPetLevel              int     `mapstructure:"MAX_PET_LEVEL"`
	MaxDailySpendPoints      int64   `mapstructure:"MAX_DAILY_SPEND_POINTS"`
	MaxClaimWindowHours      int     `mapstructure:"MAX_CLAIM_WINDOW_HOURS"`
	DefaultGrowthRate        float64 `mapstructure:"DEFAULT_GROWTH_RATE"`
	ClaimRateLimitPerMinute  int     `mapstructure:"CLAIM_RATE_LIMIT_PER_MINUTE"`
	FeedRateLimitPerMinute   int     `mapstructure:"FEED_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "pawmine:rate_limit")
	viper.SetDefault("MINING_EVENT_EXCHANGE", "mining_service.events")
	viper.SetDefault("SETTLEMENT_MIN_CLAIM_POINTS", 10000)
	viper.SetDefault("FEED_COST_POINTS", 20)
	viper.SetDefault("XP_PER_FEED", 20)
	viper.SetDefault("XP_FOR_LEVEL_UP", 1200)
	viper.SetDefault("MAX_PET_LEVEL", 50)
	viper.SetDefault("MAX_DAILY_SPEND_POINTS", 600)
	viper.SetDefault("MAX_CLAIM_WINDOW_HOURS", 4)
	viper.SetDefault("DEFAULT_GROWTH_RATE", 0.8)
	viper.SetDefault("CLAIM_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("FEED_RATE_LIMIT_PER_MINUTE", 30)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "MINING_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("MINING_EVENT_EXCHANGE")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "MINING_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("SETTLEMENT_API_BASE_URL")
	_ = viper.BindEnv("SETTLEMENT_API_KEY")
	_ = viper.BindEnv("SETTLEMENT_MIN_CLAIM_POINTS")
	_ = viper.BindEnv("FEED_COST_POINTS")
	_ = viper.BindEnv("XP_PER_FEED")
	_ = viper.BindEnv("XP_FOR_LEVEL_UP")
	_ = viper.BindEnv("MAX_PET_LEVEL")
	_ = viper.BindEnv("MAX_DAILY_SPEND_POINTS")
	_ = viper.BindEnv("MAX_CLAIM_WINDOW_HOURS")
	_ = viper.BindEnv("DEFAULT_GROWTH_RATE")
	_ = viper.BindEnv("CLAIM_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("FEED_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("MINING_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "pawmine:rate_limit"
	}
	config.MiningEventExchange = strings.TrimSpace(config.MiningEventExchange)
	if config.MiningEventExchange == "" {
		config.MiningEventExchange = "mining_service.events"
	}

	if config.FeedCostPoints <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive feed cost configured; using default\" feed_cost=%d", config.FeedCostPoints)
		config.FeedCostPoints = 20
	}
	if config.XPPerFeed <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive xp per feed configured; using default\" xp_per_feed=%d", config.XPPerFeed)
		config.XPPerFeed = 20
	}
	if config.XPForLevelUp <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive level-up xp configured; using default\" xp_for_level_up=%d", config.XPForLevelUp)
		config.XPForLevelUp = 1200
	}
	if config.MaxPetLevel <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive max pet level configured; using default\" max_pet_level=%d", config.MaxPetLevel)
		config.MaxPetLevel = 50
	}
	if config.MaxDailySpendPoints <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive daily spend cap configured; using default\" max_daily_spend=%d", config.MaxDailySpendPoints)
		config.MaxDailySpendPoints = 600
	}
	if config.MaxClaimWindowHours <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive claim window configured; using default\" claim_window_hours=%d", config.MaxClaimWindowHours)
		config.MaxClaimWindowHours = 4
	}
	if config.DefaultGrowthRate <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive growth rate configured; using default\" growth_rate=%f", config.DefaultGrowthRate)
		config.DefaultGrowthRate = 0.8
	}
	if config.SettlementMinClaimPoints < 0 {
		log.Printf("level=warn component=config msg=\"negative settlement threshold configured; coercing to zero\" min_claim_points=%d", config.SettlementMinClaimPoints)
		config.SettlementMinClaimPoints = 0
	}
	if config.ClaimRateLimitPerMinute <= 0 {
		config.ClaimRateLimitPerMinute = 10
	}
	if config.FeedRateLimitPerMinute <= 0 {
		config.FeedRateLimitPerMinute = 30
	}

	return
}
