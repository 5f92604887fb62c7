// backend-go/internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Prediction PredictionConfig
	Forecast   ForecastConfig
	Campaign   CampaignConfig
	Jobs       JobsConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConcurrency int64
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
	TrackingTTLSeconds int
}

// PredictionConfig configures the demand prediction service client.
type PredictionConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimit      float64
	RateBurst      int
	MaxConcurrency int
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Scopes         []string
}

// ForecastConfig holds the defaults used when prediction rows omit pricing.
type ForecastConfig struct {
	ReferencePrice          float64
	ReferenceCost           float64
	RushReplenishmentFactor float64
	DefaultPromotionName    string
}

// CampaignConfig holds the product-tuned thresholds for campaign classification.
type CampaignConfig struct {
	SuccessAchievementRatio float64
	MaxStockDayDeviation    int
	ConfidenceFloor         float64
	ConfidencePenaltyPerDay float64
	ChartPoints             int
	ChartAmplitude          float64
	PendingWindowDays       int
}

type JobsConfig struct {
	Enabled            bool
	CacheFlushCron     string
	TrackingWarmupCron string
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "promolift")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONCURRENCY", 10)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("CACHE_TRACKING_TTL_SECONDS", 900)
		viper.SetDefault("PREDICTION_BASE_URL", "http://localhost:8000/api/forecast")
		viper.SetDefault("PREDICTION_TIMEOUT_SECONDS", 30)
		viper.SetDefault("PREDICTION_RATE_LIMIT", 20)
		viper.SetDefault("PREDICTION_RATE_BURST", 5)
		viper.SetDefault("PREDICTION_MAX_CONCURRENCY", 8)
		viper.SetDefault("PREDICTION_TOKEN_URL", "")
		viper.SetDefault("PREDICTION_CLIENT_ID", "")
		viper.SetDefault("PREDICTION_CLIENT_SECRET", "")
		viper.SetDefault("PREDICTION_SCOPES", "")
		viper.SetDefault("FORECAST_REFERENCE_PRICE", 87.45)
		viper.SetDefault("FORECAST_REFERENCE_COST", 67.67)
		viper.SetDefault("FORECAST_RUSH_REPLENISHMENT_FACTOR", 0.12)
		viper.SetDefault("FORECAST_DEFAULT_PROMOTION_NAME", "Promotion")
		viper.SetDefault("CAMPAIGN_SUCCESS_ACHIEVEMENT_RATIO", 0.95)
		viper.SetDefault("CAMPAIGN_MAX_STOCK_DAY_DEVIATION", 3)
		viper.SetDefault("CAMPAIGN_CONFIDENCE_FLOOR", 55)
		viper.SetDefault("CAMPAIGN_CONFIDENCE_PENALTY_PER_DAY", 10)
		viper.SetDefault("CAMPAIGN_CHART_POINTS", 7)
		viper.SetDefault("CAMPAIGN_CHART_AMPLITUDE", 0.15)
		viper.SetDefault("CAMPAIGN_PENDING_WINDOW_DAYS", 14)
		viper.SetDefault("JOBS_ENABLED", true)
		viper.SetDefault("JOBS_CACHE_FLUSH_CRON", "0 0 3 * * *")
		viper.SetDefault("JOBS_TRACKING_WARMUP_CRON", "0 */15 * * * *")
		viper.SetDefault("LOG_LEVEL", "info")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:           viper.GetString("DB_HOST"),
				Port:           viper.GetString("DB_PORT"),
				User:           viper.GetString("DB_USER"),
				Password:       viper.GetString("DB_PASSWORD"),
				DBName:         viper.GetString("DB_NAME"),
				SSLMode:        viper.GetString("DB_SSLMODE"),
				MaxConcurrency: viper.GetInt64("DB_MAX_CONCURRENCY"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
				TrackingTTLSeconds: viper.GetInt("CACHE_TRACKING_TTL_SECONDS"),
			},
			Prediction: PredictionConfig{
				BaseURL:        strings.TrimRight(viper.GetString("PREDICTION_BASE_URL"), "/"),
				Timeout:        time.Duration(viper.GetInt("PREDICTION_TIMEOUT_SECONDS")) * time.Second,
				RateLimit:      viper.GetFloat64("PREDICTION_RATE_LIMIT"),
				RateBurst:      viper.GetInt("PREDICTION_RATE_BURST"),
				MaxConcurrency: viper.GetInt("PREDICTION_MAX_CONCURRENCY"),
				TokenURL:       viper.GetString("PREDICTION_TOKEN_URL"),
				ClientID:       viper.GetString("PREDICTION_CLIENT_ID"),
				ClientSecret:   viper.GetString("PREDICTION_CLIENT_SECRET"),
				Scopes:         splitList(viper.GetString("PREDICTION_SCOPES")),
			},
			Forecast: ForecastConfig{
				ReferencePrice:          viper.GetFloat64("FORECAST_REFERENCE_PRICE"),
				ReferenceCost:           viper.GetFloat64("FORECAST_REFERENCE_COST"),
				RushReplenishmentFactor: viper.GetFloat64("FORECAST_RUSH_REPLENISHMENT_FACTOR"),
				DefaultPromotionName:    viper.GetString("FORECAST_DEFAULT_PROMOTION_NAME"),
			},
			Campaign: CampaignConfig{
				SuccessAchievementRatio: viper.GetFloat64("CAMPAIGN_SUCCESS_ACHIEVEMENT_RATIO"),
				MaxStockDayDeviation:    viper.GetInt("CAMPAIGN_MAX_STOCK_DAY_DEVIATION"),
				ConfidenceFloor:         viper.GetFloat64("CAMPAIGN_CONFIDENCE_FLOOR"),
				ConfidencePenaltyPerDay: viper.GetFloat64("CAMPAIGN_CONFIDENCE_PENALTY_PER_DAY"),
				ChartPoints:             viper.GetInt("CAMPAIGN_CHART_POINTS"),
				ChartAmplitude:          viper.GetFloat64("CAMPAIGN_CHART_AMPLITUDE"),
				PendingWindowDays:       viper.GetInt("CAMPAIGN_PENDING_WINDOW_DAYS"),
			},
			Jobs: JobsConfig{
				Enabled:            viper.GetBool("JOBS_ENABLED"),
				CacheFlushCron:     viper.GetString("JOBS_CACHE_FLUSH_CRON"),
				TrackingWarmupCron: viper.GetString("JOBS_TRACKING_WARMUP_CRON"),
			},
			Log: LogConfig{
				Level: viper.GetString("LOG_LEVEL"),
			},
		}
	})

	return instance
}

// DefaultForecastConfig returns the forecast defaults without reading the environment.
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		ReferencePrice:          87.45,
		ReferenceCost:           67.67,
		RushReplenishmentFactor: 0.12,
		DefaultPromotionName:    "Promotion",
	}
}

// DefaultCampaignConfig returns the campaign thresholds without reading the environment.
func DefaultCampaignConfig() CampaignConfig {
	return CampaignConfig{
		SuccessAchievementRatio: 0.95,
		MaxStockDayDeviation:    3,
		ConfidenceFloor:         55,
		ConfidencePenaltyPerDay: 10,
		ChartPoints:             7,
		ChartAmplitude:          0.15,
		PendingWindowDays:       14,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
