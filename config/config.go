package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Auth.
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	OwnerTokenTTL           time.Duration `mapstructure:"OWNER_TOKEN_TTL"`
	AdminToken              string        `mapstructure:"ADMIN_TOKEN"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	Timezone           string        `mapstructure:"TIMEZONE"`
	BookingLockTTL     time.Duration `mapstructure:"BOOKING_LOCK_TTL"`
	BookingLockWait    time.Duration `mapstructure:"BOOKING_LOCK_WAIT"`
	ShopCacheTTL       time.Duration `mapstructure:"SHOP_CACHE_TTL"`
	TrialDays          int           `mapstructure:"TRIAL_DAYS"`
	PaidPeriodDays     int           `mapstructure:"PAID_PERIOD_DAYS"`
	EnforcePlanExpiry  bool          `mapstructure:"ENFORCE_PLAN_EXPIRY"`
	BookingHorizonDays int           `mapstructure:"BOOKING_HORIZON_DAYS"`

	// Booking event worker.
	WorkerConcurrency int `mapstructure:"WORKER_CONCURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "barberhive")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("OWNER_TOKEN_TTL", 24*time.Hour)
	viper.SetDefault("ADMIN_TOKEN", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("BOOKING_LOCK_TTL", 10*time.Second)
	viper.SetDefault("BOOKING_LOCK_WAIT", 3*time.Second)
	viper.SetDefault("SHOP_CACHE_TTL", 5*time.Minute)
	viper.SetDefault("TRIAL_DAYS", 5)
	viper.SetDefault("PAID_PERIOD_DAYS", 30)
	viper.SetDefault("ENFORCE_PLAN_EXPIRY", true)
	viper.SetDefault("BOOKING_HORIZON_DAYS", 30)
	viper.SetDefault("WORKER_CONCURRENCY", 10)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
