package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

type Config struct {
	TelegramToken string
	GeminiAPIKey  string
	DB            DBConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Planner       PlannerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

// RedisConfig configures the food catalog cache. An empty Host disables it.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	FoodTTL  time.Duration
}

// Enabled reports whether a redis host is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

type PlannerConfig struct {
	DefaultDays         int
	MaxDays             int
	AllowRepeatFallback bool
	GenerationTimeout   time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	foodTTL, err := time.ParseDuration(getEnvOrDefault("REDIS_FOOD_TTL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_FOOD_TTL: %w", err)
	}
	defaultDays, err := strconv.Atoi(getEnvOrDefault("PLAN_DEFAULT_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAN_DEFAULT_DAYS: %w", err)
	}
	maxDays, err := strconv.Atoi(getEnvOrDefault("PLAN_MAX_DAYS", "31"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAN_MAX_DAYS: %w", err)
	}
	allowRepeat, err := strconv.ParseBool(getEnvOrDefault("PLAN_ALLOW_REPEAT_FALLBACK", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAN_ALLOW_REPEAT_FALLBACK: %w", err)
	}
	timeout, err := time.ParseDuration(getEnvOrDefault("PLAN_GENERATION_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAN_GENERATION_TIMEOUT: %w", err)
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "meal_planner"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			FoodTTL:  foodTTL,
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Planner: PlannerConfig{
			DefaultDays:         defaultDays,
			MaxDays:             maxDays,
			AllowRepeatFallback: allowRepeat,
			GenerationTimeout:   timeout,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Planner.MaxDays < 1 {
		return fmt.Errorf("PLAN_MAX_DAYS must be at least 1, got %d", c.Planner.MaxDays)
	}
	if c.Planner.DefaultDays < 1 || c.Planner.DefaultDays > c.Planner.MaxDays {
		return fmt.Errorf("PLAN_DEFAULT_DAYS must be within 1..%d, got %d", c.Planner.MaxDays, c.Planner.DefaultDays)
	}
	if c.Planner.GenerationTimeout <= 0 {
		return fmt.Errorf("PLAN_GENERATION_TIMEOUT must be positive")
	}
	if c.Redis.FoodTTL <= 0 {
		return fmt.Errorf("REDIS_FOOD_TTL must be positive")
	}
	return nil
}
