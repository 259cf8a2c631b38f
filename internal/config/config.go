package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Rate sources understood by the currency layer.
const (
	RateSourceStatic = "static"
	RateSourceHTTP   = "http"
	RateSourceDB     = "db"
)

// Config holds everything the binaries need to build a fee engine and its
// collaborators.
type Config struct {
	Env string

	FreeCredit   decimal.Decimal
	FreeWithdraw int
	BaseCurrency string

	RateSource     string
	RatesURL       string
	RatesPerSecond float64
	RatesTTL       time.Duration

	Redis    RedisConfig
	Database DatabaseConfig

	Port      string
	LogLevel  string
	LogFormat string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN builds a postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port + " sslmode=disable"
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Env: GetEnv("ENV", "development"),

		FreeCredit:   GetDecimalEnv("FREE_CREDIT", decimal.NewFromInt(1000)),
		FreeWithdraw: GetIntEnv("FREE_WITHDRAW", 3),
		BaseCurrency: GetEnv("BASE_CURRENCY", "EUR"),

		RateSource:     GetEnv("RATE_SOURCE", RateSourceStatic),
		RatesURL:       GetEnv("RATES_URL", ""),
		RatesPerSecond: GetFloatEnv("RATES_PER_SECOND", 1),
		RatesTTL:       GetDurationEnv("RATES_TTL", time.Hour),

		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			User:     GetEnv("DB_USER", "postgres"),
			Password: GetEnv("DB_PASSWORD", "postgres"),
			Name:     GetEnv("DB_NAME", "commission"),
			Port:     GetEnv("DB_PORT", "5432"),
		},

		Port:      GetEnv("PORT", "3000"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "json"),
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetDecimalEnv returns a decimal environment variable or a default value.
func GetDecimalEnv(key string, defaultVal decimal.Decimal) decimal.Decimal {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
