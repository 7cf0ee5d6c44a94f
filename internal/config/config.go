package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"

	"github.com/joho/godotenv" // For loading .env files
)

// Lifecycle policies. The policy is a deployment choice: auto_invest opens
// the investment the moment a deposit is approved, manual_invest credits
// the deposit to the balance and leaves the start to the user.
const (
	PolicyAutoInvest   = "auto_invest"
	PolicyManualInvest = "manual_invest"
)

// Config holds the application configuration
type Config struct {
	AppPort         string // Application port
	DBHost          string // Database host
	DBPort          string // Database port
	DBUser          string // Database user
	DBPassword      string // Database password
	DBName          string // Database name
	DBAutoMigrate   bool   // Run automigrate on boot
	JWTSecret       string // JWT secret key
	RedisAddr       string // Redis server address
	RedisPass       string // Redis password
	RedisDB         int    // Redis database number
	IsProd          bool   // Is production environment
	LifecyclePolicy string // auto_invest or manual_invest
	SweepInterval   time.Duration
	AdminUsername   string
	AdminPassword   string
	PlatformWallet  string // USDT address shown to depositors
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	sweepMin := 5
	if v := os.Getenv("SWEEP_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sweepMin = n
		}
	}

	policy := getEnv("LIFECYCLE_POLICY", PolicyAutoInvest)
	if policy != PolicyAutoInvest && policy != PolicyManualInvest {
		policy = PolicyAutoInvest
	}

	return &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "yieldly"),
		DBAutoMigrate:   os.Getenv("DB_AUTO_MIGRATE") == "true",
		JWTSecret:       getEnv("JWT_SECRET", "yieldly-secret-key-2024"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		RedisDB:         redisDB,
		IsProd:          os.Getenv("IS_PROD") == "true",
		LifecyclePolicy: policy,
		SweepInterval:   time.Duration(sweepMin) * time.Minute,
		AdminUsername:   getEnv("ADMIN_USERNAME", "yieldly"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		PlatformWallet:  os.Getenv("PLATFORM_WALLET"),
	}
}

// DSN builds the Postgres connection string
func (c *Config) DSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=disable TimeZone=UTC"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
