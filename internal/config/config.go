package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Push providers
const (
	PushProviderFCM  = "fcm"
	PushProviderExpo = "expo"
	PushProviderNone = "none"
)

// Live stores
const (
	LiveStoreFirestore = "firestore"
	LiveStoreRedis     = "redis"
	LiveStoreNone      = "none"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	JWTSecret string

	RedisURL string

	FirebaseProjectID   string
	FirebaseClientEmail string
	FirebasePrivateKey  string

	PushProvider string
	PushTimeout  time.Duration

	LiveStore   string
	SyncTimeout time.Duration

	EngagementWorkers int
	StreakLocation    *time.Location
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	pushTimeout, err := durationEnv("PUSH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	syncTimeout, err := durationEnv("SYNC_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	workers, err := strconv.Atoi(os.Getenv("ENGAGEMENT_WORKERS"))
	if err != nil || workers <= 0 {
		workers = 2
	}

	streakLoc := time.Local
	if tz := os.Getenv("STREAK_TIMEZONE"); tz != "" {
		streakLoc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid STREAK_TIMEZONE %q: %w", tz, err)
		}
	}

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisURL: os.Getenv("REDIS_URL"),

		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseClientEmail: os.Getenv("FIREBASE_CLIENT_EMAIL"),
		FirebasePrivateKey:  os.Getenv("FIREBASE_PRIVATE_KEY"),

		PushProvider: getEnv("PUSH_PROVIDER", PushProviderFCM),
		PushTimeout:  pushTimeout,

		LiveStore:   getEnv("LIVE_STORE", LiveStoreFirestore),
		SyncTimeout: syncTimeout,

		EngagementWorkers: workers,
		StreakLocation:    streakLoc,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FirebaseConfigured reports whether service account credentials are present.
func (c *Config) FirebaseConfigured() bool {
	return c.FirebaseProjectID != "" && c.FirebaseClientEmail != "" && c.FirebasePrivateKey != ""
}

func (c *Config) validate() error {
	switch c.PushProvider {
	case PushProviderFCM, PushProviderExpo, PushProviderNone:
	default:
		return fmt.Errorf("invalid PUSH_PROVIDER %q", c.PushProvider)
	}

	switch c.LiveStore {
	case LiveStoreFirestore, LiveStoreRedis, LiveStoreNone:
	default:
		return fmt.Errorf("invalid LIVE_STORE %q", c.LiveStore)
	}

	if c.LiveStore == LiveStoreRedis && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when LIVE_STORE=redis")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}
