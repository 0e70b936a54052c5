package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env               string
	HTTPPort          string
	APIBaseURL        string
	AdminEmail        string
	UpstreamTimeout   time.Duration
	SessionBackend    string
	RedisAddr         string
	RedisPassword     string
	SessionSigningKey string
	SessionIssuer     string
	SessionTTL        time.Duration
	CookieSecure      bool
	RateLimitPerMin   int
	Timezone          string
	LogLevel          string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() App {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}

	return App{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8081/api"),
		AdminEmail:        getEnv("ADMIN_EMAIL", "experimentpurpose1@gmail.com"),
		UpstreamTimeout:   durationEnv("UPSTREAM_TIMEOUT", 15*time.Second),
		SessionBackend:    getEnv("SESSION_BACKEND", "redis"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		SessionSigningKey: getEnv("SESSION_SIGNING_KEY", "dev-session-secret-change"),
		SessionIssuer:     getEnv("SESSION_ISSUER", "hostel-portal"),
		SessionTTL:        durationEnv("SESSION_TTL", 12*time.Hour),
		CookieSecure:      boolEnv("COOKIE_SECURE", false),
		RateLimitPerMin:   intEnv("RATE_LIMIT_PER_MIN", 10),
		Timezone:          getEnv("TIMEZONE", "Asia/Kolkata"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// Production reports whether the portal runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Location resolves the configured timezone, falling back to UTC.
func (a App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Printf("invalid timezone %q: %v, using UTC", a.Timezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
