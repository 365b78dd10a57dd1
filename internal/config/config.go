package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RenderModeSPA  = "spa"
	RenderModeHTML = "html"

	devJWTSecret = "dev-only-secret"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RenderMode         string // "spa" or "html"
	ClientDir          string
	APIPrefix          string
}

type DatabaseConfig struct {
	Connection string
	Verbose    bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	RedisURL  string // empty: revocations are kept in memory
}

type EventsConfig struct {
	NatsURL   string // empty: events stay in process
	NoteTopic string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RenderMode:         strings.ToLower(getEnv("APP_RENDER_MODE", RenderModeSPA)),
			ClientDir:          getEnv("APP_CLIENT_DIR", "./public"),
			APIPrefix:          getEnv("API_PREFIX", "/api"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Verbose:    getEnvAsBool("DB_VERBOSE", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
			RedisURL:  getEnv("REDIS_URL", ""),
		},
		Events: EventsConfig{
			NatsURL:   getEnv("NATS_URL", ""),
			NoteTopic: getEnv("NOTE_EVENTS_TOPIC", "note_events"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "notekeeper-be"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Validate fills development defaults and rejects settings the server cannot
// start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Connection == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			log.Println("Warning: JWT_SECRET not set, using an insecure development secret")
			c.Auth.JWTSecret = devJWTSecret
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.App.RenderMode != RenderModeSPA && c.App.RenderMode != RenderModeHTML {
		errs = append(errs, errors.New(`APP_RENDER_MODE must be "spa" or "html"`))
	}
	switch prefix := c.App.APIPrefix; {
	case !strings.HasPrefix(prefix, "/"):
		errs = append(errs, errors.New("API_PREFIX must start with /"))
	case prefix == "/":
		// the API catch-all would swallow every page route
		errs = append(errs, errors.New("API_PREFIX must not be the root path"))
	case strings.HasSuffix(prefix, "/"):
		errs = append(errs, errors.New("API_PREFIX must not end with /"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("12h") or a plain number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
