package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"
)

// Status store backends.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSupabase = "supabase"
	StoreMemory   = "memory"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Status store
	StatusStore string
	MongoURL    string
	DBName      string
	DatabaseURL string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// LLM gateway
	LLMAPIKey    string
	LLMModel     string // provider/model
	LLMBaseURL   string // overrides the provider endpoint (proxies, compatible gateways)
	LLMTimeout   time.Duration
	LLMMaxTokens int

	// HTTP client (Supabase)
	HTTPTimeout time.Duration

	// Circuit breaker
	BreakerTimeout      time.Duration
	BreakerMinRequests  int
	BreakerFailureRatio float64

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8001),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StatusStore: strings.ToLower(getEnv("STATUS_STORE", StoreMongo)),
		MongoURL:    getEnv("MONGO_URL", ""),
		DBName:      getEnv("DB_NAME", "masrofi"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		LLMAPIKey:    getEnv("LLM_API_KEY", getEnv("EMERGENT_LLM_KEY", "")),
		LLMModel:     getEnv("LLM_MODEL", "gemini/gemini-2.5-flash"),
		LLMBaseURL:   getEnv("LLM_BASE_URL", ""),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens: getEnvInt("LLM_MAX_TOKENS", 2048),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		BreakerTimeout:      getEnvDuration("BREAKER_TIMEOUT", 10*time.Second),
		BreakerMinRequests:  getEnvInt("BREAKER_MIN_REQUESTS", 5),
		BreakerFailureRatio: getEnvFloat("BREAKER_FAILURE_RATIO", 0.6),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// Validate checks that the selected backend has what it needs.
// A missing LLM key is not an error: the AI routes degrade instead.
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}

	switch c.StatusStore {
	case StoreMongo:
		if c.MongoURL == "" {
			problems = append(problems, "MONGO_URL is required when STATUS_STORE=mongo")
		}
		if c.DBName == "" {
			problems = append(problems, "DB_NAME is required when STATUS_STORE=mongo")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when STATUS_STORE=postgres")
		}
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			problems = append(problems, "SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required when STATUS_STORE=supabase")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid STATUS_STORE %q: must be one of mongo, postgres, supabase, memory", c.StatusStore))
	}

	if c.LLMTimeout <= 0 {
		problems = append(problems, "LLM_TIMEOUT must be positive")
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		problems = append(problems, "BREAKER_FAILURE_RATIO must be in (0, 1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LLMConfigured reports whether an LLM credential is present.
func (c *Config) LLMConfigured() bool {
	return strings.TrimSpace(c.LLMAPIKey) != ""
}

// Breaker returns the circuit breaker settings for outbound calls.
func (c *Config) Breaker() resilience.Config {
	rc := resilience.DefaultConfig()
	rc.Timeout = c.BreakerTimeout
	if c.BreakerMinRequests > 0 {
		rc.MinRequests = uint32(c.BreakerMinRequests)
	}
	rc.FailureRatio = c.BreakerFailureRatio
	return rc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
