package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Seeder    SeederConfig
	LLM       LLMConfig
	Weather   WeatherConfig
	Wiki      WikiConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for the communes import
type SeederConfig struct {
	DataFile      string
	BatchSize     int
	MinPopulation int
}

// LLMConfig holds settings for the description generator. Timeout bounds one
// chat completion call; GenerationTimeout bounds a whole description
// generation, retries included.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	StructuredOutput  bool
	RatePerMinute     int
	Timeout           time.Duration
	GenerationTimeout time.Duration
}

// WeatherConfig holds settings for the forecast provider
type WeatherConfig struct {
	APIKey   string
	BaseURL  string
	Days     int
	CacheTTL time.Duration
	Timeout  time.Duration
}

// WikiConfig holds settings for the encyclopedia image search
type WikiConfig struct {
	APIURL  string
	Timeout time.Duration
}

// AuthConfig holds bearer token settings. An empty secret disables
// signature verification.
type AuthConfig struct {
	JWTSecret string
}

// RateLimitConfig holds per-IP limits for routes that trigger paid upstream calls.
// TrustProxy makes the limiter key on X-Forwarded-For / X-Real-IP, which only
// a reverse proxy in front of the server should be allowed to set.
type RateLimitConfig struct {
	RPS        float64
	Burst      int
	TrustProxy bool
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "communes" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	upstreamTimeout := getEnvAsDuration("UPSTREAM_TIMEOUT", 20*time.Second)

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "communes"),
			Password: getEnv("DB_PASSWORD", "communes_password"),
			Name:     getEnv("DB_NAME", "communes"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "3001"),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		},
		Seeder: SeederConfig{
			DataFile:      getEnv("SEEDER_DATA_FILE", "data/communes-france.csv"),
			BatchSize:     getEnvAsInt("SEEDER_BATCH_SIZE", 2000),
			MinPopulation: getEnvAsInt("SEEDER_MIN_POPULATION", 0),
		},
		LLM: LLMConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", ""),
			Model:             getEnv("OPENAI_MODEL", "gpt-4.1-nano"),
			StructuredOutput:  getEnvAsBool("LLM_STRUCTURED_OUTPUT", true),
			RatePerMinute:     getEnvAsInt("LLM_RATE_PER_MINUTE", 60),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			GenerationTimeout: getEnvAsDuration("LLM_GENERATION_TIMEOUT", 90*time.Second),
		},
		Weather: WeatherConfig{
			APIKey:   getEnv("WEATHER_API_KEY", ""),
			BaseURL:  getEnv("WEATHER_API_URL", "https://api.weatherapi.com/v1"),
			Days:     getEnvAsInt("WEATHER_DAYS", 3),
			CacheTTL: getEnvAsDuration("WEATHER_CACHE_TTL", 10*time.Minute),
			Timeout:  upstreamTimeout,
		},
		Wiki: WikiConfig{
			APIURL:  getEnv("WIKI_API_URL", "https://fr.wikipedia.org/w/api.php"),
			Timeout: upstreamTimeout,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:        getEnvAsFloat("RATE_LIMIT_RPS", 2),
			Burst:      getEnvAsInt("RATE_LIMIT_BURST", 10),
			TrustProxy: getEnvAsBool("TRUST_PROXY_HEADERS", false),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
