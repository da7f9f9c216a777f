package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string
	JWTSecret   string

	// Database
	DBType            string
	DatabaseURL       string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBConnectionLimit int
	AutoMigrate       bool

	// Redis is optional. Without it the hub runs single-instance and the
	// normalizer token is cached in process.
	RedisURL string

	// Sub-category normalizer. NormalizerEndpoint wins over the Vertex parts.
	NormalizerEndpoint string
	VertexProjectID    string
	VertexLocation     string
	VertexEndpointID   string
	NormalizerToken    string
	NormalizerTimeout  time.Duration

	AssignmentWorkloadCap int
	WSSweepInterval       time.Duration
	WSStaleAfter          time.Duration
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		DBType:            strings.ToLower(getEnv("DB_TYPE", "postgres")),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 10),
		AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),

		RedisURL: getEnv("REDIS_URL", ""),

		NormalizerEndpoint: getEnv("NORMALIZER_ENDPOINT", ""),
		VertexProjectID:    getEnv("VERTEX_PROJECT_ID", ""),
		VertexLocation:     getEnv("VERTEX_LOCATION", "us-central1"),
		VertexEndpointID:   getEnv("VERTEX_ENDPOINT_ID", ""),
		NormalizerToken:    getEnv("NORMALIZER_TOKEN", ""),
		NormalizerTimeout:  getEnvAsDuration("NORMALIZER_TIMEOUT", 10*time.Second),

		AssignmentWorkloadCap: getEnvAsInt("ASSIGNMENT_WORKLOAD_CAP", DefaultWorkloadLimit),
		WSSweepInterval:       getEnvAsDuration("WS_SWEEP_INTERVAL", HeartbeatInterval),
		WSStaleAfter:          getEnvAsDuration("WS_STALE_AFTER", StaleAfter),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && cfg.DBName == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_NAME is required")
	}
	if cfg.WSStaleAfter <= cfg.WSSweepInterval {
		return nil, fmt.Errorf("WS_STALE_AFTER (%s) must exceed WS_SWEEP_INTERVAL (%s)", cfg.WSStaleAfter, cfg.WSSweepInterval)
	}

	return cfg, nil
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NormalizerURL returns the generateContent endpoint, or "" when
// normalization is not configured.
func (c *Config) NormalizerURL() string {
	if c.NormalizerEndpoint != "" {
		return c.NormalizerEndpoint
	}
	if c.VertexProjectID == "" || c.VertexEndpointID == "" {
		return ""
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/endpoints/%s:generateContent",
		c.VertexLocation, c.VertexProjectID, c.VertexLocation, c.VertexEndpointID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("45s") or plain seconds ("45").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
