package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	StoreDriver string

	MongoURI                    string
	DatabaseName                string
	MongoServerSelectionTimeout time.Duration
	MongoTLSInsecure            bool // only honoured when the URI enables TLS

	PostgresURI string
	RedisURI    string // empty disables the Redis-backed limiter

	VerifyBaseURL string
	ListLimit     int64

	IssuerName    string
	IssuerTitle   string
	IssuerCompany string

	AdminUsername string
	AdminPassword string
	AdminFullName string

	AllowedOrigins []string // "*" allows any origin
	TrustProxy     bool     // take the client IP from X-Forwarded-For / X-Real-IP
	LogLevel       string
	LogFormat      string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8000"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),

		MongoURI:                    getEnv("MONGO_URL", getEnv("MONGODB_URI", "mongodb://localhost:27017")),
		DatabaseName:                getEnv("DB_NAME", "certificate_db"),
		MongoServerSelectionTimeout: getEnvDuration("MONGO_SERVER_SELECTION_TIMEOUT", 30*time.Second),
		MongoTLSInsecure:            getEnvBool("MONGO_TLS_INSECURE", false),

		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/certificates?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", ""),

		VerifyBaseURL: getEnv("VERIFY_BASE_URL", "http://localhost:3000"),
		ListLimit:     int64(getEnvInt("CERT_LIST_LIMIT", 1000)),

		IssuerName:    getEnv("ISSUER_NAME", "A Siddarth Reddy"),
		IssuerTitle:   getEnv("ISSUER_TITLE", "Chief Technology Officer"),
		IssuerCompany: getEnv("ISSUER_COMPANY", "DNOT Technologies"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "System Administrator"),

		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		TrustProxy:     getEnvBool("TRUSTED_PROXY", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
