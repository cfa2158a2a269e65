package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	// TrustedProxies is a comma separated CIDR list allowed to set X-Forwarded-For.
	TrustedProxies string
}

// Generation configures the text-generation client.
type Generation struct {
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
}

// Telemetry configures trace export. An empty endpoint disables export.
type Telemetry struct {
	OTLPEndpoint string
	ServiceName  string
}

type Config struct {
	Server     Server
	Generation Generation
	Telemetry  Telemetry
}

// LoadEnv seeds the process environment from .env files (default ".env").
// Variables already set are not overridden and missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:           GetEnv("REGSCOPE_ADDR", ":8080"),
			Environment:    GetEnv("ENVIRONMENT", "development"),
			LogLevel:       GetEnv("LOG_LEVEL", "info"),
			RequestTimeout: GetDurationEnv("REQUEST_TIMEOUT", 90*time.Second),
			MaxBodyBytes:   int64(GetIntEnv("MAX_BODY_BYTES", 64<<10)),
			TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		},
		Generation: Generation{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			Model:          GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:        GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout:        GetDurationEnv("GENERATION_TIMEOUT", 60*time.Second),
			MaxConcurrency: GetIntEnv("GENERATION_MAX_CONCURRENCY", 8),
		},
		Telemetry: Telemetry{
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName:  GetEnv("OTEL_SERVICE_NAME", "regscope"),
		},
	}
}

// ErrMissingAPIKey is returned by Validate when production runs without a model API key.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required in production")

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	if c.Server.IsProduction() && c.Generation.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns a positive int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a positive duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}
