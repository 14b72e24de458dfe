package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/subosito/gotenv"
)

// Error status modes.
const (
	ErrorModeCompat = "compat"
	ErrorModeStrict = "strict"
)

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8000"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Env             string   `envconfig:"ENV" default:"dev"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	ErrorStatusMode string   `envconfig:"ERROR_STATUS_MODE" default:"compat"`
	MaxUploadBytes  int64    `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	RateLimitRPS    float64  `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10"`

	APIKey           string        `envconfig:"API_KEY"`
	LLMProvider      string        `envconfig:"LLM_PROVIDER" default:"gemini"`
	LLMModel         string        `envconfig:"LLM_MODEL"`
	LLMBaseURL       string        `envconfig:"LLM_BASE_URL"`
	LLMTimeout       time.Duration `envconfig:"LLM_TIMEOUT" default:"0"`
	LLMRetryAttempts int           `envconfig:"LLM_RETRY_ATTEMPTS" default:"0"`

	ArchiveStore  string `envconfig:"ARCHIVE_STORE" default:"none"`
	LocalStoreDir string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	AWSRegion     string `envconfig:"AWS_REGION"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Prefix      string `envconfig:"S3_PREFIX"`
	SSEKMSKeyID   string `envconfig:"SSE_KMS_KEY_ID"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// HistoryMemoryLimit caps the in-memory history used without DATABASE_URL.
	HistoryMemoryLimit int `envconfig:"HISTORY_MEMORY_LIMIT" default:"1000"`

	ExecutorInterpreter    string        `envconfig:"EXECUTOR_INTERPRETER" default:"python3"`
	ExecutorTimeout        time.Duration `envconfig:"EXECUTOR_TIMEOUT" default:"60s"`
	ExecutorMaxOutputBytes int           `envconfig:"EXECUTOR_MAX_OUTPUT_BYTES" default:"1048576"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience. Existing
	// environment variables win.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = gotenv.Load(path)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.Normalize()

	if cfg.Env == "production" && strings.TrimSpace(cfg.APIKey) == "" {
		log.Printf("API_KEY is not set; analysis requests will fail")
	}
	return cfg, nil
}

// MustLoad is Load for binaries that cannot start without configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

// Normalize canonicalises enum-like fields and fills provider defaults.
// It is safe to call on a hand-built Config (tests do).
func (c *Config) Normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ArchiveStore = normalizeStoreType(c.ArchiveStore)
	c.ErrorStatusMode = normalizeErrorMode(c.ErrorStatusMode)
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == "" {
		c.LLMProvider = "gemini"
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		c.LLMModel = DefaultModel(c.LLMProvider)
	}
	c.CORSAllowOrigin = splitAndTrim(strings.Join(c.CORSAllowOrigin, ","))
	if len(c.CORSAllowOrigin) == 0 {
		c.CORSAllowOrigin = []string{"*"}
	}
	if c.Port == "" {
		c.Port = "8000"
	}
}

// DefaultModel returns the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	default:
		return "gemini-2.0-flash-lite"
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "none"
	}
}

func normalizeErrorMode(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ErrorModeStrict:
		return ErrorModeStrict
	default:
		return ErrorModeCompat
	}
}
