// Package config defines the global configuration structure for the MaizeCast
// service. Configuration is loaded once at process initialization and is
// immutable thereafter, keeping code strictly separated from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format fails startup immediately.
package config

import (
	"time"

	"maizecast/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to keep sensitive values out of logs.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Populated once during process
// initialization and never modified. Components receive only the config
// subsets they require.
type Config struct {
	// System metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"maizecast-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain configurations
	Server        ServerConfig
	Database      DatabaseConfig
	Predictor     PredictorConfig
	Engine        EngineConfig
	Export        ExportConfig
	AWS           AWSConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Build metadata (injected via ldflags, not env)
	Build BuildInfo
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	// Resolved from SSM or env
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// PredictorConfig holds the upstream model service connection settings.
// An empty BaseURL selects the built-in stub predictor, which is only
// acceptable for local development.
type PredictorConfig struct {
	BaseURL        string        `envconfig:"PREDICTOR_BASE_URL" validate:"omitempty,url"`
	APIKey         SecretString  `envconfig:"PREDICTOR_API_KEY"`
	Timeout        time.Duration `envconfig:"PREDICTOR_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"PREDICTOR_MAX_RETRIES" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"PREDICTOR_RETRY_BASE_DELAY" default:"200ms"`

	// PestBinarizeThreshold is the pest-risk percent at or above which the
	// predictor encoding reports pest presence. The model was trained on a
	// binary pest flag.
	PestBinarizeThreshold float64 `envconfig:"PREDICTOR_PEST_THRESHOLD" default:"50" validate:"gte=0,lte=100"`
}

// EngineConfig holds interpretation engine constants.
type EngineConfig struct {
	// MaxExpectedRange is the widest uncertainty interval, in tons/ha,
	// considered practically uninformative. The confidence formula floors
	// at intervals of this width. Heuristic, exposed here rather than
	// hard-coded because it depends on the predictor's typical uncertainty.
	MaxExpectedRange float64 `envconfig:"ENGINE_MAX_EXPECTED_RANGE" default:"2.0" validate:"gt=0"`
}

// ExportConfig holds history export and retention settings.
type ExportConfig struct {
	PageSize      int `envconfig:"EXPORT_PAGE_SIZE" default:"500" validate:"gt=0"`
	GzipLevel     int `envconfig:"EXPORT_GZIP_LEVEL" default:"6" validate:"gte=1,lte=9"`
	RetentionDays int `envconfig:"HISTORY_RETENTION_DAYS" default:"365" validate:"gt=0"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-west-1"`

	// Resource identifiers. Empty values disable the corresponding feature
	// (async export, archive upload) rather than failing startup.
	ArchiveBucket  string `envconfig:"ARCHIVE_BUCKET"`
	ExportQueueURL string `envconfig:"SQS_EXPORT_QUEUE" validate:"omitempty,url"`

	// LocalStack support (empty in prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMin    int      `envconfig:"RATE_LIMIT_PER_MIN" default:"120" validate:"gt=0"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"MaizeCast"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
