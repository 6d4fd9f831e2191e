package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Render      RenderConfig
	Tracing     TracingConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Port            int
	Host            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	SSL             SSLConfig
}

type SSLConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig points at the bucket holding uploaded listing images
type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string // for S3 compatible stores such as MinIO
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	PresignTTL     time.Duration
}

type RenderConfig struct {
	ChromePath       string
	Timeout          time.Duration
	ImageConcurrency int
	PlaceholderImage string
	StaticMapURL     string
	StaticMapKey     string
	Currency         string
}

type TracingConfig struct {
	Enabled             bool
	ServiceName         string
	SamplingProbability float64
	Environment         string

	// "jaeger", "zipkin", "stackdriver", "datadog", "xray" or "none"
	TraceExporter string

	JaegerEndpoint       string
	ZipkinEndpoint       string
	StackdriverProjectID string
	DatadogAgentAddress  string
	DatadogAPIKey        string
	XRayRegion           string

	// General agent endpoint, used when an exporter specific address is empty
	AgentEndpoint string

	// "prometheus", "stackdriver", "datadog", "none" or a comma separated list
	MetricsExporter string
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // optional environment file, e.g. ".env"
}

// Load loads the configuration, reading .env when present
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "listingdeck")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	v.SetDefault("STORAGE_REGION", "eu-west-1")
	v.SetDefault("STORAGE_FORCE_PATH_STYLE", false)
	v.SetDefault("STORAGE_PRESIGN_TTL", "15m")

	v.SetDefault("RENDER_TIMEOUT", "60s")
	v.SetDefault("RENDER_IMAGE_CONCURRENCY", 8)
	v.SetDefault("RENDER_PLACEHOLDER_IMAGE", "https://placehold.co/800x600?text=Image+unavailable")
	v.SetDefault("RENDER_STATIC_MAP_URL", "https://maps.googleapis.com/maps/api/staticmap")
	v.SetDefault("RENDER_CURRENCY", "€")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "listingdeck-api")
	v.SetDefault("TRACING_SAMPLING_PROBABILITY", 0.1)
	v.SetDefault("TRACING_TRACE_EXPORTER", "none")
	v.SetDefault("TRACING_JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	v.SetDefault("TRACING_ZIPKIN_ENDPOINT", "http://localhost:9411/api/v2/spans")
	v.SetDefault("TRACING_STACKDRIVER_PROJECT_ID", "")
	v.SetDefault("TRACING_DATADOG_AGENT_ADDRESS", "localhost:8126")
	v.SetDefault("TRACING_DATADOG_API_KEY", "")
	v.SetDefault("TRACING_XRAY_REGION", "us-west-2")
	v.SetDefault("TRACING_AGENT_ENDPOINT", "localhost:8126")
	v.SetDefault("TRACING_METRICS_EXPORTER", "none")

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}
		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// a missing file is fine
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			CORSOrigins:     splitList(v.GetString("CORS_ALLOW_ORIGINS")),
			SSL: SSLConfig{
				Enabled:  v.GetBool("SSL_ENABLED"),
				CertFile: v.GetString("SSL_CERT_FILE"),
				KeyFile:  v.GetString("SSL_KEY_FILE"),
			},
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Storage: StorageConfig{
			Bucket:         v.GetString("STORAGE_BUCKET"),
			Region:         v.GetString("STORAGE_REGION"),
			Endpoint:       v.GetString("STORAGE_ENDPOINT"),
			AccessKey:      v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:      v.GetString("STORAGE_SECRET_KEY"),
			ForcePathStyle: v.GetBool("STORAGE_FORCE_PATH_STYLE"),
			PresignTTL:     v.GetDuration("STORAGE_PRESIGN_TTL"),
		},
		Render: RenderConfig{
			ChromePath:       v.GetString("CHROME_PATH"),
			Timeout:          v.GetDuration("RENDER_TIMEOUT"),
			ImageConcurrency: v.GetInt("RENDER_IMAGE_CONCURRENCY"),
			PlaceholderImage: v.GetString("RENDER_PLACEHOLDER_IMAGE"),
			StaticMapURL:     v.GetString("RENDER_STATIC_MAP_URL"),
			StaticMapKey:     v.GetString("RENDER_STATIC_MAP_KEY"),
			Currency:         v.GetString("RENDER_CURRENCY"),
		},
		Tracing: TracingConfig{
			Enabled:             v.GetBool("TRACING_ENABLED"),
			ServiceName:         v.GetString("TRACING_SERVICE_NAME"),
			SamplingProbability: v.GetFloat64("TRACING_SAMPLING_PROBABILITY"),
			Environment:         v.GetString("ENVIRONMENT"),

			TraceExporter:        v.GetString("TRACING_TRACE_EXPORTER"),
			JaegerEndpoint:       v.GetString("TRACING_JAEGER_ENDPOINT"),
			ZipkinEndpoint:       v.GetString("TRACING_ZIPKIN_ENDPOINT"),
			StackdriverProjectID: v.GetString("TRACING_STACKDRIVER_PROJECT_ID"),
			DatadogAgentAddress:  v.GetString("TRACING_DATADOG_AGENT_ADDRESS"),
			DatadogAPIKey:        v.GetString("TRACING_DATADOG_API_KEY"),
			XRayRegion:           v.GetString("TRACING_XRAY_REGION"),
			AgentEndpoint:        v.GetString("TRACING_AGENT_ENDPOINT"),

			MetricsExporter: v.GetString("TRACING_METRICS_EXPORTER"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT must be positive")
	}
	if c.Render.ImageConcurrency < 1 {
		return fmt.Errorf("RENDER_IMAGE_CONCURRENCY must be at least 1, got %d", c.Render.ImageConcurrency)
	}
	if c.Storage.PresignTTL <= 0 {
		return fmt.Errorf("STORAGE_PRESIGN_TTL must be positive")
	}
	if c.Tracing.SamplingProbability < 0 || c.Tracing.SamplingProbability > 1 {
		return fmt.Errorf("TRACING_SAMPLING_PROBABILITY must be between 0 and 1")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasStorage reports whether a bucket is configured for image references
func (c *Config) HasStorage() bool {
	return c.Storage.Bucket != ""
}
