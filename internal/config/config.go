package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/WailSalutem-Health-Care/frontdesk-service/internal/telemetry"
)

const (
	devSessionSecret   = "frontdesk-dev-secret"
	minSessionSecret   = 32
	defaultServiceName = "frontdesk-service"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	PermissionsFile string        `mapstructure:"PERMISSIONS_FILE"`
	SeedFile        string        `mapstructure:"SEED_FILE"`
	RabbitMQURL     string        `mapstructure:"RABBITMQ_URL"`
	TransitionDelay time.Duration `mapstructure:"TRANSITION_DELAY"`

	OTelEnabled         bool          `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint        string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName     string        `mapstructure:"OTEL_SERVICE_NAME"`
	OTelMetricsInterval time.Duration `mapstructure:"OTEL_METRICS_EXPORT_INTERVAL"`
	OTelTracesSampler   string        `mapstructure:"OTEL_TRACES_SAMPLER"`
}

var keys = []string{
	"PORT", "ENV", "CORS_ORIGINS", "SESSION_SECRET", "SESSION_TTL",
	"PERMISSIONS_FILE", "SEED_FILE", "RABBITMQ_URL", "TRANSITION_DELAY",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	"OTEL_METRICS_EXPORT_INTERVAL", "OTEL_TRACES_SAMPLER",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("TRANSITION_DELAY", "600ms")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SERVICE_NAME", defaultServiceName)
	v.SetDefault("OTEL_METRICS_EXPORT_INTERVAL", "30s")
	v.SetDefault("OTEL_TRACES_SAMPLER", "parentbased_always_on")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside
// development the session secret must be set explicitly and long enough
// for HS256.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.TransitionDelay < 0 {
		return fmt.Errorf("TRANSITION_DELAY must not be negative, got %s", c.TransitionDelay)
	}
	if !c.IsDev() {
		if c.SessionSecret == devSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set when ENV=%q", c.Env)
		}
		if len(c.SessionSecret) < minSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters, got %d", minSessionSecret, len(c.SessionSecret))
		}
	}
	if c.OTelEnabled && c.OTelEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is true")
	}
	return nil
}

// Telemetry builds the OpenTelemetry settings for this deployment.
func (c *Config) Telemetry(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:          c.OTelEnabled,
		ServiceName:      c.OTelServiceName,
		ServiceNamespace: "wailsalutem",
		ServiceVersion:   version,
		Environment:      c.Env,
		OTLPEndpoint:     c.OTelEndpoint,
		TracesSampler:    c.OTelTracesSampler,
		MetricsInterval:  c.OTelMetricsInterval,
	}
}
