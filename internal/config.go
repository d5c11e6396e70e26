package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Identity      IdentityConfig      `mapstructure:"identity" validate:"required"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" envconfig:"SERVER_PORT" default:"8080"`
	BaseURL           string        `mapstructure:"base_url" envconfig:"SERVER_BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"0"`
}

// DatabaseConfig points at the document database holding all Command
// Center collections.
type DatabaseConfig struct {
	URI            string        `mapstructure:"uri" envconfig:"DATABASE_URI" validate:"required"`
	Name           string        `mapstructure:"name" envconfig:"DATABASE_NAME" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" envconfig:"DATABASE_CONNECT_TIMEOUT" default:"10s"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" envconfig:"DATABASE_QUERY_TIMEOUT" default:"5s"`
}

// RedisConfig backs the total-count cache. An empty Addr disables caching
// and counts are recomputed from the store on every subscription setup.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" envconfig:"REDIS_ADDR"`
	CountTTL time.Duration `mapstructure:"count_ttl" envconfig:"REDIS_COUNT_TTL" default:"5m"`
}

// IdentityConfig describes the external multi-tenant identity provider.
type IdentityConfig struct {
	BaseURL  string        `mapstructure:"base_url" envconfig:"IDENTITY_BASE_URL" validate:"required,url"`
	APIKey   string        `mapstructure:"api_key" envconfig:"IDENTITY_API_KEY" validate:"required"`
	TenantID string        `mapstructure:"tenant_id" envconfig:"IDENTITY_TENANT_ID" default:"command-center-rep5o"`
	Timeout  time.Duration `mapstructure:"timeout" envconfig:"IDENTITY_TIMEOUT" default:"10s"`
}

type SecurityConfig struct {
	SessionSecret       string        `mapstructure:"session_secret" envconfig:"SECURITY_SESSION_SECRET" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" envconfig:"SECURITY_ACCESS_TOKEN_DURATION" default:"15m" validate:"required,min=1m,max=24h"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOGGING_LEVEL" default:"info" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" envconfig:"LOGGING_FORMAT" default:"text" validate:"required,oneof=json text"`
}

// LoadConfigFromEnv builds the configuration from environment variables,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("cc", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}

// ----------------- VALIDATION -----------------

var validate = validator.New()

func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		errs = append(errs, err.Error())
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}
