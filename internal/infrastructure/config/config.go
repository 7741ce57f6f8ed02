package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for TaskHub Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
	Seed     SeedConfig     `yaml:"seed"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains settings for the optional change-event publisher.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT       JWTConfig       `yaml:"jwt"`
	Password  PasswordConfig  `yaml:"password"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// JWTConfig contains session token settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	// TokenTTL is the session token lifetime in minutes.
	TokenTTL int `yaml:"token_ttl"`
}

// PasswordConfig contains password hashing settings.
type PasswordConfig struct {
	// Cost is the bcrypt work factor.
	Cost int `yaml:"cost"`
	// MaxConcurrent bounds simultaneous hash operations. 0 means GOMAXPROCS.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// RateLimitConfig contains per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// Requests is the number of requests allowed per window.
	Requests int `yaml:"requests"`
	// WindowMinutes is the length of the rate-limit window.
	WindowMinutes int `yaml:"window_minutes"`
}

// SeedConfig controls first-boot account seeding.
type SeedConfig struct {
	AdminUsername    string `yaml:"admin_username"`
	OrganizationName string `yaml:"organization_name"`
}

// Bcrypt cost bounds accepted by golang.org/x/crypto/bcrypt.
const (
	minPasswordCost = 4
	maxPasswordCost = 31
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: TASKHUB_SECTION_KEY
// For example: TASKHUB_DATABASE_PATH, TASKHUB_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/taskhub.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "taskhub-core",
			},
			QoS:         1,
			TopicPrefix: "taskhub",
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8008,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				TokenTTL: 60,
			},
			Password: PasswordConfig{
				Cost: 12,
			},
			RateLimit: RateLimitConfig{
				Enabled:       true,
				Requests:      100,
				WindowMinutes: 15,
			},
		},
		Seed: SeedConfig{
			AdminUsername:    "admin",
			OrganizationName: "Default Organization",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKHUB_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("TASKHUB_MQTT_ENABLED"); v != "" {
		cfg.MQTT.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TASKHUB_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("TASKHUB_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("TASKHUB_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("TASKHUB_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("TASKHUB_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// Always override the JWT secret from the environment in production.
	if v := os.Getenv("TASKHUB_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Anyone holding the secret can mint Admin tokens.
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set TASKHUB_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if c.Security.JWT.TokenTTL < 1 {
		errs = append(errs, "security.jwt.token_ttl must be at least 1 minute")
	}

	if c.Security.Password.Cost < minPasswordCost || c.Security.Password.Cost > maxPasswordCost {
		errs = append(errs, "security.password.cost must be between 4 and 31")
	}

	if c.Security.RateLimit.Enabled {
		if c.Security.RateLimit.Requests < 1 {
			errs = append(errs, "security.rate_limit.requests must be positive")
		}
		if c.Security.RateLimit.WindowMinutes < 1 {
			errs = append(errs, "security.rate_limit.window_minutes must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}

// GetWindow returns the rate-limit window as a Duration.
func (r RateLimitConfig) GetWindow() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// GetTokenTTL returns the session token lifetime as a Duration.
func (c *Config) GetTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.TokenTTL) * time.Minute
}
