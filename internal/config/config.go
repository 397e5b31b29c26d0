// Package config loads server configuration from defaults, an optional
// YAML or TOML file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable, e.g. MCP_PORT. The bare
// names (PORT, HOST, DEBUG, ...) are honored as fallbacks.
const EnvPrefix = "MCP"

// Config contains server configuration values such as listen address,
// logging and transport options.
type Config struct {
	Host  string `yaml:"host" toml:"host" envconfig:"HOST"`
	Port  int    `yaml:"port" toml:"port" envconfig:"PORT"`
	Debug bool   `yaml:"debug" toml:"debug" envconfig:"DEBUG"`

	LogLevel  string `yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT"`

	// PublicURL is the externally reachable MCP endpoint reported by
	// get_server_info. Derived from host and port when empty.
	PublicURL      string   `yaml:"public_url" toml:"public_url" envconfig:"PUBLIC_URL"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	MetricsEnabled bool     `yaml:"metrics_enabled" toml:"metrics_enabled" envconfig:"METRICS_ENABLED"`

	RequestTimeout    time.Duration `yaml:"-" toml:"-" envconfig:"REQUEST_TIMEOUT"`
	RequestTimeoutRaw string        `yaml:"request_timeout" toml:"request_timeout" ignored:"true"`

	TLSCertFile string `yaml:"tls_cert_file" toml:"tls_cert_file" envconfig:"TLS_CERT_FILE"`
	TLSKeyFile  string `yaml:"tls_key_file" toml:"tls_key_file" envconfig:"TLS_KEY_FILE"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		LogLevel:       "info",
		LogFormat:      "text",
		AllowedOrigins: []string{"*"},
		MetricsEnabled: true,
		RequestTimeout: 60 * time.Second,
	}
}

// Load builds a Config. path may be empty, in which case only defaults and
// the environment apply. Files ending in .toml are parsed as TOML, anything
// else as YAML. ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.RequestTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.RequestTimeoutRaw, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.RequestTimeout <= 0 {
		result = multierror.Append(result, errors.New("request_timeout must be positive"))
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		result = multierror.Append(result, errors.New("tls_cert_file and tls_key_file must be set together"))
	}

	return result.ErrorOrNil()
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TLS reports whether the server should terminate TLS itself.
func (c *Config) TLS() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Endpoint is the MCP URL advertised to clients.
func (c *Config) Endpoint() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	scheme := "http"
	if c.TLS() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/mcp", scheme, c.Addr())
}
