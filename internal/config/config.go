// Package config loads the formimport YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/target"
)

const (
	// DefaultAPIKeyEnv is read when remote.api_key_env is not set.
	DefaultAPIKeyEnv = "FORMIMPORT_API_KEY"

	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	defaultTimeout     = 15 * time.Second
	defaultMaxAttempts = 3
	defaultStorePath   = "formimport.db"
)

type Config struct {
	Remote RemoteConfig `yaml:"remote"`
	Store  StoreConfig  `yaml:"store"`
	Import ImportConfig `yaml:"import"`
	Log    LogConfig    `yaml:"log"`
}

// RemoteConfig points at the lead-capture service. Dir selects an offline
// directory of form records instead of the HTTP API.
type RemoteConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	APIKeyEnv    string        `yaml:"api_key_env"`
	APIKeyHeader string        `yaml:"api_key_header"`
	Dir          string        `yaml:"dir"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type ImportConfig struct {
	DefaultTarget string `yaml:"default_target"`
	Strictness    string `yaml:"strictness"`
	AdminEmail    string `yaml:"admin_email"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Env looks up environment variables; os.LookupEnv in production.
type Env func(key string) (string, bool)

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Read loads path, applies defaults and environment overrides, then
// validates. An empty path yields the defaults.
func Read(path string) (Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		return Parse(nil, os.LookupEnv)
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return Config{}, &Error{Code: ErrorCodeReadFailed, Path: resolved, Err: err}
	}
	cfg, err := Parse(raw, os.LookupEnv)
	if err != nil {
		var typed *Error
		if errors.As(err, &typed) {
			typed.Path = resolved
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes raw YAML. Unknown keys are rejected.
func Parse(raw []byte, env Env) (Config, error) {
	var cfg Config
	if len(strings.TrimSpace(string(raw))) > 0 {
		decoder := yaml.NewDecoder(strings.NewReader(string(raw)))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, &Error{Code: ErrorCodeParseFailed, Err: err}
		}
	}
	cfg.applyDefaults()
	cfg.applyEnv(env)
	if err := cfg.Validate(); err != nil {
		return Config{}, &Error{Code: ErrorCodeValidationFailed, Err: err}
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Remote.APIKeyEnv == "" {
		c.Remote.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = defaultTimeout
	}
	if c.Remote.MaxAttempts == 0 {
		c.Remote.MaxAttempts = defaultMaxAttempts
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Import.DefaultTarget == "" {
		c.Import.DefaultTarget = string(target.A)
	}
	if c.Import.Strictness == "" {
		c.Import.Strictness = string(duplicate.Loose)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv(env Env) {
	if env == nil {
		return
	}
	if value, ok := env(c.Remote.APIKeyEnv); ok && strings.TrimSpace(value) != "" {
		c.Remote.APIKey = strings.TrimSpace(value)
	}
}

// Validate reports every problem at once as a *ValidationError.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Remote.BaseURL != "" {
		parsed, err := url.Parse(c.Remote.BaseURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			add("remote.base_url must be an absolute http(s) URL")
		}
		if strings.TrimSpace(c.Remote.APIKey) == "" {
			add("remote.api_key is required with remote.base_url (set it or export %s)", c.Remote.APIKeyEnv)
		}
		if c.Remote.Dir != "" {
			add("remote.base_url and remote.dir are mutually exclusive")
		}
	}
	if c.Remote.Timeout < 0 {
		add("remote.timeout must not be negative")
	}
	if c.Remote.MaxAttempts < 0 {
		add("remote.max_attempts must not be negative")
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			add("store.path is required for the sqlite driver")
		}
	default:
		add("store.driver %q is not supported (use sqlite or memory)", c.Store.Driver)
	}

	if _, err := target.Parse(c.Import.DefaultTarget); err != nil {
		add("import.default_target %q is not supported (use A or B)", c.Import.DefaultTarget)
	}
	switch duplicate.Strictness(strings.ToLower(c.Import.Strictness)) {
	case duplicate.Loose, duplicate.Strict:
	default:
		add("import.strictness %q is not supported (use loose or strict)", c.Import.Strictness)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level %q is not supported", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		add("log.format %q is not supported (use text or json)", c.Log.Format)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Target returns the parsed default target.
func (c Config) Target() target.Target {
	tgt, err := target.Parse(c.Import.DefaultTarget)
	if err != nil {
		return target.A
	}
	return tgt
}

// HasRemote reports whether a remote source is configured.
func (c Config) HasRemote() bool {
	return c.Remote.BaseURL != "" || c.Remote.Dir != ""
}
