package config

import (
	"os"
	"strings"
	"time"

	"github.com/dshills/larek/internal/api"
	"github.com/dshills/larek/internal/logging"
)

// Config is the resolved larek configuration.
type Config struct {
	API     APISection
	Logging LoggingSection
	Catalog CatalogSection
	Server  ServerSection
}

// APISection configures the backend client.
type APISection struct {
	BaseURL string
	CDNURL  string
	Timeout time.Duration
}

// LoggingSection configures the process logger.
type LoggingSection struct {
	Level      string
	JSON       bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// CatalogSection selects an offline catalog. When File is set the client
// reads products from it instead of the API.
type CatalogSection struct {
	File        string
	Watch       bool
	ReloadDelay time.Duration
}

// ServerSection configures larek-api.
type ServerSection struct {
	Addr            string
	BasePath        string
	Catalog         string
	Database        string
	ShutdownTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APISection{
			BaseURL: "https://larek-api.nomoreparties.co/api/weblarek",
			CDNURL:  "https://larek-api.nomoreparties.co/content/weblarek",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingSection{
			Level:      "info",
			MaxSizeMB:  64,
			MaxBackups: 7,
			MaxAgeDays: 7,
		},
		Catalog: CatalogSection{
			Watch:       true,
			ReloadDelay: 200 * time.Millisecond,
		},
		Server: ServerSection{
			Addr:            ":8080",
			BasePath:        "/api/weblarek",
			Catalog:         "catalog.json",
			Database:        "larek.db",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load resolves defaults, the file at path (skipped when path is empty)
// and the process environment, then validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Environ())
}

// LoadWithEnv is Load with an explicit environment in os.Environ form.
func LoadWithEnv(path string, environ []string) (*Config, error) {
	cfg := Default()

	if path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(values, true); err != nil {
			return nil, err
		}
	}

	if err := cfg.apply(envValues(EnvPrefix, environ), false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks required values and ranges. All failures are reported
// together as ValidationErrors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(path, msg string, value any, code ErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		add("api.baseUrl", "is required", c.API.BaseURL, ErrCodeRequiredMissing)
	}
	if c.API.Timeout <= 0 {
		add("api.timeout", "must be positive", c.API.Timeout, ErrCodeOutOfRange)
	}
	if !contains(logLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "must be one of "+strings.Join(logLevels, ", "), c.Logging.Level, ErrCodeInvalidEnum)
	}
	for path, n := range map[string]int{
		"logging.maxSizeMb":  c.Logging.MaxSizeMB,
		"logging.maxBackups": c.Logging.MaxBackups,
		"logging.maxAgeDays": c.Logging.MaxAgeDays,
	} {
		if n < 0 {
			add(path, "must not be negative", n, ErrCodeOutOfRange)
		}
	}
	if c.Catalog.ReloadDelay < 0 {
		add("catalog.reloadDelay", "must not be negative", c.Catalog.ReloadDelay, ErrCodeOutOfRange)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		add("server.addr", "is required", c.Server.Addr, ErrCodeRequiredMissing)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		add("server.basePath", "must start with /", c.Server.BasePath, ErrCodeOutOfRange)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// APIConfig returns the client configuration.
func (c *Config) APIConfig() api.Config {
	return api.Config{
		BaseURL: c.API.BaseURL,
		CDNURL:  c.API.CDNURL,
		Timeout: c.API.Timeout,
	}
}

// LoggerConfig returns the logger configuration. Output stays at the
// logging package default.
func (c *Config) LoggerConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(c.Logging.Level)
	lc.JSON = c.Logging.JSON
	lc.File = c.Logging.File
	lc.MaxSizeMB = c.Logging.MaxSizeMB
	lc.MaxBackups = c.Logging.MaxBackups
	lc.MaxAgeDays = c.Logging.MaxAgeDays
	return lc
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
