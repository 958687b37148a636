// Package config loads settings for the truelist command from defaults, an
// optional YAML file, .env files and TRUELIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyAPIKey        = "api_key"
	KeyBaseURL       = "base_url"
	KeyTimeout       = "timeout"
	KeyMaxRetries    = "max_retries"
	KeySchema        = "schema"
	KeyLoggingLevel  = "logging.level"
	KeyLoggingFormat = "logging.format"
	KeyStoreDriver   = "store.driver"
	KeyStoreDSN      = "store.dsn"
)

// EnvPrefix is prepended to every environment variable, so "store.dsn" is
// read from TRUELIST_STORE_DSN.
const EnvPrefix = "TRUELIST"

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// Config represents the command configuration.
type Config struct {
	v *viper.Viper
}

// New creates a configuration. When configFile is empty, truelist.yaml is
// looked up in the working directory and $HOME/.config/truelist; a missing
// file is not an error. A named file must exist.
func New(configFile string) (*Config, error) {
	v := NewEmptyViper()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("truelist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/truelist")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a configuration from an existing Viper instance.
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a Viper instance with defaults and environment
// binding but no config file.
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func setDefaults(v *viper.Viper) {
	// Client defaults
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyBaseURL, "https://api.truelist.io")
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyMaxRetries, 2)
	v.SetDefault(KeySchema, "standard")

	// Logging defaults
	v.SetDefault(KeyLoggingLevel, "warn")
	v.SetDefault(KeyLoggingFormat, "console")

	// History store defaults
	v.SetDefault(KeyStoreDriver, "sqlite3")
	v.SetDefault(KeyStoreDSN, "truelist-history.db")
}

// LoadEnvFile loads variables from path into the process environment
// without overriding ones already set. An empty path loads DefaultEnvFile
// if it exists; a named file must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetDuration gets a duration value such as "30s" from the configuration.
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Set overrides a value, typically from a command-line flag.
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// ConfigFileUsed returns the config file that was read, if any.
func (c *Config) ConfigFileUsed() string {
	return c.v.ConfigFileUsed()
}
