// Package di wires the truelist command's dependencies with dig.
package di

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/truelist/truelist-go"
	"github.com/truelist/truelist-go/internal/config"
	"github.com/truelist/truelist-go/internal/logging"
	"github.com/truelist/truelist-go/internal/store"
)

// Flags holds the global command-line flags.
type Flags struct {
	ConfigFile string
	EnvFile    string
	Verbose    bool
	JSONLog    bool
}

// BuildContainer registers configuration, logging, the API client and the
// history store. Nothing is constructed until it is first invoked, so a
// command that never touches the API does not need an API key.
func BuildContainer(flags Flags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() Flags { return flags }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags Flags) (*config.Config, error) {
		if err := config.LoadEnvFile(flags.EnvFile); err != nil {
			return nil, err
		}
		return config.New(flags.ConfigFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(NewLogger); err != nil {
		return nil, err
	}

	// Register API client
	if err := container.Provide(NewClient); err != nil {
		return nil, err
	}

	// Register history store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
		return store.Open(context.Background(),
			cfg.GetString(config.KeyStoreDriver),
			cfg.GetString(config.KeyStoreDSN),
			logger.Named("store"),
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// NewLogger builds the logger from flags, falling back to the configured
// level and format.
func NewLogger(flags Flags, cfg *config.Config) (*zap.Logger, error) {
	level := cfg.GetString(config.KeyLoggingLevel)
	if flags.Verbose {
		level = "debug"
	}
	format := cfg.GetString(config.KeyLoggingFormat)
	if flags.JSONLog {
		format = "json"
	}
	return logging.New(level, format)
}

// ClientOptions converts configuration into client options.
func ClientOptions(cfg *config.Config, logger *zap.Logger) ([]truelist.Option, error) {
	timeout, err := cfg.GetDuration(config.KeyTimeout)
	if err != nil {
		return nil, err
	}
	schema, err := truelist.ParseSchema(cfg.GetString(config.KeySchema))
	if err != nil {
		return nil, err
	}

	return []truelist.Option{
		truelist.WithBaseURL(cfg.GetString(config.KeyBaseURL)),
		truelist.WithTimeout(timeout),
		truelist.WithMaxRetries(cfg.GetInt(config.KeyMaxRetries)),
		truelist.WithSchema(schema),
		truelist.WithLogger(logger.Named("truelist")),
	}, nil
}

// NewClient builds the API client from configuration.
func NewClient(cfg *config.Config, logger *zap.Logger) (*truelist.Client, error) {
	opts, err := ClientOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := truelist.New(cfg.GetString(config.KeyAPIKey), opts...)
	if errors.Is(err, truelist.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: set %s_API_KEY or api_key in the config file", err, config.EnvPrefix)
	}
	return client, err
}
