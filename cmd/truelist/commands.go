package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/truelist/truelist-go"
	"github.com/truelist/truelist-go/internal/store"
)

const defaultConcurrency = 4

// validateFunc validates one address.
type validateFunc func(ctx context.Context, email string) (truelist.ValidationResult, error)

// outcome is the result of validating one address.
type outcome struct {
	Email     string
	Result    truelist.ValidationResult
	CheckedAt time.Time
	Err       error
}

func runValidate(ctx context.Context, container *dig.Container, args []string, cfg *Config) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	form := fs.Bool("form", false, "Use the form validation endpoint")
	concurrency := fs.Int("concurrency", defaultConcurrency, "Maximum concurrent requests")
	output := fs.String("output", "text", "Output format: text, json or yaml")
	record := fs.Bool("record", false, "Save results to the history store")

	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}
	emails := fs.Args()
	if len(emails) == 0 {
		return errors.New("usage: truelist validate [--form] [--concurrency N] [--output FORMAT] [--record] EMAIL...")
	}

	var outcomes []outcome
	err = container.Invoke(func(client *truelist.Client, logger *zap.Logger) error {
		defer client.Close()

		fn := client.Email().Validate
		if *form {
			fn = client.Email().FormValidate
		}

		var err error
		outcomes, err = validateAll(ctx, fn, emails, *concurrency)
		if err != nil {
			return err
		}
		logger.Debug("validated addresses", zap.Int("count", len(outcomes)))
		return nil
	})
	if err != nil {
		return err
	}

	if *record {
		if err := container.Invoke(func(s *store.Store) error {
			defer s.Close()
			return recordOutcomes(ctx, s, outcomes)
		}); err != nil {
			return err
		}
	}

	if err := writeOutcomes(cfg.Stdout, format, outcomes); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			return errValidationFailed
		}
	}
	return nil
}

// validateAll validates every address with at most limit requests in flight.
// Outcomes are returned in input order. A failed address does not stop the
// others; only cancellation of ctx does.
func validateAll(ctx context.Context, validate validateFunc, emails []string, limit int) ([]outcome, error) {
	if limit < 1 {
		limit = 1
	}

	outcomes := make([]outcome, len(emails))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, email := range emails {
		g.Go(func() error {
			result, err := validate(gctx, email)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = outcome{
				Email:     email,
				Result:    result,
				CheckedAt: time.Now(),
				Err:       err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func recordOutcomes(ctx context.Context, s *store.Store, outcomes []outcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		if _, err := s.Record(ctx, o.Result, o.CheckedAt); err != nil {
			return fmt.Errorf("record %s: %w", o.Email, err)
		}
	}
	return nil
}

func runAccount(ctx context.Context, container *dig.Container, args []string, cfg *Config) error {
	fs := flag.NewFlagSet("account", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	output := fs.String("output", "text", "Output format: text, json or yaml")

	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}

	return container.Invoke(func(client *truelist.Client) error {
		return client.Use(func(c *truelist.Client) error {
			info, err := c.Account().Get(ctx)
			if err != nil {
				return fmt.Errorf("get account: %w", err)
			}
			return writeAccount(cfg.Stdout, format, info)
		})
	})
}

func runHistory(ctx context.Context, container *dig.Container, args []string, cfg *Config) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)
	limit := fs.Int("limit", 20, "Number of entries to show")
	output := fs.String("output", "text", "Output format: text, json or yaml")

	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := parseFormat(*output)
	if err != nil {
		return err
	}

	return container.Invoke(func(s *store.Store) error {
		defer s.Close()

		entries, err := s.Recent(ctx, *limit)
		if err != nil {
			return err
		}

		outcomes := make([]outcome, len(entries))
		for i, e := range entries {
			outcomes[i] = outcome{Email: e.Result.Email, Result: e.Result, CheckedAt: e.CheckedAt}
		}
		return writeOutcomes(cfg.Stdout, format, outcomes)
	})
}
