// Command truelist validates email addresses and inspects the Truelist
// account from the command line.
//
// Usage:
//
//	truelist [--config FILE] [--env FILE] [--verbose] [--json-log] <command> [flags] [args]
//
// Commands:
//
//	validate [--form] [--concurrency N] [--output text|json|yaml] [--record] EMAIL...
//	account  [--output text|json|yaml]
//	history  [--limit N] [--output text|json|yaml]
//
// Settings come from truelist.yaml, a .env file and TRUELIST_* environment
// variables; TRUELIST_API_KEY is required for validate and account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/truelist/truelist-go/internal/di"
)

const usage = "usage: truelist [--config FILE] [--env FILE] [--verbose] [--json-log] <validate|account|history> [flags] [args]"

// errValidationFailed is returned when at least one address could not be
// validated. The individual errors are already printed.
var errValidationFailed = errors.New("one or more validations failed")

// Config holds the streams used by the command.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config wired to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// exitFunc is os.Exit, replaceable in tests.
var exitFunc = os.Exit

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}

// run parses args (including the program name) and executes one command.
func run(args []string, cfg *Config) error {
	if len(args) < 1 {
		return errors.New(usage)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(cfg.Stderr)

	var flags di.Flags
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to a YAML config file")
	fs.StringVar(&flags.EnvFile, "env", "", "Path to a .env file (default .env if present)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable debug logging, including retries")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Write logs as JSON")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	container, err := di.BuildContainer(flags)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer container.Invoke(func(logger *zap.Logger) { _ = logger.Sync() })

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cmdErr error
	switch rest[0] {
	case "validate":
		cmdErr = runValidate(ctx, container, rest[1:], cfg)
	case "account":
		cmdErr = runAccount(ctx, container, rest[1:], cfg)
	case "history":
		cmdErr = runHistory(ctx, container, rest[1:], cfg)
	default:
		return fmt.Errorf("unknown command: %s\n%s", rest[0], usage)
	}

	return unwrapDig(cmdErr)
}

// unwrapDig strips dig's invocation context from constructor errors so the
// user sees the underlying cause.
func unwrapDig(err error) error {
	if err == nil {
		return nil
	}
	if cause := dig.RootCause(err); cause != nil {
		return cause
	}
	return err
}
