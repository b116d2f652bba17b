package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"marble-soccer/server/internal/app"
	"marble-soccer/server/internal/config"
)

var CLI struct {
	Config string `help:"Path to the TOML configuration file." short:"c" type:"existingfile" optional:""`
	Debug  bool   `help:"Whether to enable debug logging."`

	Serve struct {
	} `cmd:"" default:"1" help:"Start the match server."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	kong.Parse(&CLI,
		kong.Name("marble-soccer-server"),
		kong.Description("authoritative 1v1 marble soccer match server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		writeError(err)
	}

	logger := buildLogger(cfg.Logging, CLI.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil {
		writeError(err)
	}
}

func buildLogger(cfg config.LoggingConfig, debug bool) zerolog.Logger {
	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	return logger.Level(level)
}
