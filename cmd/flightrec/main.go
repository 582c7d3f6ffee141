package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yegors/flightrec/internal/config"
	"github.com/yegors/flightrec/pkg/logger"
)

// Global options
type options struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	opts    options
	cfg     *config.Config
	log     *logger.Logger
	rootCmd *cobra.Command
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "flightrec",
		Short: "Decode and store IGC flight recorder logs",
		Long: `flightrec decodes IGC flight recorder files line by line, summarises
the declared task and fixes, and can serve a small HTTP API that stores
decoded flights in SQLite.

Examples:
  flightrec decode 2018-07-23-XXX-ABC-01.igc
  flightrec decode --format lines --charset latin1 flight.igc
  flightrec serve --config flightrec.toml
  flightrec list --limit 10`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(opts)
			if err != nil {
				return err
			}
			log, err = logger.New(logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "override log format (json, console)")

	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig reads the config file when one is given and applies flag overrides
func loadConfig(o options) (*config.Config, error) {
	c := config.Default()
	if o.ConfigFile != "" {
		var err error
		if c, err = config.Load(o.ConfigFile); err != nil {
			return nil, err
		}
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
