// Package cmd holds the fxsentinel CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"FXSentinel/internal/config"
	"FXSentinel/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fxsentinel",
	Short: "Forex risk dashboard: ATR sizing, trend signal and news gate",
	Long: `FXSentinel evaluates a currency pair: ATR-based stop-loss and take-profit
distances, a trend/momentum master signal, the rollover/weekend trading window
and nearby high-impact news.

Commands:
    serve    HTTP API, optional Telegram bot and alert scheduler
    check    one-shot evaluation printed to stdout`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
}

func initConfig() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	var file *logger.FileConfig
	if cfg.Logging.File != "" {
		file = &logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			MaxBackups: cfg.Logging.MaxBackups,
		}
	}
	return logger.Init(level, cfg.Logging.Environment, file)
}
