package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"droneops-dispatch/internal/config"
	"droneops-dispatch/internal/logging"
)

var (
	configPath string
	schemaPath string
	envFile    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "droneops-dispatch",
	Short:         "Drone delivery dispatch and simulation",
	Long:          "droneops-dispatch schedules drone deliveries, runs the flight simulation clock and serves the dispatch API.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		c, err := loadConfig(configPath, schemaPath)
		if err != nil {
			return err
		}
		cfg = c
		if cmd.Name() != monitorCmd.Name() {
			l := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
			slog.SetDefault(l)
			cmd.SetContext(logging.NewContext(cmd.Context(), l))
		}
		return nil
	},
}

// loadConfig reads path when it exists and falls back to defaults otherwise.
func loadConfig(path, schema string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		c := config.Default()
		if err := c.ApplyEnv(); err != nil {
			return nil, err
		}
		return c, nil
	}
	return config.Load(path, schema)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/dispatch.yaml", "Path to dispatch configuration YAML")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "schemas/dispatch.cue", "Path to CUE schema file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}
