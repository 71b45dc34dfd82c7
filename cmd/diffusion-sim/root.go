package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diffusion-sim/internal/config"
	"diffusion-sim/internal/logging"
)

var (
	configPath string
	schemaPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "diffusion-sim",
	Short:        "Policy diffusion simulation toolkit",
	Long:         "diffusion-sim models how a policy spreads across an influence network of countries, year by year.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			level = config.DefaultLogLevel
		}
		l := logging.New(level, os.Stderr)
		cmd.SetContext(logging.NewContext(cmd.Context(), l))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns the built-in defaults when no config file is given.
// The log level from the file applies unless --log-level was set.
func loadConfig(cmd *cobra.Command) (*config.SimulationConfig, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath, schemaPath); err != nil {
			return nil, err
		}
	}
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		cmd.SetContext(logging.NewContext(cmd.Context(), logging.New(cfg.LogLevel, os.Stderr)))
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to simulation configuration YAML (defaults to the built-in configuration)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (defaults to the embedded schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(dashboardCmd)
}
