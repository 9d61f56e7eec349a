package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amrbasha900/mobile-endpoints/config"
	"github.com/amrbasha900/mobile-endpoints/logger"
)

var version = "1.0.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:          "mobile-endpoints",
	Short:        "Mobile invoicing API server",
	Long:         "HTTP endpoints backing the mobile invoicing app: invoice forms, supplier/customer/item lookups and user defaults.",
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.toml", "Path to the TOML config file")
}

// loadConfig loads .env, the config file and sets up logging. Shared by
// all subcommands.
func loadConfig() (*config.Config, error) {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Setup(logger.Config(cfg.Log)); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}
