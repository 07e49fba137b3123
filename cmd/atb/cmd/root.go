package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/atb/config"
)

var rootCmd = &cobra.Command{
	Use:   "atb",
	Short: "Simulated trading bot dashboard engine",
	Long: `ATB runs a fleet of simulated trading bots against synthetic market data.

It provides tools for:
  - Running the simulation headless, in real time or on a virtual clock
  - Serving the dashboard over HTTP with a websocket snapshot stream
  - Exporting the full state as JSON or YAML
  - Reviewing market performance
  - Querying the SQLite trade and ledger journal`,
	SilenceUsage: true,
}

var (
	configPath string
	envFile    string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file applied before ATB_* overrides")
}

// loadConfig reads the config file (or defaults), applies the dotenv file
// and ATB_* variables, and validates the result.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
