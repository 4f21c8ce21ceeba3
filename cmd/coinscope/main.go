package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CoinScope/internal/di"
	"CoinScope/pkg/config"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "coinscope",
		Short: "Crypto market analytics service",
		Long: `CoinScope serves price trends, volatility, support/resistance, performance
comparison and LSTM forecasts over stored OHLC history.

Examples:
  coinscope serve --config config/config.yaml
  coinscope analyze --coin BTC --timeframe week --forecast --horizon 5
  coinscope compare --coins BTC,ETH,SOL --timeframe month
  coinscope import --file data/btc.csv`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file path")

	rootCmd.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newCompareCmd(),
		newImportCmd(),
		newInitSchemaCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Wire DI: Initialize all dependencies
			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization failed: %w", err)
			}
			defer cleanup()

			// Run application (blocks until signal)
			return app.Run(context.Background())
		},
	}
}

func newInitSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Create the OHLC table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Store.InitSchema = true

			_, cleanup, err := di.InitializeStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Printf("schema ready: %s (%s)\n", cfg.Store.Table, cfg.Store.Driver)
			return nil
		},
	}
}
