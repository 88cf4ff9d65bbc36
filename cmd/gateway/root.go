package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kisan-gateway/config"
	"kisan-gateway/logging"
)

var (
	debug   bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Kisan Saathi chat and text-to-speech gateway",
	Long:  `HTTP gateway between the farming web app and the Gemini / Murf APIs, with per-client rate limiting and chat logging.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging (or DEBUG=true)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// loadEnvFile carrega o .env se existir; variáveis já exportadas têm precedência.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func setupLogger(ctx context.Context, jsonOutput bool) (context.Context, func()) {
	return logging.NewContextWithLogger(ctx, logging.Options{
		Debug: debug || config.IsDebug(),
		JSON:  jsonOutput,
	})
}
