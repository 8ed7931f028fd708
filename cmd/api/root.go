package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mindscape-go/internal/config"
	"mindscape-go/internal/logger"
)

var cfgFile string

// rootCmd runs the API server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mindscape",
	Short: "MindScape wellness journaling backend",
	Long: `MindScape turns a recorded journal entry into a transcript, a sentiment
score, a distress level and a supportive reply that points to matching
support resources.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "yaml config file (defaults and environment are used when empty)")

	rootCmd.AddCommand(serveCmd, analyzeCmd, classifyCmd, catalogCmd)
}

// loadConfig reads .env, the config file and the environment, then builds the logger.
func loadConfig() (config.Config, *logger.Logger, error) {
	_ = godotenv.Load() // loads .env

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Environment), nil
}
