package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"quizzy/internal/config"
	"quizzy/internal/logger"
)

var (
	port       string
	configPath string
	profile    string
	logLevel   string
	logFormat  string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:           "quizzy",
		Short:         "JavaScript interview quiz: play, track stats, share signed scores",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&port, "port", "", "port to listen on (overrides config)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&profile, "profile", "", "profile whose data to use (overrides config)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or pretty (overrides config)")

	cmd.AddCommand(NewStartCmd(&configPath, &port))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewValidateCmd(&configPath))
	cmd.AddCommand(NewQuestionsCmd(&configPath))
	cmd.AddCommand(NewStatsCmd(&configPath))
	cmd.AddCommand(NewShareCmd(&configPath))
	return cmd
}

// loadConfig reads the config and applies the persistent flag overrides.
func loadConfig(path string) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if profile != "" {
		cfg.Storage.Profile = profile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, logger.Setup(cfg.Log.Level, cfg.Log.Format), nil
}
