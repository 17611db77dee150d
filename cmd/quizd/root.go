package main

import (
	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-quiz/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "quizd",
	Short:         "Multiple-choice quiz server",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default: ./.env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(hashCmd)
}

// loadConfig reads --env-file (or .env) and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		files = append(files, p)
	}
	cfg := config.Load(files...)
	if dir, _ := cmd.Flags().GetString("quiz-dir"); dir != "" {
		cfg.QuizDir = dir
	}
	return cfg, cfg.Validate()
}
