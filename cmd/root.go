package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/config"
	"github.com/abhisek/quizladder/internal/logging"
)

var (
	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quizladder",
	Short: "Adaptive-difficulty quiz tutor",
	Long: "QuizLadder asks questions at the learner's level and moves them up or down\n" +
		"an easy/medium/hard ladder after every answer, optionally advised by a trained\n" +
		"classifier and policy.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
	RunE: runPlay,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides QUIZLADDER_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZLADDER_DB env var)")
	addPlayFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(decisionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env, then the configuration, then builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.Store.Path = p
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg, logger = c, l
	return nil
}
