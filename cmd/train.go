package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/environment"
	"github.com/abhisek/quizladder/internal/model"
	"github.com/abhisek/quizladder/internal/training"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the advisory models against the simulated learner",
}

var trainPolicyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Train the difficulty policy with Q-learning",
	RunE: func(cmd *cobra.Command, args []string) error {
		policyCfg := cfg.Training.Policy
		if cmd.Flags().Changed("timesteps") {
			policyCfg.Timesteps, _ = cmd.Flags().GetInt("timesteps")
		}
		out := outputPath(cmd, cfg.Models.Policy)

		trainer, closeFn, err := newTrainer(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := trainer.TrainPolicy(cmd.Context(), policyCfg)
		if err != nil {
			return err
		}
		if err := res.Artifact.Save(out); err != nil {
			return err
		}

		fmt.Printf("Run:       %s\n", trainer.RunID())
		fmt.Printf("Timesteps: %d over %d episodes\n", policyCfg.Timesteps, len(res.Episodes))
		fmt.Printf("Reward:    %.2f average over the last %d episodes\n", tailAverage(res.Episodes, 10), min(10, len(res.Episodes)))
		fmt.Printf("Saved:     %s\n", out)
		return nil
	},
}

var trainClassifierCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Train the difficulty classifier on simulated sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		clsCfg := cfg.Training.Classifier
		if cmd.Flags().Changed("episodes") {
			clsCfg.Episodes, _ = cmd.Flags().GetInt("episodes")
		}
		out := outputPath(cmd, cfg.Models.Classifier)

		trainer, closeFn, err := newTrainer(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := trainer.TrainClassifier(cmd.Context(), clsCfg)
		if err != nil {
			return err
		}
		if err := res.Artifact.Save(out); err != nil {
			return err
		}

		fmt.Printf("Run:      %s\n", trainer.RunID())
		fmt.Printf("Samples:  %d\n", res.Samples)
		fmt.Printf("Accuracy: %.1f%% on training data\n", res.Accuracy*100)
		fmt.Printf("Saved:    %s\n", out)
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the trained policy against the simulated learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		episodes := cfg.Training.EvalEpisodes
		if cmd.Flags().Changed("episodes") {
			episodes, _ = cmd.Flags().GetInt("episodes")
		}
		path, _ := cmd.Flags().GetString("model")
		if path == "" {
			path = cfg.Models.Policy
		}

		policy, err := model.LoadPolicy(path)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}

		trainer, closeFn, err := newTrainer(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		eval, err := trainer.Evaluate(cmd.Context(), policy, episodes)
		if err != nil {
			return err
		}

		for _, ep := range eval.Episodes {
			fmt.Printf("Episode %-3d  steps %-3d  reward %7.2f\n", ep.Episode, ep.Steps, ep.TotalReward)
		}
		fmt.Printf("Average reward over %d episodes: %.2f\n", len(eval.Episodes), eval.AverageReward)
		return nil
	},
}

func init() {
	trainCmd.PersistentFlags().StringP("out", "o", "", "Where to save the artifact (default from config)")
	trainCmd.PersistentFlags().Bool("no-record", false, "Do not record episodes in the database")
	trainPolicyCmd.Flags().Int("timesteps", 0, "Environment steps to train for (default from config)")
	trainClassifierCmd.Flags().Int("episodes", 0, "Rollout episodes to collect (default from config)")

	trainCmd.AddCommand(trainPolicyCmd)
	trainCmd.AddCommand(trainClassifierCmd)

	evaluateCmd.Flags().Int("episodes", 0, "Episodes to run (default from config)")
	evaluateCmd.Flags().String("model", "", "Policy artifact to evaluate (default from config)")
	evaluateCmd.Flags().Bool("no-record", false, "Do not record episodes in the database")
}

// newTrainer builds a trainer over a fresh environment. Episodes are
// recorded unless --no-record is set.
func newTrainer(cmd *cobra.Command) (*training.Trainer, func(), error) {
	env, err := environment.New(cfg.Environment)
	if err != nil {
		return nil, nil, err
	}

	if noRecord, _ := cmd.Flags().GetBool("no-record"); noRecord {
		return training.NewTrainer(env, nil, logger), func() {}, nil
	}

	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return training.NewTrainer(env, st.EventRepo(), logger), func() { st.Close() }, nil
}

func outputPath(cmd *cobra.Command, fallback string) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	return fallback
}

func tailAverage(eps []training.EpisodeSummary, n int) float64 {
	if len(eps) == 0 {
		return 0
	}
	tail := eps[max(len(eps)-n, 0):]
	var sum float64
	for _, ep := range tail {
		sum += ep.TotalReward
	}
	return sum / float64(len(tail))
}
