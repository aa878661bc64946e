package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/abhisek/quizladder/internal/performance"
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide the next difficulty for one answer",
	Example: "  quizladder decide --level medium --correct --correct-count 3 --incorrect-count 1\n" +
		"  quizladder decide --level hard --advisory --act policy --json",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		levelFlag, _ := f.GetString("level")
		level, err := difficulty.Parse(levelFlag)
		if err != nil {
			return err
		}
		correct, _ := f.GetBool("correct")
		nCorrect, _ := f.GetInt("correct-count")
		nIncorrect, _ := f.GetInt("incorrect-count")
		response, _ := f.GetDuration("response")
		advisory, _ := f.GetBool("advisory")
		actFlag, _ := f.GetString("act")
		vec, _ := f.GetFloat64Slice("features")
		asJSON, _ := f.GetBool("json")

		act := cfg.ActSource()
		if actFlag != "" {
			if act, err = engine.ParseSource(actFlag); err != nil {
				return err
			}
		}

		res, err := newController().Decide(engine.DecisionRequest{
			Level:        level,
			Correct:      correct,
			Snapshot:     performance.Snapshot{Correct: nCorrect, Incorrect: nIncorrect},
			ResponseTime: response,
			Advisory:     advisory || cfg.Engine.Advisory,
			Features:     vec,
			Act:          act,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, res)
		}
		printDecision(out, res)
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Probe the classifier and policy with a feature vector",
	RunE: func(cmd *cobra.Command, args []string) error {
		vec, _ := cmd.Flags().GetFloat64Slice("features")
		asJSON, _ := cmd.Flags().GetBool("json")
		if len(vec) == 0 {
			vec = features.Uniform(0.2).Slice()
		}

		sim := newController().Simulate(vec)

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, sim)
		}
		if sim.ClassifierScore != nil {
			fmt.Fprintf(out, "Predicted difficulty: %.2f (%s)\n",
				*sim.ClassifierScore, engine.LevelForScore(*sim.ClassifierScore))
		} else {
			fmt.Fprintln(out, "Predicted difficulty: unavailable")
		}
		if sim.PolicyAction != nil {
			fmt.Fprintf(out, "RL suggestion:        %s\n", *sim.PolicyAction)
		} else {
			fmt.Fprintln(out, "RL suggestion:        unavailable")
		}
		printReasons(out, sim.Reasons)
		return nil
	},
}

func init() {
	f := decideCmd.Flags()
	f.String("level", "", "Current difficulty: easy, medium or hard")
	f.Bool("correct", false, "The answer was correct")
	f.Int("correct-count", 0, "Correct answers before this one")
	f.Int("incorrect-count", 0, "Incorrect answers before this one")
	f.Duration("response", 0, "Time taken to answer, e.g. 12s")
	f.Bool("advisory", false, "Also consult the classifier and policy")
	f.String("act", "", "Let heuristic, classifier or policy choose the level (default from config)")
	f.Float64Slice("features", nil, "Explicit feature vector for the advisory models")
	f.Bool("json", false, "Print the result as JSON")
	_ = decideCmd.MarkFlagRequired("level")

	simulateCmd.Flags().Float64Slice("features", nil, fmt.Sprintf("Feature vector of width %d (default all 0.2)", features.Width))
	simulateCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func printDecision(w io.Writer, res engine.DecisionResult) {
	result := "incorrect"
	if res.Correct {
		result = "correct"
	}
	fmt.Fprintf(w, "Result:          %s\n", result)
	fmt.Fprintf(w, "Accuracy:        %s (%d/%d)\n", res.AccuracyText, res.Snapshot.Correct, res.Snapshot.Total())
	fmt.Fprintf(w, "Suggestion:      %s\n", res.Suggestion.Text)
	fmt.Fprintf(w, "Next difficulty: %s (%s)\n", res.NextLevel, res.Source)
	if res.NextLevel != res.HeuristicLevel {
		fmt.Fprintf(w, "Ladder would:    %s\n", res.HeuristicLevel)
	}
	if adv := res.Advisory; adv != nil {
		if adv.ClassifierScore != nil {
			fmt.Fprintf(w, "Classifier:      %.2f\n", *adv.ClassifierScore)
		}
		if adv.PolicyAction != nil {
			fmt.Fprintf(w, "Policy:          %s\n", *adv.PolicyAction)
		}
		printReasons(w, adv.Reasons)
	}
}

func printReasons(w io.Writer, reasons []string) {
	if len(reasons) == 0 {
		return
	}
	fmt.Fprintf(w, "Heuristic only:  %s\n", strings.Join(reasons, "; "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
