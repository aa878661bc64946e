package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/performance"
	"github.com/abhisek/quizladder/internal/store"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List recorded difficulty decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		session, _ := cmd.Flags().GetString("session")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		recs, err := s.EventRepo().QueryDecisions(cmd.Context(), store.QueryOpts{Limit: limit, SessionID: session})
		if err != nil {
			return fmt.Errorf("query decisions: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No decisions recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-8s  %-7s  %-3s  %-8s  %-7s  %-10s  %s\n",
			"ID", "Timestamp", "Session", "Level", "OK", "Accuracy", "Next", "Source", "Advice")
		fmt.Println(strings.Repeat("─", 96))

		for _, r := range recs {
			ok := "✓"
			if !r.Correct {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-8s  %-7s  %-3s  %-8s  %-7s  %-10s  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(r.SessionID, 8),
				r.Level,
				ok,
				performance.FormatAccuracy(r.Accuracy),
				r.NextLevel,
				r.Source,
				advice(r),
			)
		}
		return nil
	},
}

var decisionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise recorded decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().DecisionStats(cmd.Context(), session)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		if stats.Total == 0 {
			fmt.Println("No decisions recorded.")
			return nil
		}

		acc := 100 * float64(stats.Correct) / float64(stats.Total)
		fmt.Printf("Decisions:      %d\n", stats.Total)
		fmt.Printf("Correct:        %d (%s)\n", stats.Correct, performance.FormatAccuracy(acc))
		fmt.Printf("Heuristic only: %d\n", stats.HeuristicOnly)

		fmt.Println()
		fmt.Println("By level asked")
		for _, l := range difficulty.All() {
			fmt.Printf("  %-8s %6d\n", l, stats.ByLevel[l])
		}

		fmt.Println()
		fmt.Println("By source")
		sources := make([]string, 0, len(stats.BySource))
		for src := range stats.BySource {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			fmt.Printf("  %-10s %6d\n", src, stats.BySource[src])
		}
		return nil
	},
}

func advice(r store.DecisionRecord) string {
	var parts []string
	if r.ClassifierScore != nil {
		parts = append(parts, fmt.Sprintf("score %.2f", *r.ClassifierScore))
	}
	if r.PolicyAction != "" {
		parts = append(parts, r.PolicyAction)
	}
	if r.HeuristicOnly {
		parts = append(parts, "partial")
	}
	return strings.Join(parts, ", ")
}

func init() {
	decisionsCmd.PersistentFlags().StringP("session", "s", "", "Only decisions from this session")
	decisionsCmd.Flags().IntP("limit", "n", 20, "Number of decisions to show")

	decisionsCmd.AddCommand(decisionsStatsCmd)
}
