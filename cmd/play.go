package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/quiz"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz in the terminal",
	RunE:  runPlay,
}

func addPlayFlags(c *cobra.Command) {
	c.Flags().StringP("language", "l", "", "Question language: en, fr or de (default from config)")
	c.Flags().String("level", "easy", "Starting difficulty when not resuming")
	c.Flags().Bool("new", false, "Start a new session instead of resuming the last one")
}

func init() {
	addPlayFlags(playCmd)
}

// runPlay opens the store, builds dependencies, and launches the TUI.
func runPlay(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("language")
	if lang == "" {
		lang = cfg.Questions.Language
	}
	if !questions.SupportedLanguage(lang) {
		return fmt.Errorf("unsupported language %q (choose from %v)", lang, questions.SupportedLanguages)
	}
	levelFlag, _ := cmd.Flags().GetString("level")
	level, err := difficulty.Parse(levelFlag)
	if err != nil {
		return err
	}
	fresh, _ := cmd.Flags().GetBool("new")

	bank, err := loadBank()
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	m, err := quiz.Run(quiz.Deps{
		Bank:       bank,
		Controller: newController(),
		Tips:       newTips(cmd.Context(), eventRepo),
		Events:     eventRepo,
		Snapshots:  st.SnapshotRepo(),
		Log:        logger,
	}, quiz.Options{
		Language:      lang,
		Level:         level,
		Resume:        !fresh,
		KeepSnapshots: cfg.Store.KeepSnapshots,
		Advisory:      cfg.Engine.Advisory,
		Act:           cfg.ActSource(),
	})
	if err != nil {
		return err
	}
	if m != nil {
		if m.Err() != nil {
			return m.Err()
		}
		fmt.Println(m.Summary())
	}
	return nil
}
