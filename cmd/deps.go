package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/llm"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/tips"
)

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func loadBank() (*questions.Bank, error) {
	if cfg.Questions.Path == "" {
		return questions.Default(), nil
	}
	return questions.Load(cfg.Questions.Path)
}

// newController loads whatever models are available. Missing models only
// leave the controller heuristic-only.
func newController() *engine.Controller {
	models := engine.LoadModels(cfg.Models.Classifier, cfg.Models.Policy, logger)
	c := engine.NewController(models, logger)
	c.SetMaxResponse(cfg.Engine.MaxResponse)
	return c
}

// newTips builds the tip service. Without a configured LLM provider tips
// come from the bank and the built-in defaults only.
func newTips(ctx context.Context, recorder llm.Recorder) *tips.Service {
	provider, err := llm.NewProvider(ctx, cfg.LLM, recorder, logger)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		provider = nil
	case err != nil:
		logger.Warn("LLM provider unavailable, generated tips disabled", "error", err)
		provider = nil
	}
	return tips.NewService(provider, cfg.LLM.Timeout, logger)
}
