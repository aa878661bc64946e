// Package tips chooses the feedback text shown after an answer.
package tips

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/quizladder/internal/llm"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/questions"
)

const (
	// DefaultTip is shown for a wrong answer when nothing better is known.
	DefaultTip = "Review the related topic for better understanding."
	// PraiseTip is shown for every correct answer.
	PraiseTip = "Great job! Keep up the good work."

	defaultTimeout = 10 * time.Second
)

// Source says where a tip came from.
type Source string

const (
	SourcePraise   Source = "praise"
	SourceQuestion Source = "question"
	SourceLLM      Source = "llm"
	SourceDefault  Source = "default"
)

// Tip is feedback text plus its origin.
type Tip struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Service resolves tips. The provider is optional.
type Service struct {
	provider llm.Provider
	timeout  time.Duration
	log      *logging.Logger
}

// NewService creates a tip service. A nil provider disables generated tips;
// a non-positive timeout uses the default.
func NewService(provider llm.Provider, timeout time.Duration, log *logging.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Service{provider: provider, timeout: timeout, log: log}
}

// Generates reports whether a provider is configured.
func (s *Service) Generates() bool {
	return s != nil && s.provider != nil
}

// For returns the tip to show after answering q. It never fails: LLM
// errors fall back to DefaultTip.
func (s *Service) For(ctx context.Context, q questions.Question, given string, correct bool) Tip {
	if correct {
		return Tip{Text: PraiseTip, Source: SourcePraise}
	}
	if tip := strings.TrimSpace(q.Tip); tip != "" {
		return Tip{Text: tip, Source: SourceQuestion}
	}
	if !s.Generates() {
		return Tip{Text: DefaultTip, Source: SourceDefault}
	}

	text, err := s.generate(ctx, q, given)
	if err != nil {
		s.log.Warn("tip generation failed", "question", q.ID, "error", err)
		return Tip{Text: DefaultTip, Source: SourceDefault}
	}
	return Tip{Text: text, Source: SourceLLM}
}

type tipOutput struct {
	Tip string `json:"tip"`
}

func (s *Service) generate(ctx context.Context, q questions.Question, given string) (string, error) {
	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, llm.PurposeTip), s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      tipSystemPrompt,
		Messages:    llm.UserMessage(buildTipMessage(q, given)),
		Schema:      TipSchema,
		MaxTokens:   128,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	var out tipOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("decode tip: %w", err)
	}
	text := strings.TrimSpace(out.Tip)
	if text == "" {
		return "", fmt.Errorf("empty tip")
	}
	return text, nil
}

func buildTipMessage(q questions.Question, given string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Language: %s\n", q.Language)
	fmt.Fprintf(&b, "Difficulty: %s\n", q.Difficulty)
	fmt.Fprintf(&b, "Question: %s\n", q.Question)
	if len(q.Options) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(q.Options, " | "))
	}
	if given != "" {
		fmt.Fprintf(&b, "Learner answered: %s\n", given)
	}
	return b.String()
}
