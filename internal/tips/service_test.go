package tips

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/llm"
	"github.com/abhisek/quizladder/internal/questions"
)

func question(tip string) questions.Question {
	return questions.Question{
		ID:         "q1",
		Question:   "What is the capital of France?",
		Options:    []string{"Paris", "Lyon", "Nice"},
		Answer:     "Paris",
		Difficulty: difficulty.Easy,
		Language:   "en",
		Tip:        tip,
	}
}

func TestFor_CorrectAnswerPraises(t *testing.T) {
	mock := llm.NewMockProvider()
	s := NewService(mock, 0, nil)

	tip := s.For(context.Background(), question(""), "Paris", true)
	assert.Equal(t, Tip{Text: PraiseTip, Source: SourcePraise}, tip)
	assert.Equal(t, 0, mock.CallCount())
}

func TestFor_QuestionTipWins(t *testing.T) {
	mock := llm.NewMockProvider()
	s := NewService(mock, 0, nil)

	tip := s.For(context.Background(), question("  Think of the Eiffel Tower. "), "Lyon", false)
	assert.Equal(t, "Think of the Eiffel Tower.", tip.Text)
	assert.Equal(t, SourceQuestion, tip.Source)
	assert.Equal(t, 0, mock.CallCount())
}

func TestFor_NoProviderUsesDefault(t *testing.T) {
	s := NewService(nil, 0, nil)
	assert.False(t, s.Generates())

	tip := s.For(context.Background(), question(""), "Lyon", false)
	assert.Equal(t, Tip{Text: DefaultTip, Source: SourceDefault}, tip)
}

func TestFor_GeneratedTip(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"tip":"It is the largest French city."}`)})
	s := NewService(mock, 0, nil)

	tip := s.For(context.Background(), question(""), "Lyon", false)
	assert.Equal(t, Tip{Text: "It is the largest French city.", Source: SourceLLM}, tip)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Same(t, TipSchema, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Learner answered: Lyon")
	assert.Contains(t, req.Messages[0].Content, "Options: Paris | Lyon | Nice")
}

func TestFor_ProviderErrorFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("boom")})
	s := NewService(mock, 0, nil)

	tip := s.For(context.Background(), question(""), "Nice", false)
	assert.Equal(t, SourceDefault, tip.Source)
	assert.Equal(t, DefaultTip, tip.Text)
}

func TestFor_InvalidResponseFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"tip":""}`)})
	s := NewService(mock, 0, nil)

	tip := s.For(context.Background(), question(""), "Nice", false)
	assert.Equal(t, SourceDefault, tip.Source)
}

func TestFor_PurposeIsTip(t *testing.T) {
	var seen string
	p := purposeSpy{fn: func(ctx context.Context) { seen = llm.PurposeFrom(ctx) }}
	s := NewService(p, 0, nil)

	s.For(context.Background(), question(""), "", false)
	assert.Equal(t, llm.PurposeTip, seen)
}

type purposeSpy struct {
	fn func(context.Context)
}

func (p purposeSpy) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.fn(ctx)
	return &llm.Response{Content: json.RawMessage(`{"tip":"ok"}`)}, nil
}

func (p purposeSpy) ModelID() string { return "spy" }
