package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizladder/internal/logging"
)

// ErrNotConfigured is returned when no provider has been selected.
var ErrNotConfigured = errors.New("no LLM provider configured")

// NewProvider creates a Provider from configuration, wrapped so that the
// caller sees retry on top of event logging on top of the base provider.
func NewProvider(ctx context.Context, cfg Config, recorder Recorder, log *logging.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == ProviderAuto {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, ErrNotConfigured
		}
		discovered.Retry = cfg.Retry
		discovered.Timeout = cfg.Timeout
		return NewProvider(ctx, discovered, recorder, log)
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, recorder, log)
	return WithRetry(logged, cfg.Retry, log), nil
}

// NewProviderFromEnv builds a provider from QUIZLADDER_* variables, falling
// back to the first standard API key found (GEMINI_API_KEY and friends).
func NewProviderFromEnv(ctx context.Context, recorder Recorder, log *logging.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if !cfg.Enabled() {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, ErrNotConfigured
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, recorder, log)
}
