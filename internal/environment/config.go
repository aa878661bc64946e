package environment

import (
	"fmt"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
)

// Config controls the simulated learner and the episode bounds.
type Config struct {
	// MaxSteps is the episode length; the MaxSteps-th step terminates.
	MaxSteps int `yaml:"max_steps"`
	// TruncateAfter cuts an episode short at this step when it is positive
	// and below MaxSteps. Zero disables truncation.
	TruncateAfter int `yaml:"truncate_after"`

	StartLevel  difficulty.Level `yaml:"start_level"`
	RandomStart bool             `yaml:"random_start"`

	// Latent ability is drawn uniformly from [AbilityMin, AbilityMax] at reset.
	AbilityMin float64 `yaml:"ability_min"`
	AbilityMax float64 `yaml:"ability_max"`

	// Sharpness scales the logistic response curve.
	Sharpness float64 `yaml:"sharpness"`
	// LearningRate is how much ability grows after a correct answer at or
	// above the learner's target level.
	LearningRate float64 `yaml:"learning_rate"`

	TooEasyPenalty float64 `yaml:"too_easy_penalty"`
	TooHardPenalty float64 `yaml:"too_hard_penalty"`

	// RecentWindow is the number of answers in the recent-accuracy feature.
	RecentWindow int `yaml:"recent_window"`

	BaseResponse time.Duration `yaml:"base_response"`
	MaxResponse  time.Duration `yaml:"max_response"`

	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the settings the bundled models were trained with.
func DefaultConfig() Config {
	return Config{
		MaxSteps:       20,
		StartLevel:     difficulty.Easy,
		AbilityMin:     0.1,
		AbilityMax:     0.9,
		Sharpness:      8,
		LearningRate:   0.02,
		TooEasyPenalty: 0.5,
		TooHardPenalty: 0.75,
		RecentWindow:   5,
		BaseResponse:   20 * time.Second,
		MaxResponse:    60 * time.Second,
		Seed:           42,
	}
}

// Validate checks that the configuration describes a usable environment.
func (c Config) Validate() error {
	switch {
	case c.MaxSteps <= 0:
		return fmt.Errorf("max_steps must be > 0, got %d", c.MaxSteps)
	case c.TruncateAfter < 0:
		return fmt.Errorf("truncate_after must be >= 0, got %d", c.TruncateAfter)
	case !c.StartLevel.Valid():
		return fmt.Errorf("start_level %q is not a difficulty level", c.StartLevel)
	case c.AbilityMin < 0 || c.AbilityMax > 1 || c.AbilityMin > c.AbilityMax:
		return fmt.Errorf("ability range [%g, %g] must lie within [0, 1]", c.AbilityMin, c.AbilityMax)
	case c.Sharpness <= 0:
		return fmt.Errorf("sharpness must be > 0")
	case c.LearningRate < 0 || c.LearningRate > 1:
		return fmt.Errorf("learning_rate must be within [0, 1]")
	case c.TooEasyPenalty < 0 || c.TooHardPenalty < 0:
		return fmt.Errorf("penalties must be >= 0")
	case c.RecentWindow <= 0:
		return fmt.Errorf("recent_window must be > 0")
	case c.BaseResponse <= 0 || c.MaxResponse < c.BaseResponse:
		return fmt.Errorf("response times must satisfy 0 < base_response <= max_response")
	}
	return nil
}

// Reward scores presenting level to a learner of the given ability. The
// target level scores 1; every rung below it costs TooEasyPenalty and every
// rung above it costs TooHardPenalty.
func (c Config) Reward(ability float64, level difficulty.Level) float64 {
	dist := level.Index() - TargetLevel(ability).Index()
	switch {
	case dist < 0:
		return 1 - c.TooEasyPenalty*float64(-dist)
	case dist > 0:
		return 1 - c.TooHardPenalty*float64(dist)
	}
	return 1
}

// TargetLevel returns the level whose nominal value is closest to ability.
func TargetLevel(ability float64) difficulty.Level {
	switch {
	case ability < 0.35:
		return difficulty.Easy
	case ability < 0.65:
		return difficulty.Medium
	default:
		return difficulty.Hard
	}
}
