// Package training fits the difficulty policy and classifier offline
// against the simulated learner, and evaluates a policy over episodes.
package training

import (
	"fmt"
)

// PolicyConfig drives linear Q-learning.
type PolicyConfig struct {
	Timesteps    int     `yaml:"timesteps"`
	Gamma        float64 `yaml:"gamma"`
	LearningRate float64 `yaml:"learning_rate"`
	EpsilonStart float64 `yaml:"epsilon_start"`
	EpsilonEnd   float64 `yaml:"epsilon_end"`
	// ExplorationFraction is the share of Timesteps over which epsilon
	// decays linearly from EpsilonStart to EpsilonEnd.
	ExplorationFraction float64 `yaml:"exploration_fraction"`
	Seed                uint64  `yaml:"seed"`
}

// DefaultPolicyConfig returns the settings the shipped policy is trained with.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		Timesteps:           5000,
		Gamma:               0.9,
		LearningRate:        0.01,
		EpsilonStart:        1.0,
		EpsilonEnd:          0.05,
		ExplorationFraction: 0.5,
		Seed:                7,
	}
}

func (c PolicyConfig) Validate() error {
	switch {
	case c.Timesteps <= 0:
		return fmt.Errorf("timesteps must be positive, got %d", c.Timesteps)
	case c.Gamma < 0 || c.Gamma > 1:
		return fmt.Errorf("gamma must be in [0,1], got %g", c.Gamma)
	case c.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	case c.EpsilonStart < c.EpsilonEnd || c.EpsilonEnd < 0 || c.EpsilonStart > 1:
		return fmt.Errorf("epsilon must satisfy 0 <= end (%g) <= start (%g) <= 1", c.EpsilonEnd, c.EpsilonStart)
	case c.ExplorationFraction <= 0 || c.ExplorationFraction > 1:
		return fmt.Errorf("exploration_fraction must be in (0,1], got %g", c.ExplorationFraction)
	}
	return nil
}

// epsilon returns the exploration rate at timestep t.
func (c PolicyConfig) epsilon(t int) float64 {
	horizon := c.ExplorationFraction * float64(c.Timesteps)
	frac := float64(t) / horizon
	if frac >= 1 {
		return c.EpsilonEnd
	}
	return c.EpsilonStart + frac*(c.EpsilonEnd-c.EpsilonStart)
}

// ClassifierConfig drives softmax regression on simulated rollouts.
type ClassifierConfig struct {
	// Episodes of random play collected as training data.
	Episodes     int     `yaml:"episodes"`
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	L2           float64 `yaml:"l2"`
	Seed         uint64  `yaml:"seed"`
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Episodes:     200,
		Epochs:       30,
		LearningRate: 0.1,
		L2:           1e-4,
		Seed:         11,
	}
}

func (c ClassifierConfig) Validate() error {
	switch {
	case c.Episodes <= 0:
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	case c.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	case c.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %g", c.LearningRate)
	case c.L2 < 0:
		return fmt.Errorf("l2 must be non-negative, got %g", c.L2)
	}
	return nil
}

// DefaultEvalEpisodes is how many episodes Evaluate runs when asked for none.
const DefaultEvalEpisodes = 10
