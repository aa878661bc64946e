// Package model holds the two advisory models consulted by the decision
// engine: a difficulty classifier and a difficulty-adjustment policy. Both
// are linear over features.Vector and loaded from JSON artifacts.
//
// Loaded models are immutable; Predict is safe for concurrent use.
package model

import (
	"math"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/features"
)

// Classifier scores a feature vector on the continuous difficulty scale
// [0, 2], where 0 is easy and 2 is hard.
type Classifier interface {
	Predict(v features.Vector) (float64, error)
}

// Policy suggests the next ladder action for a feature vector.
type Policy interface {
	Predict(v features.Vector) (difficulty.Action, error)
}

// SoftmaxClassifier is multinomial logistic regression over the levels.
type SoftmaxClassifier struct {
	weights [][]float64
	bias    []float64
}

// NewSoftmaxClassifier builds a classifier from a validated artifact.
func NewSoftmaxClassifier(a *Artifact) (*SoftmaxClassifier, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &SoftmaxClassifier{weights: a.Weights, bias: a.Bias}, nil
}

// LoadClassifier reads a classifier artifact from path.
func LoadClassifier(path string) (*SoftmaxClassifier, error) {
	a, err := LoadArtifact(path, KindClassifier)
	if err != nil {
		return nil, err
	}
	return NewSoftmaxClassifier(a)
}

// Probabilities returns P(level) for each level index.
func (c *SoftmaxClassifier) Probabilities(v features.Vector) [difficulty.NumLevels]float64 {
	var logits [difficulty.NumLevels]float64
	for k := range logits {
		logits[k] = v.Dot(c.weights[k]) + c.bias[k]
	}
	return Softmax(logits)
}

// Predict returns the expected level index Σ k·P(k).
func (c *SoftmaxClassifier) Predict(v features.Vector) (float64, error) {
	p := c.Probabilities(v)
	var score float64
	for k, pk := range p {
		score += float64(k) * pk
	}
	return score, nil
}

// LinearPolicy is a linear action-value function acted on greedily.
type LinearPolicy struct {
	weights [][]float64
	bias    []float64
}

// NewLinearPolicy builds a policy from a validated artifact.
func NewLinearPolicy(a *Artifact) (*LinearPolicy, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &LinearPolicy{weights: a.Weights, bias: a.Bias}, nil
}

// LoadPolicy reads a policy artifact from path.
func LoadPolicy(path string) (*LinearPolicy, error) {
	a, err := LoadArtifact(path, KindPolicy)
	if err != nil {
		return nil, err
	}
	return NewLinearPolicy(a)
}

// QValues returns the estimated value of each action index.
func (p *LinearPolicy) QValues(v features.Vector) [difficulty.NumActions]float64 {
	var q [difficulty.NumActions]float64
	for a := range q {
		q[a] = v.Dot(p.weights[a]) + p.bias[a]
	}
	return q
}

// Predict returns the greedy action. Ties go to the lowest index.
func (p *LinearPolicy) Predict(v features.Vector) (difficulty.Action, error) {
	q := p.QValues(v)
	return difficulty.ActionFromIndex(Argmax(q[:]))
}

// Softmax is a numerically stable softmax.
func Softmax(logits [difficulty.NumLevels]float64) [difficulty.NumLevels]float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}
	var out [difficulty.NumLevels]float64
	var sum float64
	for k, l := range logits {
		out[k] = math.Exp(l - maxLogit)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}

// Argmax returns the index of the largest value, or -1 for an empty slice.
func Argmax(xs []float64) int {
	best := -1
	for i, x := range xs {
		if best < 0 || x > xs[best] {
			best = i
		}
	}
	return best
}
