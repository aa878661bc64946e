// Package features defines the fixed-width numeric vector that the
// environment emits as its observation and that both models consume.
package features

import (
	"math"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/performance"
)

// Width is the number of features in a Vector.
const Width = 18

// Feature indexes.
const (
	IdxAbility = iota
	IdxEasy
	IdxMedium
	IdxHard
	IdxLevelValue
	IdxProgress
	IdxLastCorrect
	IdxLastReward
	IdxRecentAccuracy
	IdxOverallAccuracy
	IdxCorrectStreak
	IdxIncorrectStreak
	IdxLastResponse
	IdxMeanResponse
	IdxShareEasy
	IdxShareMedium
	IdxShareHard
	IdxBias
)

// StreakCap bounds the streak features before normalisation.
const StreakCap = 5

// Vector is one observation.
type Vector [Width]float64

// Input carries the raw signals a Vector is built from. Ratios are expected
// on [0,1]; Build clamps them.
type Input struct {
	Ability         float64
	Level           difficulty.Level
	Progress        float64
	LastCorrect     bool
	LastReward      float64
	RecentAccuracy  float64
	OverallAccuracy float64
	CorrectStreak   int
	IncorrectStreak int
	LastResponse    time.Duration
	MeanResponse    time.Duration
	MaxResponse     time.Duration
	// LevelShare is the fraction of steps spent at each level, by index.
	LevelShare [difficulty.NumLevels]float64
}

// Build lays out an Input as a Vector.
func Build(in Input) Vector {
	var v Vector
	v[IdxAbility] = clamp01(in.Ability)
	if i := in.Level.Index(); i >= 0 {
		v[IdxEasy+i] = 1
	}
	v[IdxLevelValue] = in.Level.Value()
	v[IdxProgress] = clamp01(in.Progress)
	if in.LastCorrect {
		v[IdxLastCorrect] = 1
	}
	v[IdxLastReward] = clamp(in.LastReward, -1, 1)
	v[IdxRecentAccuracy] = clamp01(in.RecentAccuracy)
	v[IdxOverallAccuracy] = clamp01(in.OverallAccuracy)
	v[IdxCorrectStreak] = streak(in.CorrectStreak)
	v[IdxIncorrectStreak] = streak(in.IncorrectStreak)
	v[IdxLastResponse] = ratio(in.LastResponse, in.MaxResponse)
	v[IdxMeanResponse] = ratio(in.MeanResponse, in.MaxResponse)
	for i, share := range in.LevelShare {
		v[IdxShareEasy+i] = clamp01(share)
	}
	v[IdxBias] = 1
	return v
}

// FromSlice validates a caller-supplied feature slice.
func FromSlice(raw []float64) (Vector, error) {
	var v Vector
	if len(raw) != Width {
		return v, fault.Invalid("feature vector has %d values, want %d", len(raw), Width)
	}
	for i, x := range raw {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, fault.Invalid("feature %d is not finite", i)
		}
		v[i] = x
	}
	return v, nil
}

// Uniform returns a Vector with every feature set to x.
func Uniform(x float64) Vector {
	var v Vector
	for i := range v {
		v[i] = x
	}
	return v
}

// Slice returns a copy of v as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Width)
	copy(out, v[:])
	return out
}

// Dot returns the inner product of v and w. w must have Width entries.
func (v Vector) Dot(w []float64) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum
}

// ForSession estimates a Vector for a live session where the latent ability
// is unknown. Ability is approximated from the current level shifted by how
// far accuracy sits from 50%.
func ForSession(level difficulty.Level, snap performance.Snapshot, lastCorrect bool, maxResponse time.Duration) Vector {
	acc := snap.Accuracy() / 100
	ability := level.Value()
	if snap.Total() > 0 {
		ability += (acc - 0.5) * 0.6
	}

	var share [difficulty.NumLevels]float64
	if i := level.Index(); i >= 0 {
		share[i] = 1
	}

	in := Input{
		Ability:         ability,
		Level:           level,
		Progress:        float64(snap.Total()) / 20,
		LastCorrect:     lastCorrect,
		RecentAccuracy:  acc,
		OverallAccuracy: acc,
		MeanResponse:    snap.MeanResponse(),
		LastResponse:    snap.MeanResponse(),
		MaxResponse:     maxResponse,
		LevelShare:      share,
	}
	if lastCorrect {
		in.CorrectStreak = 1
	} else if snap.Total() > 0 {
		in.IncorrectStreak = 1
	}
	return Build(in)
}

func streak(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= StreakCap {
		return 1
	}
	return float64(n) / StreakCap
}

func ratio(d, max time.Duration) float64 {
	if max <= 0 {
		return 0
	}
	return clamp01(float64(d) / float64(max))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
