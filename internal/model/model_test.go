package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmaxClassifier_ZeroWeightsIsMedium(t *testing.T) {
	c, err := NewSoftmaxClassifier(NewArtifact(KindClassifier))
	require.NoError(t, err)

	score, err := c.Predict(features.Uniform(0.2))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestSoftmaxClassifier_FollowsAbility(t *testing.T) {
	a := NewArtifact(KindClassifier)
	a.Weights[0][features.IdxAbility] = -10
	a.Weights[2][features.IdxAbility] = 10
	c, err := NewSoftmaxClassifier(a)
	require.NoError(t, err)

	low, _ := c.Predict(features.Build(features.Input{Ability: 0, Level: difficulty.Easy}))
	high, _ := c.Predict(features.Build(features.Input{Ability: 1, Level: difficulty.Easy}))
	if low >= high {
		t.Errorf("score(ability 0) = %f, want < score(ability 1) = %f", low, high)
	}
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 2.0)

	p := c.Probabilities(features.Uniform(0.2))
	assert.InDelta(t, 1.0, p[0]+p[1]+p[2], 1e-9)
}

func TestLinearPolicy_Greedy(t *testing.T) {
	a := NewArtifact(KindPolicy)
	a.Bias = []float64{0.1, 0.2, 0.3}
	p, err := NewLinearPolicy(a)
	require.NoError(t, err)

	got, err := p.Predict(features.Uniform(0.2))
	require.NoError(t, err)
	assert.Equal(t, difficulty.Harder, got)

	a.Bias = []float64{0.5, 0.5, 0.1}
	p, _ = NewLinearPolicy(a)
	got, _ = p.Predict(features.Uniform(0.2))
	assert.Equal(t, difficulty.Easier, got, "ties go to the lowest index")
}

func TestArtifact_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "policy.json")
	a := NewArtifact(KindPolicy)
	a.Bias[1] = 1
	a.TrainedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a.Metadata["timesteps"] = "5000"
	require.NoError(t, a.Save(path))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	got, err := p.Predict(features.Uniform(0.2))
	require.NoError(t, err)
	assert.Equal(t, difficulty.Same, got)

	loaded, err := LoadArtifact(path, KindPolicy)
	require.NoError(t, err)
	assert.Equal(t, "5000", loaded.Metadata["timesteps"])
	assert.True(t, a.TrainedAt.Equal(loaded.TrainedAt))
}

func TestLoadArtifact_Failures(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	cases := map[string]string{
		"missing":  filepath.Join(dir, "nope.json"),
		"corrupt":  write("corrupt.json", "{not json"),
		"schema":   write("schema.json", `{"kind":"policy"}`),
		"version":  write("version.json", `{"kind":"classifier","format_version":"v2.0.0","feature_width":18,"weights":[[0]],"bias":[0]}`),
		"shape":    write("shape.json", `{"kind":"classifier","format_version":"v1.0.0","feature_width":18,"weights":[[0]],"bias":[0]}`),
		"mismatch": write("mismatch.json", `{"kind":"policy","format_version":"v1.0.0","feature_width":18,"weights":[[0]],"bias":[0]}`),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadClassifier(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, fault.ErrModelUnavailable)

			var me *fault.ModelError
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not a *fault.ModelError", err)
			}
			assert.Equal(t, KindClassifier, me.Kind)
			assert.Equal(t, path, me.Path)
		})
	}
}

func TestArtifact_Validate(t *testing.T) {
	a := NewArtifact(KindClassifier)
	require.NoError(t, a.Validate())

	a.FormatVersion = "1.0"
	assert.Error(t, a.Validate())

	a = NewArtifact(KindClassifier)
	a.FeatureWidth = 17
	assert.Error(t, a.Validate())

	a = NewArtifact(KindClassifier)
	a.FormatVersion = "v1.3.0"
	assert.NoError(t, a.Validate(), "minor versions stay compatible")
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{nil, -1},
		{[]float64{1}, 0},
		{[]float64{1, 3, 2}, 1},
		{[]float64{2, 2, 2}, 0},
		{[]float64{-3, -1, -2}, 1},
	}
	for _, tt := range tests {
		if got := Argmax(tt.in); got != tt.want {
			t.Errorf("Argmax(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
