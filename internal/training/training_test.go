package training

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/environment"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/abhisek/quizladder/internal/model"
	"github.com/abhisek/quizladder/internal/store"
)

type fakeRecorder struct {
	episodes []store.EpisodeEventData
}

func (f *fakeRecorder) AppendEpisode(_ context.Context, data store.EpisodeEventData) error {
	f.episodes = append(f.episodes, data)
	return nil
}

type fixedPolicy struct {
	action difficulty.Action
	err    error
}

func (p fixedPolicy) Predict(features.Vector) (difficulty.Action, error) {
	return p.action, p.err
}

func newEnv(t *testing.T) *environment.Environment {
	t.Helper()
	env, err := environment.New(environment.DefaultConfig())
	require.NoError(t, err)
	return env
}

func smallPolicyConfig() PolicyConfig {
	cfg := DefaultPolicyConfig()
	cfg.Timesteps = 400
	return cfg
}

func TestTrainPolicy_ProducesValidArtifact(t *testing.T) {
	rec := &fakeRecorder{}
	tr := NewTrainer(newEnv(t), rec, nil)

	res, err := tr.TrainPolicy(context.Background(), smallPolicyConfig())
	require.NoError(t, err)

	require.NoError(t, res.Artifact.Validate())
	assert.Equal(t, model.KindPolicy, res.Artifact.Kind)
	assert.Equal(t, tr.RunID(), res.Artifact.Metadata["run_id"])
	assert.False(t, res.Artifact.TrainedAt.IsZero())

	// 400 steps of 20-step episodes.
	require.Len(t, res.Episodes, 20)
	for _, ep := range res.Episodes {
		assert.Equal(t, 20, ep.Steps)
		assert.Len(t, ep.History, 20)
	}

	require.Len(t, rec.episodes, 20)
	assert.Equal(t, KindTrain, rec.episodes[0].Kind)
	assert.Equal(t, tr.RunID(), rec.episodes[0].RunID)

	var history []environment.Transition
	require.NoError(t, json.Unmarshal([]byte(rec.episodes[0].History), &history))
	assert.Len(t, history, 20)

	_, err = model.NewLinearPolicy(res.Artifact)
	require.NoError(t, err)
}

func TestTrainPolicy_Deterministic(t *testing.T) {
	a, err := NewTrainer(newEnv(t), nil, nil).TrainPolicy(context.Background(), smallPolicyConfig())
	require.NoError(t, err)
	b, err := NewTrainer(newEnv(t), nil, nil).TrainPolicy(context.Background(), smallPolicyConfig())
	require.NoError(t, err)

	assert.Equal(t, a.Artifact.Weights, b.Artifact.Weights)
	assert.Equal(t, a.Artifact.Bias, b.Artifact.Bias)
}

func TestTrainPolicy_InvalidConfig(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.Gamma = 1.5
	_, err := NewTrainer(newEnv(t), nil, nil).TrainPolicy(context.Background(), cfg)
	require.Error(t, err)
}

func TestTrainPolicy_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTrainer(newEnv(t), nil, nil).TrainPolicy(ctx, smallPolicyConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyConfig_EpsilonDecay(t *testing.T) {
	cfg := DefaultPolicyConfig()
	assert.InDelta(t, 1.0, cfg.epsilon(0), 1e-9)
	assert.InDelta(t, 0.525, cfg.epsilon(1250), 1e-9)
	assert.InDelta(t, 0.05, cfg.epsilon(2500), 1e-9)
	assert.InDelta(t, 0.05, cfg.epsilon(4999), 1e-9)
}

func TestTrainClassifier_LearnsAbilityOrdering(t *testing.T) {
	cfg := DefaultClassifierConfig()
	cfg.Episodes = 60
	cfg.Epochs = 20

	res, err := NewTrainer(newEnv(t), nil, nil).TrainClassifier(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, res.Artifact.Validate())
	assert.Equal(t, 60*21, res.Samples)
	assert.Greater(t, res.Accuracy, 0.6)

	clf, err := model.NewSoftmaxClassifier(res.Artifact)
	require.NoError(t, err)

	weak, err := clf.Predict(features.Build(features.Input{Ability: 0.15, Level: difficulty.Medium}))
	require.NoError(t, err)
	strong, err := clf.Predict(features.Build(features.Input{Ability: 0.85, Level: difficulty.Medium}))
	require.NoError(t, err)
	assert.Less(t, weak, strong)
}

func TestTrainClassifier_InvalidConfig(t *testing.T) {
	cfg := DefaultClassifierConfig()
	cfg.Epochs = 0
	_, err := NewTrainer(newEnv(t), nil, nil).TrainClassifier(context.Background(), cfg)
	require.Error(t, err)
}

func TestEvaluate_AveragesEpisodes(t *testing.T) {
	rec := &fakeRecorder{}
	tr := NewTrainer(newEnv(t), rec, nil)

	eval, err := tr.Evaluate(context.Background(), fixedPolicy{action: difficulty.Same}, 0)
	require.NoError(t, err)

	require.Len(t, eval.Episodes, DefaultEvalEpisodes)
	var sum float64
	for _, ep := range eval.Episodes {
		assert.Equal(t, 20, ep.Steps)
		for _, step := range ep.History {
			assert.Equal(t, difficulty.Easy, step.Level)
		}
		sum += ep.TotalReward
	}
	assert.InDelta(t, sum/float64(DefaultEvalEpisodes), eval.AverageReward, 1e-9)

	require.Len(t, rec.episodes, DefaultEvalEpisodes)
	assert.Equal(t, KindEvaluate, rec.episodes[0].Kind)
}

func TestEvaluate_PolicyErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewTrainer(newEnv(t), nil, nil).Evaluate(context.Background(), fixedPolicy{err: boom}, 3)
	assert.ErrorIs(t, err, boom)
}

func TestEvaluate_InvalidActionAborts(t *testing.T) {
	_, err := NewTrainer(newEnv(t), nil, nil).Evaluate(context.Background(), fixedPolicy{action: difficulty.Action(9)}, 1)
	assert.ErrorIs(t, err, fault.ErrInvalidInput)
}

func TestEvaluate_TruncatedEpisodes(t *testing.T) {
	cfg := environment.DefaultConfig()
	cfg.TruncateAfter = 5
	env, err := environment.New(cfg)
	require.NoError(t, err)

	eval, err := NewTrainer(env, nil, nil).Evaluate(context.Background(), fixedPolicy{action: difficulty.Harder}, 2)
	require.NoError(t, err)
	for _, ep := range eval.Episodes {
		assert.Equal(t, 5, ep.Steps)
		assert.True(t, ep.Truncated)
	}
}
