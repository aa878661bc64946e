package training

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/abhisek/quizladder/internal/model"
)

// PolicyResult is a trained policy plus the episodes it was trained on.
type PolicyResult struct {
	Artifact *model.Artifact
	Episodes []EpisodeSummary
}

// TrainPolicy fits a linear action-value function with epsilon-greedy
// Q-learning. Truncated episodes bootstrap from the final observation;
// terminated ones do not.
func (t *Trainer) TrainPolicy(ctx context.Context, cfg PolicyConfig) (*PolicyResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("policy config: %w", err)
	}

	art := model.NewArtifact(model.KindPolicy)
	q, err := model.NewLinearPolicy(art)
	if err != nil {
		return nil, err
	}
	rng := newRand(cfg.Seed)

	var result PolicyResult
	obs, _ := t.env.Reset()
	current := EpisodeSummary{Episode: 1}

	for step := range cfg.Timesteps {
		if step%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		action := difficulty.Action(rng.IntN(difficulty.NumActions))
		if rng.Float64() >= cfg.epsilon(step) {
			values := q.QValues(obs)
			action = difficulty.Action(model.Argmax(values[:]))
		}

		res, err := t.env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("training step %d: %w", step, err)
		}

		target := res.Reward
		if !res.Terminated {
			next := q.QValues(res.Observation)
			target += cfg.Gamma * next[model.Argmax(next[:])]
		}
		values := q.QValues(obs)
		tdUpdate(art, int(action), obs, cfg.LearningRate*(target-values[action]))

		current.Steps++
		current.TotalReward += res.Reward
		obs = res.Observation

		if res.Done() {
			current.Truncated = res.Truncated
			current.History = t.env.History()
			t.record(ctx, KindTrain, current)
			result.Episodes = append(result.Episodes, current)

			obs, _ = t.env.Reset()
			current = EpisodeSummary{Episode: current.Episode + 1}
		}
	}

	art.TrainedAt = time.Now().UTC()
	art.Metadata["run_id"] = t.runID
	art.Metadata["algorithm"] = "linear-q-learning"
	art.Metadata["timesteps"] = strconv.Itoa(cfg.Timesteps)
	art.Metadata["gamma"] = strconv.FormatFloat(cfg.Gamma, 'g', -1, 64)
	art.Metadata["episodes"] = strconv.Itoa(len(result.Episodes))
	result.Artifact = art

	t.log.Info("policy trained",
		"run_id", t.runID,
		"timesteps", cfg.Timesteps,
		"episodes", len(result.Episodes))
	return &result, nil
}

// tdUpdate moves action a's weights by delta along the observation.
func tdUpdate(art *model.Artifact, a int, obs features.Vector, delta float64) {
	row := art.Weights[a]
	for i, x := range obs {
		row[i] += delta * x
	}
	art.Bias[a] += delta
}
