package training

import (
	"context"
	"fmt"

	"github.com/abhisek/quizladder/internal/model"
)

// Evaluation is the outcome of running a policy over several episodes.
type Evaluation struct {
	RunID         string           `json:"run_id"`
	Episodes      []EpisodeSummary `json:"episodes"`
	AverageReward float64          `json:"average_reward"`
}

// Evaluate plays episodes with the policy acting greedily. A policy error
// or an environment misuse aborts the run.
func (t *Trainer) Evaluate(ctx context.Context, policy model.Policy, episodes int) (*Evaluation, error) {
	if episodes <= 0 {
		episodes = DefaultEvalEpisodes
	}

	eval := &Evaluation{RunID: t.runID}
	var total float64

	for n := 1; n <= episodes; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obs, _ := t.env.Reset()
		ep := EpisodeSummary{Episode: n}
		for {
			action, err := policy.Predict(obs)
			if err != nil {
				return nil, fmt.Errorf("episode %d: policy: %w", n, err)
			}
			res, err := t.env.Step(action)
			if err != nil {
				return nil, fmt.Errorf("episode %d: %w", n, err)
			}
			ep.Steps++
			ep.TotalReward += res.Reward
			obs = res.Observation
			if res.Done() {
				ep.Truncated = res.Truncated
				break
			}
		}
		ep.History = t.env.History()

		t.record(ctx, KindEvaluate, ep)
		t.log.Debug("evaluation episode", "episode", n, "total_reward", ep.TotalReward)

		eval.Episodes = append(eval.Episodes, ep)
		total += ep.TotalReward
	}

	eval.AverageReward = total / float64(episodes)
	return eval, nil
}
