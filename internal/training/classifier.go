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

// ClassifierResult is a trained classifier and how well it fits its data.
type ClassifierResult struct {
	Artifact *model.Artifact
	Samples  int
	// Accuracy is the share of training samples whose most likely level
	// matches the label, on [0,1].
	Accuracy float64
}

type sample struct {
	x     features.Vector
	label int
}

// TrainClassifier collects observations from random play and fits softmax
// regression mapping each observation to the learner's target level.
func (t *Trainer) TrainClassifier(ctx context.Context, cfg ClassifierConfig) (*ClassifierResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("classifier config: %w", err)
	}
	rng := newRand(cfg.Seed)

	data, err := t.collect(ctx, cfg.Episodes, func() difficulty.Action {
		return difficulty.Action(rng.IntN(difficulty.NumActions))
	})
	if err != nil {
		return nil, err
	}

	art := model.NewArtifact(model.KindClassifier)
	clf, err := model.NewSoftmaxClassifier(art)
	if err != nil {
		return nil, err
	}

	for epoch := range cfg.Epochs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })
		lr := cfg.LearningRate / (1 + 0.1*float64(epoch))

		for _, s := range data {
			p := clf.Probabilities(s.x)
			for k := range p {
				grad := p[k]
				if k == s.label {
					grad -= 1
				}
				row := art.Weights[k]
				for i, x := range s.x {
					row[i] -= lr * (grad*x + cfg.L2*row[i])
				}
				art.Bias[k] -= lr * grad
			}
		}
	}

	hits := 0
	for _, s := range data {
		p := clf.Probabilities(s.x)
		if model.Argmax(p[:]) == s.label {
			hits++
		}
	}

	art.TrainedAt = time.Now().UTC()
	art.Metadata["run_id"] = t.runID
	art.Metadata["algorithm"] = "softmax-regression"
	art.Metadata["samples"] = strconv.Itoa(len(data))
	art.Metadata["epochs"] = strconv.Itoa(cfg.Epochs)

	res := &ClassifierResult{
		Artifact: art,
		Samples:  len(data),
		Accuracy: float64(hits) / float64(len(data)),
	}
	t.log.Info("classifier trained",
		"run_id", t.runID,
		"samples", res.Samples,
		"accuracy", res.Accuracy)
	return res, nil
}

// collect plays episodes with choose and labels every observation with the
// learner's target level at that point.
func (t *Trainer) collect(ctx context.Context, episodes int, choose func() difficulty.Action) ([]sample, error) {
	var data []sample
	for ep := range episodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obs, info := t.env.Reset()
		data = append(data, sample{x: obs, label: info.Target.Index()})
		for {
			res, err := t.env.Step(choose())
			if err != nil {
				return nil, fmt.Errorf("collect episode %d: %w", ep+1, err)
			}
			data = append(data, sample{x: res.Observation, label: res.Info.Target.Index()})
			if res.Done() {
				break
			}
		}
	}
	return data, nil
}
