package training

import (
	"context"
	"encoding/json"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/abhisek/quizladder/internal/environment"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/store"
)

// Episode kinds written to the store.
const (
	KindTrain    = "train"
	KindEvaluate = "evaluate"
)

// Recorder persists finished episodes. store.EventRepo satisfies it.
type Recorder interface {
	AppendEpisode(ctx context.Context, data store.EpisodeEventData) error
}

// EpisodeSummary is the outcome of one finished episode.
type EpisodeSummary struct {
	Episode     int                      `json:"episode"`
	Steps       int                      `json:"steps"`
	TotalReward float64                  `json:"total_reward"`
	Truncated   bool                     `json:"truncated,omitempty"`
	History     []environment.Transition `json:"history,omitempty"`
}

// Trainer runs training and evaluation against one environment. It is not
// safe for concurrent use.
type Trainer struct {
	env      *environment.Environment
	recorder Recorder
	log      *logging.Logger
	runID    string
}

// NewTrainer wraps env. recorder and log may be nil.
func NewTrainer(env *environment.Environment, recorder Recorder, log *logging.Logger) *Trainer {
	if log == nil {
		log = logging.Nop()
	}
	return &Trainer{
		env:      env,
		recorder: recorder,
		log:      log,
		runID:    uuid.NewString(),
	}
}

// RunID identifies this trainer's episodes in the store.
func (t *Trainer) RunID() string {
	return t.runID
}

// record writes a finished episode. Storage failures are logged and
// otherwise ignored.
func (t *Trainer) record(ctx context.Context, kind string, ep EpisodeSummary) {
	if t.recorder == nil {
		return
	}
	history, err := json.Marshal(ep.History)
	if err != nil {
		t.log.Warn("encode episode history", "error", err)
		return
	}
	err = t.recorder.AppendEpisode(ctx, store.EpisodeEventData{
		RunID:       t.runID,
		Kind:        kind,
		Episode:     ep.Episode,
		Steps:       ep.Steps,
		TotalReward: ep.TotalReward,
		History:     string(history),
	})
	if err != nil {
		t.log.Warn("failed to record episode", "run_id", t.runID, "episode", ep.Episode, "error", err)
	}
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
