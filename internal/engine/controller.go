// Package engine turns one answer outcome into the next difficulty level.
//
// The rule-based ladder is authoritative. The classifier and the policy are
// consulted only when a caller asks for advice, and their absence or failure
// degrades the result to heuristic-only instead of failing the request.
package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/performance"
)

var errNotConfigured = errors.New("not configured")

// Source names what chose the next level.
type Source string

const (
	SourceHeuristic  Source = "heuristic"
	SourceClassifier Source = "classifier"
	SourcePolicy     Source = "policy"
)

// ParseSource parses a Source; the empty string is the heuristic.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceHeuristic:
		return SourceHeuristic, nil
	case SourceClassifier, SourcePolicy:
		return Source(s), nil
	}
	return "", fault.Invalid("unknown decision source %q", s)
}

// DefaultMaxResponse normalises response times for session features.
const DefaultMaxResponse = 60 * time.Second

// DecisionRequest is one answer outcome.
type DecisionRequest struct {
	Level    difficulty.Level
	Correct  bool
	Snapshot performance.Snapshot
	// ResponseTime is how long the answer took; zero records an untimed answer.
	ResponseTime time.Duration

	// Advisory asks for the classifier score and policy suggestion.
	Advisory bool
	// Features overrides the feature vector derived from the session.
	Features []float64
	// Act lets an advisory signal replace the heuristic when available.
	Act Source
}

// Advisory reports what the models said. Nil pointers mark signals that were
// not available.
type Advisory struct {
	ClassifierScore *float64           `json:"classifier_score"`
	PolicyAction    *difficulty.Action `json:"policy_action"`
	HeuristicOnly   bool               `json:"heuristic_only"`
	Reasons         []string           `json:"reasons,omitempty"`
}

// SimulationResult is the outcome of probing the models with a raw vector.
type SimulationResult = Advisory

// DecisionResult is the engine's answer to a DecisionRequest.
type DecisionResult struct {
	Correct      bool                   `json:"correct"`
	Snapshot     performance.Snapshot   `json:"snapshot"`
	Accuracy     float64                `json:"accuracy"`
	AccuracyText string                 `json:"accuracy_text"`
	Suggestion   performance.Suggestion `json:"suggestion"`
	// HeuristicLevel is what the ladder alone would pick.
	HeuristicLevel difficulty.Level `json:"heuristic_level"`
	NextLevel      difficulty.Level `json:"next_level"`
	Source         Source           `json:"source"`
	Advisory       *Advisory        `json:"advisory,omitempty"`
}

// Controller makes difficulty decisions. It holds no per-learner state.
type Controller struct {
	models      *Models
	log         *logging.Logger
	maxResponse time.Duration
}

// NewController returns a Controller over models. A nil models means none
// are available; a nil log discards output.
func NewController(models *Models, log *logging.Logger) *Controller {
	if models == nil {
		models = NoModels()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{models: models, log: log, maxResponse: DefaultMaxResponse}
}

// SetMaxResponse changes the response time that normalises session
// features. Non-positive values are ignored.
func (c *Controller) SetMaxResponse(d time.Duration) {
	if d > 0 {
		c.maxResponse = d
	}
}

// Models returns the controller's models.
func (c *Controller) Models() *Models {
	return c.models
}

// Decide records the outcome on a copy of the caller's snapshot and picks
// the next level. Only an invalid level or snapshot is an error.
func (c *Controller) Decide(req DecisionRequest) (DecisionResult, error) {
	if !req.Level.Valid() {
		return DecisionResult{}, fault.Invalid("unknown difficulty level %q", req.Level)
	}
	if !req.Snapshot.Valid() {
		return DecisionResult{}, fault.Invalid("snapshot has negative counts")
	}
	act, err := ParseSource(string(req.Act))
	if err != nil {
		return DecisionResult{}, err
	}

	snap := req.Snapshot
	if req.ResponseTime > 0 {
		snap.RecordTimed(req.Correct, req.ResponseTime)
	} else {
		snap.Record(req.Correct)
	}

	acc := snap.Accuracy()
	heuristic := difficulty.Next(req.Level, req.Correct)
	res := DecisionResult{
		Correct:        req.Correct,
		Snapshot:       snap,
		Accuracy:       acc,
		AccuracyText:   performance.FormatAccuracy(acc),
		Suggestion:     performance.Suggest(acc),
		HeuristicLevel: heuristic,
		NextLevel:      heuristic,
		Source:         SourceHeuristic,
	}

	if req.Advisory || act != SourceHeuristic {
		adv := c.advise(req, snap)
		res.Advisory = &adv
		switch act {
		case SourceClassifier:
			if adv.ClassifierScore != nil {
				res.NextLevel = LevelForScore(*adv.ClassifierScore)
				res.Source = SourceClassifier
			}
		case SourcePolicy:
			if adv.PolicyAction != nil {
				res.NextLevel = difficulty.Apply(req.Level, *adv.PolicyAction)
				res.Source = SourcePolicy
			}
		case SourceHeuristic:
		}
	}

	c.log.Debug("decision",
		"level", req.Level,
		"correct", req.Correct,
		"accuracy", res.AccuracyText,
		"next_level", res.NextLevel,
		"source", res.Source)
	return res, nil
}

// Simulate probes both models with a raw feature vector. Malformed input
// and missing models are reported in the result, never returned as errors.
func (c *Controller) Simulate(raw []float64) SimulationResult {
	v, err := features.FromSlice(raw)
	if err != nil {
		c.log.Debug("simulate rejected features", "error", err)
		return SimulationResult{HeuristicOnly: true, Reasons: []string{err.Error()}}
	}
	return c.query(v)
}

func (c *Controller) advise(req DecisionRequest, snap performance.Snapshot) Advisory {
	if len(req.Features) > 0 {
		return c.Simulate(req.Features)
	}
	return c.query(features.ForSession(req.Level, snap, req.Correct, c.maxResponse))
}

func (c *Controller) query(v features.Vector) Advisory {
	var adv Advisory
	unavailable := func(what string, err error) {
		adv.HeuristicOnly = true
		adv.Reasons = append(adv.Reasons, fmt.Sprintf("%s: %v", what, err))
	}

	if c.models.Classifier == nil {
		unavailable("classifier", c.models.classifierErr())
	} else if score, err := c.models.Classifier.Predict(v); err != nil {
		unavailable("classifier", err)
	} else {
		adv.ClassifierScore = &score
	}

	if c.models.Policy == nil {
		unavailable("policy", c.models.policyErr())
	} else if action, err := c.models.Policy.Predict(v); err != nil {
		unavailable("policy", err)
	} else {
		adv.PolicyAction = &action
	}

	return adv
}

// LevelForScore rounds a classifier score on [0, 2] to the nearest level.
func LevelForScore(score float64) difficulty.Level {
	return difficulty.LevelFromIndex(int(math.Round(score)))
}
