// Package environment simulates a learner answering questions so that the
// difficulty policy can be trained and evaluated offline.
//
// An Environment is owned by a single goroutine. Each episode starts with
// Reset and ends when Step reports terminated or truncated; stepping a
// finished episode returns fault.ErrEpisodeMisuse.
package environment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/fault"
	"github.com/abhisek/quizladder/internal/features"
)

// Transition is one history entry: the level presented and the reward earned.
type Transition struct {
	Level  difficulty.Level `json:"level"`
	Reward float64          `json:"reward"`
}

// Info exposes simulator internals for inspection and logging.
type Info struct {
	Step     int
	Level    difficulty.Level
	Target   difficulty.Level
	Ability  float64
	Correct  bool
	Response time.Duration
}

// StepResult is everything Step returns.
type StepResult struct {
	Observation features.Vector
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done reports whether the step ended the episode.
func (r StepResult) Done() bool {
	return r.Terminated || r.Truncated
}

// episode is the per-episode state, discarded at the next Reset.
type episode struct {
	level   difficulty.Level
	step    int
	ability float64
	history []Transition
	done    bool

	recent          []bool
	correct         int
	correctStreak   int
	incorrectStreak int
	lastCorrect     bool
	lastReward      float64
	lastResponse    time.Duration
	totalResponse   time.Duration
	levelSteps      [difficulty.NumLevels]int
}

// Environment is a single-learner simulator with bounded episodes.
type Environment struct {
	cfg Config
	rng *rand.Rand
	ep  *episode
}

// New creates an environment. The configuration is validated first.
func New(cfg Config) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("environment config: %w", err)
	}
	return &Environment{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Config returns the environment's configuration.
func (e *Environment) Config() Config {
	return e.cfg
}

// Reset starts a new episode with a freshly drawn learner.
func (e *Environment) Reset() (features.Vector, Info) {
	level := e.cfg.StartLevel
	if e.cfg.RandomStart {
		level = difficulty.LevelFromIndex(e.rng.IntN(difficulty.NumLevels))
	}
	ability := e.cfg.AbilityMin + e.rng.Float64()*(e.cfg.AbilityMax-e.cfg.AbilityMin)

	e.ep = &episode{
		level:   level,
		ability: ability,
	}
	return e.observe(), e.info(false)
}

// Step applies action, simulates the learner's answer at the resulting
// level and scores the choice.
func (e *Environment) Step(action difficulty.Action) (StepResult, error) {
	if e.ep == nil {
		return StepResult{}, fmt.Errorf("%w: step called before reset", fault.ErrEpisodeMisuse)
	}
	if e.ep.done {
		return StepResult{}, fmt.Errorf("%w: step called after the episode ended at step %d", fault.ErrEpisodeMisuse, e.ep.step)
	}
	if _, err := difficulty.ActionFromIndex(int(action)); err != nil {
		return StepResult{}, err
	}

	ep := e.ep
	ep.level = difficulty.Apply(ep.level, action)

	correct := e.rng.Float64() < e.correctProbability(ep.ability, ep.level)
	response := e.responseTime(ep.ability, ep.level)
	reward := e.cfg.Reward(ep.ability, ep.level)

	if correct && ep.level.Index() >= TargetLevel(ep.ability).Index() {
		ep.ability = math.Min(1, ep.ability+e.cfg.LearningRate*(1-ep.ability))
	}

	ep.step++
	ep.history = append(ep.history, Transition{Level: ep.level, Reward: reward})
	ep.levelSteps[ep.level.Index()]++
	ep.recordAnswer(correct, e.cfg.RecentWindow)
	ep.lastReward = reward
	ep.lastResponse = response
	ep.totalResponse += response

	terminated := ep.step >= e.cfg.MaxSteps
	truncated := !terminated && e.cfg.TruncateAfter > 0 && ep.step >= e.cfg.TruncateAfter
	ep.done = terminated || truncated

	return StepResult{
		Observation: e.observe(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   truncated,
		Info:        e.info(correct),
	}, nil
}

// History returns a copy of the current episode's (level, reward) pairs.
func (e *Environment) History() []Transition {
	if e.ep == nil {
		return nil
	}
	out := make([]Transition, len(e.ep.history))
	copy(out, e.ep.history)
	return out
}

// Level returns the level the current episode is at.
func (e *Environment) Level() difficulty.Level {
	if e.ep == nil {
		return e.cfg.StartLevel
	}
	return e.ep.level
}

// correctProbability is a logistic curve over the ability/difficulty gap.
func (e *Environment) correctProbability(ability float64, level difficulty.Level) float64 {
	x := e.cfg.Sharpness * (ability - level.Value())
	return 1 / (1 + math.Exp(-x))
}

// responseTime grows when the question sits above the learner's ability,
// with ±20% noise, bounded to [1s, MaxResponse].
func (e *Environment) responseTime(ability float64, level difficulty.Level) time.Duration {
	gap := level.Value() - ability
	noise := 0.8 + 0.4*e.rng.Float64()
	d := time.Duration(float64(e.cfg.BaseResponse) * (1 + gap) * noise)
	if d < time.Second {
		d = time.Second
	}
	if d > e.cfg.MaxResponse {
		d = e.cfg.MaxResponse
	}
	return d
}

func (e *Environment) observe() features.Vector {
	ep := e.ep
	in := features.Input{
		Ability:         ep.ability,
		Level:           ep.level,
		Progress:        float64(ep.step) / float64(e.cfg.MaxSteps),
		LastCorrect:     ep.lastCorrect,
		LastReward:      ep.lastReward,
		RecentAccuracy:  ep.recentAccuracy(),
		CorrectStreak:   ep.correctStreak,
		IncorrectStreak: ep.incorrectStreak,
		LastResponse:    ep.lastResponse,
		MaxResponse:     e.cfg.MaxResponse,
	}
	if ep.step > 0 {
		in.OverallAccuracy = float64(ep.correct) / float64(ep.step)
		in.MeanResponse = ep.totalResponse / time.Duration(ep.step)
		for i, n := range ep.levelSteps {
			in.LevelShare[i] = float64(n) / float64(ep.step)
		}
	}
	return features.Build(in)
}

func (e *Environment) info(correct bool) Info {
	ep := e.ep
	return Info{
		Step:     ep.step,
		Level:    ep.level,
		Target:   TargetLevel(ep.ability),
		Ability:  ep.ability,
		Correct:  correct,
		Response: ep.lastResponse,
	}
}

func (ep *episode) recordAnswer(correct bool, window int) {
	ep.lastCorrect = correct
	ep.recent = append(ep.recent, correct)
	if len(ep.recent) > window {
		ep.recent = ep.recent[len(ep.recent)-window:]
	}
	if correct {
		ep.correct++
		ep.correctStreak++
		ep.incorrectStreak = 0
	} else {
		ep.incorrectStreak++
		ep.correctStreak = 0
	}
}

func (ep *episode) recentAccuracy() float64 {
	if len(ep.recent) == 0 {
		return 0
	}
	n := 0
	for _, c := range ep.recent {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(ep.recent))
}
