// Package quiz is the terminal front end: one question at a time at the
// learner's current level, with feedback and the next level after each
// answer.
package quiz

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/performance"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/tips"
	"github.com/abhisek/quizladder/internal/ui/components"
)

// Deps are the collaborators of a quiz session. Events and Snapshots are
// optional; without them nothing is persisted.
type Deps struct {
	Bank       *questions.Bank
	Controller *engine.Controller
	Tips       *tips.Service
	Events     store.EventRepo
	Snapshots  store.SnapshotRepo
	Log        *logging.Logger
}

// Options tune a quiz session.
type Options struct {
	Language string
	Level    difficulty.Level
	// Resume continues from the latest saved snapshot.
	Resume bool
	// KeepSnapshots bounds how many snapshots are retained; zero keeps all.
	KeepSnapshots int
	Advisory      bool
	Act           engine.Source
	// Rand picks questions; nil uses the global source.
	Rand *rand.Rand
	// Now is the clock used to time answers.
	Now func() time.Time
}

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseFeedback
	phaseDone
)

// feedback is what the learner sees after answering.
type feedback struct {
	Answer  string
	Elapsed time.Duration
	Result  engine.DecisionResult
	// Tip is nil until the tip arrives.
	Tip *tips.Tip
}

// Model is the Bubble Tea model for a quiz session.
type Model struct {
	deps Deps
	opts Options

	sessionID   string
	language    string
	level       difficulty.Level
	perf        performance.Snapshot
	lastCorrect bool
	answered    int

	phase     phase
	question  questions.Question
	choice    components.MultiChoice
	input     components.TextInput
	useChoice bool
	started   time.Time
	feedback  *feedback
	err       error

	width  int
	height int
}

// New creates a quiz model. Missing options fall back to English at the
// easy level.
func New(deps Deps, opts Options) *Model {
	if deps.Log == nil {
		deps.Log = logging.Nop()
	}
	if deps.Tips == nil {
		deps.Tips = tips.NewService(nil, 0, deps.Log)
	}
	if deps.Controller == nil {
		deps.Controller = engine.NewController(nil, deps.Log)
	}
	if opts.Language == "" {
		opts.Language = questions.DefaultLanguage
	}
	if opts.Level == "" {
		opts.Level = difficulty.Easy
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Model{
		deps:      deps,
		opts:      opts,
		sessionID: uuid.New().String(),
		language:  opts.Language,
		level:     opts.Level,
	}
}

// Run starts the Bubble Tea program and blocks until the learner quits. It
// returns the final model so callers can report on the session.
func Run(deps Deps, opts Options) (*Model, error) {
	final, err := tea.NewProgram(New(deps, opts)).Run()
	if m, ok := final.(*Model); ok {
		return m, err
	}
	return nil, err
}

func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resumeMsg:
		return m, m.handleResume(msg)

	case tipMsg:
		if m.feedback != nil && msg.QuestionID == m.question.ID {
			tip := msg.Tip
			m.feedback.Tip = &tip
		}
		return m, nil

	case persistedMsg:
		if msg.Err != nil {
			m.deps.Log.Warn("failed to persist answer", "session", m.sessionID, "error", msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	if m.phase == phaseQuestion && !m.useChoice {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch m.phase {
	case phaseQuestion:
		if m.useChoice {
			if key == "q" || key == "esc" {
				return tea.Quit
			}
			var cmd tea.Cmd
			m.choice, cmd = m.choice.Update(msg)
			if chosen, ok := m.choice.Chosen(); ok {
				return tea.Batch(cmd, m.submit(chosen))
			}
			return cmd
		}
		switch key {
		case "esc":
			return tea.Quit
		case "enter":
			if m.input.Value() == "" {
				return nil
			}
			return m.submit(m.input.Value())
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd

	case phaseFeedback:
		switch key {
		case "q", "esc":
			return tea.Quit
		case "enter", "space", " ", "n":
			return m.next()
		}

	case phaseDone, phaseLoading:
		if key == "q" || key == "esc" || key == "enter" {
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) loadSnapshot() tea.Cmd {
	if !m.opts.Resume || m.deps.Snapshots == nil {
		return func() tea.Msg { return resumeMsg{} }
	}
	repo := m.deps.Snapshots
	return func() tea.Msg {
		snap, err := repo.Latest(context.Background())
		if err != nil || snap == nil {
			return resumeMsg{Err: err}
		}
		return resumeMsg{Data: &snap.Data}
	}
}

func (m *Model) handleResume(msg resumeMsg) tea.Cmd {
	switch {
	case msg.Err != nil:
		m.deps.Log.Warn("could not load saved session, starting fresh", "error", msg.Err)
	case msg.Data != nil:
		m.restore(*msg.Data)
	}
	return m.next()
}

// restore adopts a saved session unless it is from another snapshot format
// or carries counts the engine would reject.
func (m *Model) restore(d store.SnapshotData) {
	if d.Version != store.SnapshotVersion || !d.Level.Valid() || !d.Performance.Valid() {
		m.deps.Log.Warn("ignoring incompatible saved session", "version", d.Version, "level", d.Level)
		return
	}
	if d.SessionID != "" {
		m.sessionID = d.SessionID
	}
	if questions.SupportedLanguage(d.Language) {
		m.language = d.Language
	}
	m.level = d.Level
	m.perf = d.Performance
	m.lastCorrect = d.LastCorrect
	m.deps.Log.Info("resumed session", "session", m.sessionID, "level", m.level, "answered", m.perf.Total())
}

// next asks a new question at the current level, avoiding an immediate
// repeat when the level has alternatives.
func (m *Model) next() tea.Cmd {
	prev := m.question.ID
	var (
		q   questions.Question
		err error
	)
	for range 3 {
		q, err = m.deps.Bank.Pick(m.opts.Rand, m.language, m.level)
		if err != nil || q.ID != prev {
			break
		}
	}
	if err != nil {
		m.err = err
		m.phase = phaseDone
		return nil
	}

	m.question = q
	m.feedback = nil
	m.phase = phaseQuestion
	m.started = m.opts.Now()

	if len(q.Options) > 0 {
		m.useChoice = true
		m.choice = components.NewMultiChoice(q.Question, q.Options, correctIndex(q))
		return nil
	}
	m.useChoice = false
	m.input = components.NewTextInput("Type your answer...", 64)
	return m.input.Init()
}

func correctIndex(q questions.Question) int {
	for i, opt := range q.Options {
		if questions.CheckAnswer(q, opt) {
			return i
		}
	}
	return -1
}

// submit decides the next level and kicks off the tip and persistence.
func (m *Model) submit(answer string) tea.Cmd {
	elapsed := m.opts.Now().Sub(m.started)
	correct := questions.CheckAnswer(m.question, answer)
	level := m.level

	res, err := m.deps.Controller.Decide(engine.DecisionRequest{
		Level:        level,
		Correct:      correct,
		Snapshot:     m.perf,
		ResponseTime: elapsed,
		Advisory:     m.opts.Advisory,
		Act:          m.opts.Act,
	})
	if err != nil {
		m.err = err
		m.phase = phaseDone
		return nil
	}
	if !m.useChoice {
		m.input.Submit(correct)
	}

	m.perf = res.Snapshot
	m.lastCorrect = correct
	m.level = res.NextLevel
	m.answered++
	m.feedback = &feedback{Answer: answer, Elapsed: elapsed, Result: res}
	m.phase = phaseFeedback

	return tea.Batch(
		m.fetchTip(m.question, answer, correct),
		m.persist(m.question.ID, level, res, elapsed),
	)
}

func (m *Model) fetchTip(q questions.Question, answer string, correct bool) tea.Cmd {
	svc := m.deps.Tips
	return func() tea.Msg {
		return tipMsg{QuestionID: q.ID, Tip: svc.For(context.Background(), q, answer, correct)}
	}
}

// persist records the decision and saves a snapshot to resume from.
func (m *Model) persist(questionID string, level difficulty.Level, res engine.DecisionResult, elapsed time.Duration) tea.Cmd {
	events, snaps := m.deps.Events, m.deps.Snapshots
	if events == nil && snaps == nil {
		return nil
	}
	data := res.EventData(m.sessionID, questionID, level, elapsed.Milliseconds())
	snap := &store.Snapshot{Data: m.snapshotData()}
	keep := m.opts.KeepSnapshots

	return func() tea.Msg {
		ctx := context.Background()
		var errs []error
		if events != nil {
			errs = append(errs, events.AppendDecision(ctx, data))
		}
		if snaps != nil {
			if err := snaps.Save(ctx, snap); err != nil {
				errs = append(errs, err)
			} else if keep > 0 {
				errs = append(errs, snaps.Prune(ctx, keep))
			}
		}
		return persistedMsg{Err: errors.Join(errs...)}
	}
}

func (m *Model) snapshotData() store.SnapshotData {
	return store.SnapshotData{
		Version:     store.SnapshotVersion,
		SessionID:   m.sessionID,
		Level:       m.level,
		Language:    m.language,
		Performance: m.perf,
		LastCorrect: m.lastCorrect,
	}
}

// Level returns the level the next question will be asked at.
func (m *Model) Level() difficulty.Level {
	return m.level
}

// Performance returns the session's running counts.
func (m *Model) Performance() performance.Snapshot {
	return m.perf
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}
