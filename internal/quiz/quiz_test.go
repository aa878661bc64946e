package quiz

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/performance"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/tips"
)

type mockSnapshotRepo struct {
	snapshots []*store.Snapshot
	pruned    []int
	latestErr error
}

func (m *mockSnapshotRepo) Save(_ context.Context, snap *store.Snapshot) error {
	m.snapshots = append(m.snapshots, snap)
	return nil
}

func (m *mockSnapshotRepo) Latest(_ context.Context) (*store.Snapshot, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	if len(m.snapshots) == 0 {
		return nil, nil
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

func (m *mockSnapshotRepo) Prune(_ context.Context, keep int) error {
	m.pruned = append(m.pruned, keep)
	return nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testBank(t *testing.T) *questions.Bank {
	t.Helper()
	b, err := questions.New([]questions.Question{
		{ID: "e1", Question: "2 + 2?", Options: []string{"3", "4", "5"}, Answer: "4", Difficulty: difficulty.Easy, Language: "en", Tip: "Count on your fingers."},
		{ID: "m1", Question: "12 x 3?", Options: []string{"36", "32"}, Answer: "36", Difficulty: difficulty.Medium, Language: "en"},
		{ID: "h1", Question: "Type the derivative of x^2", Answer: "2x", Difficulty: difficulty.Hard, Language: "en"},
		{ID: "fh", Question: "Racine carrée de 144 ?", Options: []string{"12", "14"}, Answer: "12", Difficulty: difficulty.Hard, Language: "fr"},
	})
	require.NoError(t, err)
	return b
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// drain runs cmd and feeds every resulting message back into m, reporting
// whether the program asked to quit.
func drain(m *Model, cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case nil:
		return false
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		quit := false
		for _, c := range msg {
			if drain(m, c) {
				quit = true
			}
		}
		return quit
	default:
		_, next := m.Update(msg)
		return drain(m, next)
	}
}

// start delivers the resume message without running follow-up commands,
// which for free-text questions include the cursor blink loop.
func start(m *Model) {
	m.Update(m.Init()())
}

func send(m *Model, msg tea.Msg) bool {
	_, cmd := m.Update(msg)
	return drain(m, cmd)
}

func newTestModel(t *testing.T, snaps store.SnapshotRepo, opts Options) (*Model, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	opts.Now = c.Now
	m := New(Deps{Bank: testBank(t), Snapshots: snaps}, opts)
	start(m)
	return m, c
}

func TestQuiz_StartsAtRequestedLevel(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{})

	assert.Equal(t, phaseQuestion, m.phase)
	assert.Equal(t, "e1", m.question.ID)
	assert.True(t, m.useChoice)
	assert.Equal(t, 1, m.choice.CorrectIndex)
	assert.Equal(t, difficulty.Easy, m.Level())
}

func TestQuiz_CorrectAnswerPromotes(t *testing.T) {
	snaps := &mockSnapshotRepo{}
	m, c := newTestModel(t, snaps, Options{KeepSnapshots: 5})

	c.Advance(4 * time.Second)
	require.False(t, send(m, keyPress('2')))

	require.Equal(t, phaseFeedback, m.phase)
	fb := m.feedback
	require.NotNil(t, fb)
	assert.True(t, fb.Result.Correct)
	assert.Equal(t, "4", fb.Answer)
	assert.Equal(t, 4*time.Second, fb.Elapsed)
	assert.Equal(t, "100.00%", fb.Result.AccuracyText)
	require.NotNil(t, fb.Tip)
	assert.Equal(t, tips.PraiseTip, fb.Tip.Text)
	assert.Equal(t, difficulty.Medium, m.Level())

	require.Len(t, snaps.snapshots, 1)
	saved := snaps.snapshots[0].Data
	assert.Equal(t, store.SnapshotVersion, saved.Version)
	assert.Equal(t, difficulty.Medium, saved.Level)
	assert.Equal(t, 1, saved.Performance.Correct)
	assert.Equal(t, int64(4000), saved.Performance.ResponseMs)
	assert.True(t, saved.LastCorrect)
	assert.Equal(t, []int{5}, snaps.pruned)
}

func TestQuiz_WrongAnswerShowsQuestionTip(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{})

	require.False(t, send(m, keyPress('a')))

	require.NotNil(t, m.feedback)
	assert.False(t, m.feedback.Result.Correct)
	require.NotNil(t, m.feedback.Tip)
	assert.Equal(t, "Count on your fingers.", m.feedback.Tip.Text)
	assert.Equal(t, difficulty.Easy, m.Level())
	assert.Equal(t, performance.Snapshot{Incorrect: 1, Timed: 1}, m.Performance())
	assert.Contains(t, m.render(80), "The answer was 4.")
}

func TestQuiz_NextQuestionAtNewLevel(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{})

	send(m, specialKey(tea.KeyEnter)) // cursor starts on "3"
	assert.Equal(t, difficulty.Easy, m.Level())
	send(m, specialKey(tea.KeyEnter))
	assert.Equal(t, phaseQuestion, m.phase)
	assert.Equal(t, "e1", m.question.ID)

	send(m, keyPress('2'))
	send(m, keyPress('n'))
	assert.Equal(t, phaseQuestion, m.phase)
	assert.Equal(t, "m1", m.question.ID)
	assert.Equal(t, 2, m.answered)
}

func TestQuiz_TipForStaleQuestionIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{})
	_, cmd := m.Update(keyPress('2'))
	assert.NotNil(t, cmd)

	m.Update(tipMsg{QuestionID: "other", Tip: tips.Tip{Text: "nope"}})
	assert.Nil(t, m.feedback.Tip)
	assert.Contains(t, m.render(80), "Fetching a tip...")
}

func TestQuiz_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyPressMsg
	}{
		{"q", keyPress('q')},
		{"esc", specialKey(tea.KeyEscape)},
		{"ctrl+c", tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, nil, Options{})
			assert.True(t, send(m, tt.msg))
		})
	}
}

func TestQuiz_Resume(t *testing.T) {
	snaps := &mockSnapshotRepo{snapshots: []*store.Snapshot{{
		Data: store.SnapshotData{
			Version:     store.SnapshotVersion,
			SessionID:   "saved-session",
			Level:       difficulty.Hard,
			Language:    "fr",
			Performance: performance.Snapshot{Correct: 3, Incorrect: 1},
			LastCorrect: true,
		},
	}}}
	m, _ := newTestModel(t, snaps, Options{Resume: true})

	assert.Equal(t, "saved-session", m.sessionID)
	assert.Equal(t, "fh", m.question.ID)
	assert.Equal(t, 4, m.Performance().Total())

	send(m, keyPress('1'))
	assert.Equal(t, "80.00%", m.feedback.Result.AccuracyText)
	assert.Equal(t, difficulty.Hard, m.Level())
}

func TestQuiz_ResumeIgnoresIncompatibleSnapshot(t *testing.T) {
	snaps := &mockSnapshotRepo{snapshots: []*store.Snapshot{{
		Data: store.SnapshotData{Version: 99, Level: difficulty.Hard},
	}}}
	m, _ := newTestModel(t, snaps, Options{Resume: true})

	assert.Equal(t, difficulty.Easy, m.Level())
	assert.Equal(t, "e1", m.question.ID)
}

func TestQuiz_ResumeErrorStartsFresh(t *testing.T) {
	snaps := &mockSnapshotRepo{latestErr: errors.New("disk gone")}
	m, _ := newTestModel(t, snaps, Options{Resume: true, Level: difficulty.Medium})

	assert.Equal(t, phaseQuestion, m.phase)
	assert.Equal(t, "m1", m.question.ID)
}

func TestQuiz_NoQuestions(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{Language: "de"})

	assert.Equal(t, phaseDone, m.phase)
	require.Error(t, m.Err())
	assert.ErrorIs(t, m.Err(), questions.ErrNoQuestions)
	assert.Contains(t, m.render(80), "no questions available")
	assert.True(t, send(m, keyPress('q')))
}

func TestQuiz_FreeTextAnswer(t *testing.T) {
	m, c := newTestModel(t, nil, Options{Level: difficulty.Hard})
	require.False(t, m.useChoice)

	// Empty answers are not submitted.
	m.Update(specialKey(tea.KeyEnter))
	assert.Equal(t, phaseQuestion, m.phase)

	for _, r := range "2X" {
		m.Update(keyPress(r))
	}
	c.Advance(1500 * time.Millisecond)
	send(m, specialKey(tea.KeyEnter))

	require.Equal(t, phaseFeedback, m.phase)
	assert.True(t, m.feedback.Result.Correct)
	assert.Equal(t, difficulty.Hard, m.Level())
	assert.Contains(t, m.render(80), "Time taken: 1.5s")
}

func TestQuiz_RecordsToStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	c := &clock{now: time.Now()}
	m := New(Deps{
		Bank:      testBank(t),
		Events:    s.EventRepo(),
		Snapshots: s.SnapshotRepo(),
	}, Options{KeepSnapshots: 1, Now: c.Now})
	start(m)

	send(m, keyPress('2'))
	send(m, specialKey(tea.KeyEnter))
	send(m, keyPress('1'))

	ctx := context.Background()
	recs, err := s.EventRepo().QueryDecisions(ctx, store.QueryOpts{SessionID: m.sessionID})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Newest first.
	assert.Equal(t, "m1", recs[0].QuestionID)
	assert.Equal(t, difficulty.Medium, recs[0].Level)
	assert.Equal(t, "e1", recs[1].QuestionID)

	latest, err := s.SnapshotRepo().Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, difficulty.Hard, latest.Data.Level)
	assert.Equal(t, 2, latest.Data.Performance.Correct)

	resumed := New(Deps{Bank: testBank(t), Snapshots: s.SnapshotRepo()}, Options{Resume: true})
	start(resumed)
	assert.Equal(t, m.sessionID, resumed.sessionID)
	assert.Equal(t, difficulty.Hard, resumed.Level())
}

func TestQuiz_Summary(t *testing.T) {
	m, _ := newTestModel(t, nil, Options{})
	assert.Equal(t, "No questions answered.", m.Summary())

	send(m, keyPress('2'))
	assert.Equal(t, "Answered 1 (en), accuracy 100.00%, next level medium.", m.Summary())
}
