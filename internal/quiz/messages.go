package quiz

import (
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/tips"
)

// resumeMsg carries the snapshot to resume from, if any.
type resumeMsg struct {
	Data *store.SnapshotData
	Err  error
}

// tipMsg delivers the tip for an answered question.
type tipMsg struct {
	QuestionID string
	Tip        tips.Tip
}

// persistedMsg reports the outcome of recording an answer.
type persistedMsg struct {
	Err error
}
