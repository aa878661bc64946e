package engine

import (
	"github.com/abhisek/quizladder/internal/difficulty"
	"github.com/abhisek/quizladder/internal/store"
)

// EventData converts a decision taken at level into the event recorded for
// it.
func (r DecisionResult) EventData(sessionID, questionID string, level difficulty.Level, responseMs int64) store.DecisionEventData {
	data := store.DecisionEventData{
		SessionID:  sessionID,
		QuestionID: questionID,
		Level:      level,
		Correct:    r.Correct,
		ResponseMs: responseMs,
		Accuracy:   r.Accuracy,
		NextLevel:  r.NextLevel,
		Source:     string(r.Source),
	}
	if adv := r.Advisory; adv != nil {
		data.ClassifierScore = adv.ClassifierScore
		if adv.PolicyAction != nil {
			data.PolicyAction = adv.PolicyAction.String()
		}
		data.HeuristicOnly = adv.HeuristicOnly
	}
	return data
}
