package difficulty

import "github.com/abhisek/quizladder/internal/fault"

// Action is the discrete adjustment a policy proposes for the next question.
// The numeric values match the policy's output indexes.
type Action int

const (
	Easier Action = iota
	Same
	Harder
)

// NumActions is the size of the policy's action space.
const NumActions = 3

func (a Action) String() string {
	switch a {
	case Easier:
		return "EASIER"
	case Same:
		return "SAME"
	case Harder:
		return "HARDER"
	}
	return "UNKNOWN"
}

// MarshalText renders the action as EASIER, SAME or HARDER.
func (a Action) MarshalText() ([]byte, error) {
	if _, err := ActionFromIndex(int(a)); err != nil {
		return nil, err
	}
	return []byte(a.String()), nil
}

// ActionFromIndex normalises a raw policy output into an Action.
func ActionFromIndex(i int) (Action, error) {
	switch Action(i) {
	case Easier, Same, Harder:
		return Action(i), nil
	}
	return 0, fault.Invalid("action index %d out of range [0,%d)", i, NumActions)
}

// Promote moves one rung up the ladder. Hard saturates at hard.
func Promote(l Level) Level {
	switch l {
	case Easy:
		return Medium
	case Medium:
		return Hard
	case Hard:
		return Hard
	}
	return Medium
}

// Demote moves one rung down the ladder. Easy saturates at easy.
func Demote(l Level) Level {
	switch l {
	case Hard:
		return Medium
	case Medium:
		return Easy
	case Easy:
		return Easy
	}
	return Easy
}

// Apply moves l according to a policy action.
func Apply(l Level, a Action) Level {
	switch a {
	case Easier:
		return Demote(l)
	case Harder:
		return Promote(l)
	}
	return l
}

// Next is the heuristic rule: promote after a correct answer, demote after
// an incorrect one.
func Next(l Level, correct bool) Level {
	if correct {
		return Promote(l)
	}
	return Demote(l)
}
