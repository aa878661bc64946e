package difficulty

import (
	"strings"

	"github.com/abhisek/quizladder/internal/fault"
)

// Level is a question difficulty. The question bank, the ladder and the
// models all share this vocabulary.
type Level string

const (
	Easy   Level = "easy"
	Medium Level = "medium"
	Hard   Level = "hard"
)

// NumLevels is the number of rungs on the ladder.
const NumLevels = 3

// All returns the levels in ascending order.
func All() []Level {
	return []Level{Easy, Medium, Hard}
}

// Parse converts a token such as "Medium " into a Level.
func Parse(token string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(token))); l {
	case Easy, Medium, Hard:
		return l, nil
	default:
		return "", fault.Invalid("unknown difficulty %q", token)
	}
}

// Valid reports whether l is one of the three ladder levels.
func (l Level) Valid() bool {
	switch l {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Index returns the ladder position: 0 for easy, 1 for medium, 2 for hard.
// Invalid levels map to -1.
func (l Level) Index() int {
	switch l {
	case Easy:
		return 0
	case Medium:
		return 1
	case Hard:
		return 2
	}
	return -1
}

// Value returns the nominal difficulty of the level on [0,1], used by the
// simulated learner to compare against latent ability.
func (l Level) Value() float64 {
	switch l {
	case Easy:
		return 0.2
	case Medium:
		return 0.5
	case Hard:
		return 0.8
	}
	return 0
}

// LevelFromIndex maps a ladder position back to a Level, clamping
// out-of-range indexes to the nearest end.
func LevelFromIndex(i int) Level {
	switch {
	case i <= 0:
		return Easy
	case i == 1:
		return Medium
	default:
		return Hard
	}
}

func (l Level) String() string { return string(l) }

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fault.Invalid("unknown difficulty %q", string(l))
	}
	return []byte(l), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON and YAML
// documents reject unknown difficulty tokens at decode time.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
