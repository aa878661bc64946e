// Package fault defines the error taxonomy shared by the decision engine,
// the model adapters and the simulated environment.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks malformed caller data: an unknown difficulty
	// token, a feature vector of the wrong width, a raw action out of range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable marks a model artifact that is missing or corrupt.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEpisodeMisuse marks a Step call on an environment whose episode has
	// not been started or has already ended.
	ErrEpisodeMisuse = errors.New("episode misuse")
)

// ModelError reports why a model artifact could not be used.
// errors.Is(err, ErrModelUnavailable) holds for every ModelError.
type ModelError struct {
	Kind string // "classifier" or "policy"
	Path string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s model unavailable: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s model unavailable (%s): %v", e.Kind, e.Path, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func (e *ModelError) Is(target error) bool { return target == ErrModelUnavailable }

// Invalid wraps a formatted message with ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
