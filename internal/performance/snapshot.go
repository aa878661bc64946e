package performance

import (
	"fmt"
	"time"
)

// Snapshot holds a learner's running answer counts. The caller owns it; the
// decision engine only ever works on copies.
type Snapshot struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	// ResponseMs is the cumulative time spent answering, in milliseconds.
	// Only answers recorded with RecordTimed contribute.
	ResponseMs int64 `json:"response_ms,omitempty"`
	// Timed counts the answers that contributed to ResponseMs.
	Timed int `json:"timed,omitempty"`
}

// Record adds one outcome.
func (s *Snapshot) Record(correct bool) {
	if correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
}

// RecordTimed adds one outcome together with how long the answer took.
// Negative durations count as zero.
func (s *Snapshot) RecordTimed(correct bool, elapsed time.Duration) {
	s.Record(correct)
	if elapsed > 0 {
		s.ResponseMs += elapsed.Milliseconds()
	}
	s.Timed++
}

// Total returns the number of recorded attempts.
func (s Snapshot) Total() int {
	return s.Correct + s.Incorrect
}

// Accuracy returns the percentage of correct answers in [0,100], or 0 when
// nothing has been recorded.
func (s Snapshot) Accuracy() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return 100 * float64(s.Correct) / float64(total)
}

// MeanResponse returns the average timed response, or 0 if none were timed.
func (s Snapshot) MeanResponse() time.Duration {
	if s.Timed == 0 {
		return 0
	}
	return time.Duration(s.ResponseMs/int64(s.Timed)) * time.Millisecond
}

// Valid reports whether the counts are non-negative.
func (s Snapshot) Valid() bool {
	return s.Correct >= 0 && s.Incorrect >= 0 && s.ResponseMs >= 0 && s.Timed >= 0
}

// FormatAccuracy renders an accuracy percentage as "80.00%".
func FormatAccuracy(accuracy float64) string {
	return fmt.Sprintf("%.2f%%", accuracy)
}
