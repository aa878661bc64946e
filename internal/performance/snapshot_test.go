package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSnapshot_Accuracy_NoAttempts(t *testing.T) {
	var s Snapshot
	if got := s.Accuracy(); got != 0 {
		t.Errorf("Accuracy = %f, want 0", got)
	}
}

func TestSnapshot_Accuracy_EightOfTen(t *testing.T) {
	s := Snapshot{Correct: 8, Incorrect: 2}
	if !almostEqual(s.Accuracy(), 80.0) {
		t.Errorf("Accuracy = %f, want 80", s.Accuracy())
	}
	assert.Equal(t, "80.00%", FormatAccuracy(s.Accuracy()))
}

func TestSnapshot_Record(t *testing.T) {
	var s Snapshot
	s.Record(true)
	s.Record(true)
	s.Record(false)
	s.Record(true)

	if s.Correct != 3 {
		t.Errorf("Correct = %d, want 3", s.Correct)
	}
	if s.Incorrect != 1 {
		t.Errorf("Incorrect = %d, want 1", s.Incorrect)
	}
	if s.Total() != 4 {
		t.Errorf("Total = %d, want 4", s.Total())
	}
	if !almostEqual(s.Accuracy(), 75.0) {
		t.Errorf("Accuracy = %f, want 75", s.Accuracy())
	}
}

func TestSnapshot_RecordTimed(t *testing.T) {
	var s Snapshot
	s.RecordTimed(true, 4*time.Second)
	s.RecordTimed(false, 2*time.Second)
	s.RecordTimed(true, -time.Second)

	assert.Equal(t, int64(6000), s.ResponseMs)
	assert.Equal(t, 3, s.Timed)
	assert.Equal(t, 2*time.Second, s.MeanResponse())
	assert.Equal(t, 3, s.Total())
}

func TestSnapshot_MeanResponse_Untimed(t *testing.T) {
	s := Snapshot{Correct: 2}
	assert.Equal(t, time.Duration(0), s.MeanResponse())
}

func TestSnapshot_Valid(t *testing.T) {
	assert.True(t, Snapshot{}.Valid())
	assert.False(t, Snapshot{Correct: -1}.Valid())
	assert.False(t, Snapshot{Incorrect: -2}.Valid())
}

func TestSuggest_Buckets(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     Bucket
	}{
		{0, BucketRemedial},
		{49.99, BucketRemedial},
		{50, BucketEncouragement},
		{79.99, BucketEncouragement},
		{80, BucketChallenge},
		{100, BucketChallenge},
	}
	for _, tt := range tests {
		got := Suggest(tt.accuracy)
		if got.Bucket != tt.want {
			t.Errorf("Suggest(%v).Bucket = %s, want %s", tt.accuracy, got.Bucket, tt.want)
		}
		if got.Text == "" {
			t.Errorf("Suggest(%v).Text is empty", tt.accuracy)
		}
	}
}

func TestSuggest_ChallengeText(t *testing.T) {
	s := Suggest(100)
	assert.Contains(t, s.Text, "challenge")
}
