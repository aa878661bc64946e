package difficulty

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/quizladder/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromote(t *testing.T) {
	tests := []struct {
		in, want Level
	}{
		{Easy, Medium},
		{Medium, Hard},
		{Hard, Hard},
	}
	for _, tt := range tests {
		if got := Promote(tt.in); got != tt.want {
			t.Errorf("Promote(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDemote(t *testing.T) {
	tests := []struct {
		in, want Level
	}{
		{Hard, Medium},
		{Medium, Easy},
		{Easy, Easy},
	}
	for _, tt := range tests {
		if got := Demote(tt.in); got != tt.want {
			t.Errorf("Demote(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLadder_LossyAtBoundaries(t *testing.T) {
	// Demote saturates at easy, so promoting afterwards overshoots.
	assert.Equal(t, Medium, Promote(Demote(Easy)))
	assert.Equal(t, Medium, Demote(Promote(Hard)))
	assert.Equal(t, Hard, Promote(Promote(Hard)))
}

func TestApply(t *testing.T) {
	tests := []struct {
		level  Level
		action Action
		want   Level
	}{
		{Easy, Easier, Easy},
		{Easy, Same, Easy},
		{Easy, Harder, Medium},
		{Medium, Easier, Easy},
		{Medium, Same, Medium},
		{Hard, Harder, Hard},
		{Hard, Easier, Medium},
	}
	for _, tt := range tests {
		if got := Apply(tt.level, tt.action); got != tt.want {
			t.Errorf("Apply(%s, %s) = %s, want %s", tt.level, tt.action, got, tt.want)
		}
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, Medium, Next(Easy, true))
	assert.Equal(t, Easy, Next(Medium, false))
	assert.Equal(t, Hard, Next(Hard, true))
	assert.Equal(t, Easy, Next(Easy, false))
}

func TestParse(t *testing.T) {
	for _, tok := range []string{"easy", " Medium", "HARD\n"} {
		l, err := Parse(tok)
		require.NoError(t, err, tok)
		assert.True(t, l.Valid())
	}

	_, err := Parse("expert")
	if !errors.Is(err, fault.ErrInvalidInput) {
		t.Fatalf("Parse(expert) error = %v, want ErrInvalidInput", err)
	}
}

func TestLevel_IndexRoundTrip(t *testing.T) {
	for i, l := range All() {
		assert.Equal(t, i, l.Index())
		assert.Equal(t, l, LevelFromIndex(i))
	}
	assert.Equal(t, Easy, LevelFromIndex(-3))
	assert.Equal(t, Hard, LevelFromIndex(7))
	assert.Equal(t, -1, Level("expert").Index())
}

func TestLevel_JSON(t *testing.T) {
	var payload struct {
		Difficulty Level `json:"difficulty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"difficulty":"hard"}`), &payload))
	assert.Equal(t, Hard, payload.Difficulty)

	err := json.Unmarshal([]byte(`{"difficulty":"extreme"}`), &payload)
	assert.ErrorIs(t, err, fault.ErrInvalidInput)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"difficulty":"hard"}`, string(b))
}

func TestActionFromIndex(t *testing.T) {
	for i, want := range []Action{Easier, Same, Harder} {
		got, err := ActionFromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, bad := range []int{-1, 3, 42} {
		_, err := ActionFromIndex(bad)
		assert.ErrorIs(t, err, fault.ErrInvalidInput, "index %d", bad)
	}
	assert.Equal(t, "HARDER", Harder.String())
}
