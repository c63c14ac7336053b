package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashPrompt(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", HashPrompt(""))
	assert.Equal(t, HashPrompt("Q1\nQ1-hi"), HashPrompt("Q1\nQ1-hi"))
	assert.NotEqual(t, HashPrompt("Q1\nQ1-hi"), HashPrompt("Q1\nQ1-hi "), "hashing is exact, not normalised")
	assert.Len(t, HashPrompt("anything"), 32)
}

func TestDedupSnapshot_AppendAndContains(t *testing.T) {
	snapshot := &DedupSnapshot{}
	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	assert.True(t, snapshot.Append("q1", at))
	assert.False(t, snapshot.Append("q1", at.Add(time.Hour)))
	assert.True(t, snapshot.Append("q2", at))

	assert.Equal(t, 2, snapshot.Len())
	assert.True(t, snapshot.Contains("q1"))
	assert.False(t, snapshot.Contains("q3"))
	assert.Equal(t, at, snapshot.Records[0].DateAdded)
	assert.Equal(t, HashPrompt("q2"), snapshot.Records[1].Hash)
}

func TestDedupSnapshot_Recent(t *testing.T) {
	snapshot := &DedupSnapshot{}
	for i := 1; i <= 7; i++ {
		snapshot.Append(fmt.Sprintf("q%d", i), time.Now())
	}

	assert.Equal(t, []string{"q3", "q4", "q5", "q6", "q7"}, snapshot.Recent(5))
	assert.Equal(t, []string{"q7"}, snapshot.Recent(1))
	assert.Len(t, snapshot.Recent(100), 7)
	assert.Equal(t, []string{}, snapshot.Recent(0))
}

func TestDedupSnapshot_Tail(t *testing.T) {
	snapshot := &DedupSnapshot{}
	for i := 1; i <= 4; i++ {
		snapshot.Append(fmt.Sprintf("q%d", i), time.Now())
	}

	tail := snapshot.Tail(2)
	assert.Len(t, tail, 2)
	assert.Equal(t, "q3", tail[0].Question)
	assert.Equal(t, "q4", tail[1].Question)
	assert.Len(t, snapshot.Tail(10), 4)
	assert.Equal(t, []DedupRecord{}, snapshot.Tail(0))

	tail[0].Question = "changed"
	assert.Equal(t, "q3", snapshot.Records[2].Question)
}

func TestDedupSnapshot_NilSafe(t *testing.T) {
	var snapshot *DedupSnapshot

	assert.Equal(t, 0, snapshot.Len())
	assert.False(t, snapshot.Contains("q1"))
	assert.Equal(t, []string{}, snapshot.Recent(5))
	assert.Equal(t, []DedupRecord{}, snapshot.Tail(5))
}

func TestDomainError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDedupPersistError("history.json", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, ErrDedupPersistFailed))
	assert.True(t, HasCode(fmt.Errorf("cycle: %w", err), ErrDedupPersistFailed))
	assert.False(t, HasCode(err, ErrPublishFailed))
	assert.False(t, HasCode(cause, ErrDedupPersistFailed))
	assert.Contains(t, err.Error(), "history.json")

	data, jsonErr := err.MarshalJSON()
	assert.NoError(t, jsonErr)
	assert.JSONEq(t, `{"code":"DEDUP_PERSIST_FAILED","message":"Failed to persist question history to history.json"}`, string(data))
}

func TestParseReason(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewParseError(MissingAnswerKey, "no answer line", "", "raw"))

	reason, ok := ParseReason(err)
	assert.True(t, ok)
	assert.Equal(t, MissingAnswerKey, reason)

	_, ok = ParseReason(errors.New("other"))
	assert.False(t, ok)
}
