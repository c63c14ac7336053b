package domain

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"
)

// DedupRecord is one previously produced question.
type DedupRecord struct {
	Hash      string
	Question  string
	DateAdded time.Time
}

// DedupSnapshot is the question history as loaded from storage, oldest first.
type DedupSnapshot struct {
	Records []DedupRecord
}

// HashPrompt returns the content hash used as the dedup key for a prompt.
// It is only used for equality detection.
func HashPrompt(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Len returns the number of records in the snapshot.
func (s *DedupSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Contains reports whether a record with the prompt's hash exists.
func (s *DedupSnapshot) Contains(prompt string) bool {
	return s.containsHash(HashPrompt(prompt))
}

func (s *DedupSnapshot) containsHash(hash string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Records {
		if r.Hash == hash {
			return true
		}
	}
	return false
}

// Append adds a record for prompt unless its hash is already present.
// It reports whether the record was added.
func (s *DedupSnapshot) Append(prompt string, at time.Time) bool {
	hash := HashPrompt(prompt)
	if s.containsHash(hash) {
		return false
	}
	s.Records = append(s.Records, DedupRecord{
		Hash:      hash,
		Question:  prompt,
		DateAdded: at,
	})
	return true
}

// Tail returns up to the last n records in insertion order. The returned
// slice shares no backing array with the snapshot.
func (s *DedupSnapshot) Tail(n int) []DedupRecord {
	if s == nil || n <= 0 {
		return []DedupRecord{}
	}
	start := len(s.Records) - n
	if start < 0 {
		start = 0
	}
	return append([]DedupRecord{}, s.Records[start:]...)
}

// Recent returns up to n question texts, most recently added last.
func (s *DedupSnapshot) Recent(n int) []string {
	tail := s.Tail(n)
	questions := make([]string, 0, len(tail))
	for _, r := range tail {
		questions = append(questions, r.Question)
	}
	return questions
}

// QuestionHistory is the persisted dedup index of produced questions.
type QuestionHistory interface {
	// Load reads the full history. Missing or corrupt storage yields an empty snapshot.
	Load(ctx context.Context) (*DedupSnapshot, error)

	// Record appends prompt if its hash is new and reports whether it was added.
	Record(ctx context.Context, prompt string) (bool, error)
}

// Locker serialises read-modify-write access to shared state across producers.
type Locker interface {
	// Acquire takes the named lock and returns a release function.
	// It returns ErrLockNotAcquired when another holder owns the lock.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, err error)
}
