package dedup

import (
	"context"
	"fmt"
	"time"

	"quiz-poll/internal/domain"

	"go.uber.org/zap"
)

const lockName = "question-history"

// LockedStore serialises Record calls across producers with a domain.Locker.
// Load is passed through unlocked; readers tolerate a concurrent rename.
type LockedStore struct {
	inner  domain.QuestionHistory
	locker domain.Locker
	ttl    time.Duration
	logger *zap.Logger
}

// NewLockedStore wraps inner so that every Record holds the history lock.
func NewLockedStore(inner domain.QuestionHistory, locker domain.Locker, ttl time.Duration, logger *zap.Logger) *LockedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockedStore{
		inner:  inner,
		locker: locker,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *LockedStore) Load(ctx context.Context) (*domain.DedupSnapshot, error) {
	return s.inner.Load(ctx)
}

func (s *LockedStore) Record(ctx context.Context, prompt string) (wasNew bool, err error) {
	release, err := s.locker.Acquire(ctx, lockName, s.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to lock question history: %w", err)
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.Warn("Failed to release question history lock", zap.Error(relErr))
		}
	}()

	return s.inner.Record(ctx, prompt)
}

var _ domain.QuestionHistory = (*LockedStore)(nil)
