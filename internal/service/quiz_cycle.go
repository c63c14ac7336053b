package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-poll/internal/domain"
	"quiz-poll/internal/parser"
	"quiz-poll/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const cycleFlightKey = "quiz-cycle"

// quizCycleService implements domain.CycleService.
type quizCycleService struct {
	generator   domain.QuestionGenerator
	history     domain.QuestionHistory
	publisher   domain.PollPublisher
	archive     domain.PublicationRepository // optional
	recentCount int
	logger      *zap.Logger
	group       singleflight.Group
	now         func() time.Time
}

// NewQuizCycleService wires the production pipeline. archive may be nil.
func NewQuizCycleService(
	generator domain.QuestionGenerator,
	history domain.QuestionHistory,
	publisher domain.PollPublisher,
	archive domain.PublicationRepository,
	recentCount int,
	logger *zap.Logger,
) domain.CycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &quizCycleService{
		generator:   generator,
		history:     history,
		publisher:   publisher,
		archive:     archive,
		recentCount: recentCount,
		logger:      logger,
		now:         time.Now,
	}
}

// RunCycle runs one generate, parse, record and publish pass. Concurrent
// callers share the result of the cycle already in flight.
func (s *quizCycleService) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	v, err, shared := s.group.Do(cycleFlightKey, func() (interface{}, error) {
		return s.runCycle(ctx)
	})
	if shared {
		s.logger.Debug("Joined quiz cycle already in flight")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.CycleResult), nil
}

func (s *quizCycleService) runCycle(ctx context.Context) (*domain.CycleResult, error) {
	result := &domain.CycleResult{
		CycleID:   util.NewULID(),
		StartedAt: s.now(),
	}
	logger := s.logger.With(zap.String("cycle_id", result.CycleID))
	logger.Info("Starting quiz cycle", zap.Time("start_time", result.StartedAt))

	snapshot, err := s.history.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question history: %w", err)
	}
	recent := snapshot.Recent(s.recentCount)

	raw, err := s.generator.GenerateQuestion(ctx, recent)
	if err != nil {
		logger.Error("Failed to generate question", zap.Error(err))
		return nil, err
	}

	question, err := parser.Parse(raw)
	if err != nil {
		var parseErr *domain.ParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		logger.Warn("Generated question rejected, skipping cycle",
			zap.String("reason", string(parseErr.Reason)),
			zap.String("detail", parseErr.Message),
		)
		logger.Debug("Rejected question text", zap.String("raw", raw))
		result.Status = domain.CycleSkipped
		result.SkipReason = parseErr.Reason
		result.FinishedAt = s.now()
		return result, nil
	}
	result.Prompt = question.Prompt()

	wasNew, err := s.history.Record(ctx, question.Prompt())
	if err != nil {
		logger.Error("Failed to record question in history", zap.Error(err))
		return nil, err
	}
	result.WasNew = wasNew
	if !wasNew {
		logger.Warn("Question was produced before, publishing anyway",
			zap.String("hash", domain.HashPrompt(question.Prompt())),
		)
	}

	publication, err := s.publisher.PublishQuiz(ctx, question)
	if err != nil {
		logger.Error("Failed to publish quiz", zap.Error(err))
		return nil, err
	}
	result.MessageID = publication.MessageID

	if s.archive != nil {
		if err := s.archive.SavePublication(ctx, publication); err != nil {
			logger.Warn("Failed to archive publication",
				zap.String("publication_id", publication.ID),
				zap.Error(err),
			)
		}
	}

	result.Status = domain.CyclePublished
	result.FinishedAt = s.now()
	logger.Info("Quiz cycle finished",
		zap.String("status", string(result.Status)),
		zap.Bool("was_new", result.WasNew),
		zap.Int("message_id", result.MessageID),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}
