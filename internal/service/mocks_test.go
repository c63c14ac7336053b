package service

import (
	"context"

	"quiz-poll/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionGenerator ---
type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) GenerateQuestion(ctx context.Context, recentQuestions []string) (string, error) {
	args := m.Called(ctx, recentQuestions)
	return args.String(0), args.Error(1)
}

// --- MockQuestionHistory ---
type MockQuestionHistory struct {
	mock.Mock
}

func (m *MockQuestionHistory) Load(ctx context.Context) (*domain.DedupSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DedupSnapshot), args.Error(1)
}

func (m *MockQuestionHistory) Record(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// --- MockPollPublisher ---
type MockPollPublisher struct {
	mock.Mock
}

func (m *MockPollPublisher) PublishQuiz(ctx context.Context, q *domain.QuizQuestion) (*domain.Publication, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Publication), args.Error(1)
}

// --- MockPublicationRepository ---
type MockPublicationRepository struct {
	mock.Mock
}

func (m *MockPublicationRepository) SavePublication(ctx context.Context, p *domain.Publication) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPublicationRepository) GetRecentPublications(ctx context.Context, limit int) ([]*domain.Publication, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Publication), args.Error(1)
}

// --- MockCycleService ---
type MockCycleService struct {
	mock.Mock
}

func (m *MockCycleService) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CycleResult), args.Error(1)
}
