package domain

import (
	"context"
	"time"
)

// Publication describes a quiz poll that was sent to the channel.
type Publication struct {
	ID           string
	QuestionHash string
	Prompt       string
	CorrectIndex int
	ChatID       string
	MessageID    int
	PublishedAt  time.Time
}

// PollPublisher sends quiz questions to the messaging platform.
type PollPublisher interface {
	PublishQuiz(ctx context.Context, q *QuizQuestion) (*Publication, error)
}

// PublicationRepository archives published polls.
type PublicationRepository interface {
	SavePublication(ctx context.Context, p *Publication) error
	GetRecentPublications(ctx context.Context, limit int) ([]*Publication, error)
}
