package repository

import (
	"context"
	"fmt"

	"quiz-poll/internal/domain"
	"quiz-poll/internal/repository/models"
	"quiz-poll/internal/util"

	"github.com/jmoiron/sqlx"
)

const maxRecentPublications = 100

// PublicationRepository archives published polls in the published_polls table.
type PublicationRepository struct {
	db *sqlx.DB
}

// NewPublicationRepository creates a repository on an Oracle connection.
func NewPublicationRepository(db *sqlx.DB) *PublicationRepository {
	return &PublicationRepository{db: db}
}

// SavePublication inserts p. An empty ID is replaced with a fresh ULID.
func (r *PublicationRepository) SavePublication(ctx context.Context, p *domain.Publication) error {
	if p == nil {
		return domain.NewArchiveError(fmt.Errorf("cannot save nil publication"))
	}
	row := toModelPublishedPoll(p)
	if row.ID == "" {
		row.ID = util.NewULID()
	}

	query := `INSERT INTO published_polls (
		id, question_hash, prompt, correct_index, chat_id, message_id, published_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7
	)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID,
		row.QuestionHash,
		row.Prompt,
		row.CorrectIndex,
		row.ChatID,
		row.MessageID,
		row.PublishedAt,
	)
	if err != nil {
		return domain.NewArchiveError(fmt.Errorf("failed to save publication: %w", err))
	}

	p.ID = row.ID
	return nil
}

// GetRecentPublications returns up to limit publications, newest first.
func (r *PublicationRepository) GetRecentPublications(ctx context.Context, limit int) ([]*domain.Publication, error) {
	if limit <= 0 {
		return []*domain.Publication{}, nil
	}
	if limit > maxRecentPublications {
		limit = maxRecentPublications
	}

	query := `SELECT 
		id "ID",
		question_hash "QUESTION_HASH",
		prompt "PROMPT",
		correct_index "CORRECT_INDEX",
		chat_id "CHAT_ID",
		message_id "MESSAGE_ID",
		published_at "PUBLISHED_AT"
	FROM published_polls
	ORDER BY published_at DESC
	FETCH FIRST :1 ROWS ONLY`

	var rows []models.PublishedPoll
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, domain.NewArchiveError(fmt.Errorf("failed to get recent publications: %w", err))
	}

	publications := make([]*domain.Publication, 0, len(rows))
	for i := range rows {
		publications = append(publications, toDomainPublication(&rows[i]))
	}
	return publications, nil
}

func toModelPublishedPoll(p *domain.Publication) *models.PublishedPoll {
	return &models.PublishedPoll{
		ID:           p.ID,
		QuestionHash: p.QuestionHash,
		Prompt:       p.Prompt,
		CorrectIndex: p.CorrectIndex,
		ChatID:       p.ChatID,
		MessageID:    int64(p.MessageID),
		PublishedAt:  p.PublishedAt,
	}
}

func toDomainPublication(m *models.PublishedPoll) *domain.Publication {
	if m == nil {
		return nil
	}
	return &domain.Publication{
		ID:           m.ID,
		QuestionHash: m.QuestionHash,
		Prompt:       m.Prompt,
		CorrectIndex: m.CorrectIndex,
		ChatID:       m.ChatID,
		MessageID:    int(m.MessageID),
		PublishedAt:  m.PublishedAt,
	}
}

var _ domain.PublicationRepository = (*PublicationRepository)(nil)
