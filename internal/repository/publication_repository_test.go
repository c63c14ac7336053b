package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"quiz-poll/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a new sqlx.DB instance and sqlmock for repository testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

var publicationColumns = []string{"ID", "QUESTION_HASH", "PROMPT", "CORRECT_INDEX", "CHAT_ID", "MESSAGE_ID", "PUBLISHED_AT"}

func TestPublicationRepository_SavePublication(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)

	publishedAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	pub := &domain.Publication{
		ID:           "01JAPUB",
		QuestionHash: domain.HashPrompt("Q1\nQ1-hi"),
		Prompt:       "Q1\nQ1-hi",
		CorrectIndex: 2,
		ChatID:       "@upsc_quiz",
		MessageID:    42,
		PublishedAt:  publishedAt,
	}

	mock.ExpectExec(`INSERT INTO published_polls`).
		WithArgs("01JAPUB", pub.QuestionHash, "Q1\nQ1-hi", 2, "@upsc_quiz", int64(42), publishedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SavePublication(context.Background(), pub)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_SavePublication_AssignsID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)
	pub := &domain.Publication{Prompt: "Q1\nQ1-hi", PublishedAt: time.Now()}

	mock.ExpectExec(`INSERT INTO published_polls`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SavePublication(context.Background(), pub))
	assert.Len(t, pub.ID, 26)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_SavePublication_Error(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)

	mock.ExpectExec(`INSERT INTO published_polls`).WillReturnError(errors.New("ORA-00942: table or view does not exist"))

	err := repo.SavePublication(context.Background(), &domain.Publication{ID: "x"})

	assert.True(t, domain.HasCode(err, domain.ErrArchiveFailed))
	assert.NoError(t, mock.ExpectationsWereMet())

	err = repo.SavePublication(context.Background(), nil)
	assert.True(t, domain.HasCode(err, domain.ErrArchiveFailed))
}

func TestPublicationRepository_GetRecentPublications(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)

	newer := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	rows := sqlmock.NewRows(publicationColumns).
		AddRow("p2", "h2", "Q2\nQ2-hi", 1, "@c", int64(11), newer).
		AddRow("p1", "h1", "Q1\nQ1-hi", 3, "@c", int64(10), older)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM published_polls`) + `\s+ORDER BY published_at DESC\s+FETCH FIRST :1 ROWS ONLY`).
		WithArgs(2).
		WillReturnRows(rows)

	pubs, err := repo.GetRecentPublications(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, "p2", pubs[0].ID)
	assert.Equal(t, 11, pubs[0].MessageID)
	assert.Equal(t, 3, pubs[1].CorrectIndex)
	assert.True(t, older.Equal(pubs[1].PublishedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_GetRecentPublications_LimitBounds(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)

	pubs, err := repo.GetRecentPublications(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pubs)

	mock.ExpectQuery(`FROM published_polls`).
		WithArgs(maxRecentPublications).
		WillReturnRows(sqlmock.NewRows(publicationColumns))

	pubs, err = repo.GetRecentPublications(context.Background(), 5000)
	require.NoError(t, err)
	assert.Empty(t, pubs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationRepository_GetRecentPublications_Error(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewPublicationRepository(db)

	mock.ExpectQuery(`FROM published_polls`).WillReturnError(errors.New("ORA-03113"))

	pubs, err := repo.GetRecentPublications(context.Background(), 5)

	assert.Nil(t, pubs)
	assert.True(t, domain.HasCode(err, domain.ErrArchiveFailed))
}
