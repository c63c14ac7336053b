package models

import "time"

// PublishedPoll is a row of the published_polls table.
type PublishedPoll struct {
	ID           string    `db:"ID"`            // ULID
	QuestionHash string    `db:"QUESTION_HASH"` // dedup hash of the prompt
	Prompt       string    `db:"PROMPT"`
	CorrectIndex int       `db:"CORRECT_INDEX"`
	ChatID       string    `db:"CHAT_ID"`
	MessageID    int64     `db:"MESSAGE_ID"` // Telegram message id
	PublishedAt  time.Time `db:"PUBLISHED_AT"`
}
