package dto

import "time"

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	HistorySize  int    `json:"history_size"`
	HistoryError string `json:"history_error,omitempty"`
}

// RecentQuestion is one entry of the dedup history tail.
type RecentQuestion struct {
	Hash      string    `json:"hash"`
	Question  string    `json:"question"`
	DateAdded time.Time `json:"date_added"`
}

// RecentQuestionsResponse is returned by GET /api/questions/recent.
type RecentQuestionsResponse struct {
	Questions []RecentQuestion `json:"questions"`
	Total     int              `json:"total"`
}

// PublicationResponse is one archived poll.
type PublicationResponse struct {
	ID           string    `json:"id"`
	QuestionHash string    `json:"question_hash"`
	Prompt       string    `json:"prompt"`
	CorrectIndex int       `json:"correct_index"`
	ChatID       string    `json:"chat_id"`
	MessageID    int       `json:"message_id"`
	PublishedAt  time.Time `json:"published_at"`
}

// RecentPublicationsResponse is returned by GET /api/publications/recent.
type RecentPublicationsResponse struct {
	Publications []PublicationResponse `json:"publications"`
}

// CycleResponse is returned by POST /api/cycles.
type CycleResponse struct {
	CycleID    string    `json:"cycle_id"`
	Status     string    `json:"status"`
	SkipReason string    `json:"skip_reason,omitempty"`
	Prompt     string    `json:"prompt,omitempty"`
	WasNew     bool      `json:"was_new"`
	MessageID  int       `json:"message_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
