package domain

import (
	"context"
	"time"
)

// CycleStatus is the outcome of one quiz production cycle.
type CycleStatus string

const (
	CyclePublished CycleStatus = "published"
	CycleSkipped   CycleStatus = "skipped"
)

// CycleResult summarises a finished production cycle.
type CycleResult struct {
	CycleID    string             `json:"cycle_id"`
	Status     CycleStatus        `json:"status"`
	SkipReason ParseFailureReason `json:"skip_reason,omitempty"`
	Prompt     string             `json:"prompt,omitempty"`
	WasNew     bool               `json:"was_new"`
	MessageID  int                `json:"message_id,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// CycleService runs the generate → parse → dedup → publish pipeline once.
type CycleService interface {
	RunCycle(ctx context.Context) (*CycleResult, error)
}
