package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// Quiz pipeline errors
	ErrGenerationFailed   ErrorCode = "GENERATION_FAILED"
	ErrPublishFailed      ErrorCode = "PUBLISH_FAILED"
	ErrDedupPersistFailed ErrorCode = "DEDUP_PERSIST_FAILED"
	ErrArchiveFailed      ErrorCode = "ARCHIVE_FAILED"
	ErrCycleInProgress    ErrorCode = "CYCLE_IN_PROGRESS"
)

// ErrLockNotAcquired is returned by a Locker when another holder owns the lock.
var ErrLockNotAcquired = errors.New("lock is held by another producer")

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewGenerationError(err error) *DomainError {
	return NewError(ErrGenerationFailed, "Failed to generate question text", err)
}

func NewPublishError(err error) *DomainError {
	return NewError(ErrPublishFailed, "Failed to publish quiz poll", err)
}

func NewDedupPersistError(path string, err error) *DomainError {
	return NewError(ErrDedupPersistFailed, fmt.Sprintf("Failed to persist question history to %s", path), err)
}

func NewArchiveError(err error) *DomainError {
	return NewError(ErrArchiveFailed, "Failed to archive published poll", err)
}

// HasCode reports whether err wraps a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ParseFailureReason classifies why raw model output was rejected.
type ParseFailureReason string

const (
	MalformedStructure  ParseFailureReason = "MALFORMED_STRUCTURE"
	MalformedQuestion   ParseFailureReason = "MALFORMED_QUESTION"
	InvalidOptionCount  ParseFailureReason = "INVALID_OPTION_COUNT"
	MissingAnswerKey    ParseFailureReason = "MISSING_ANSWER_KEY"
	InvalidAnswerLetter ParseFailureReason = "INVALID_ANSWER_LETTER"
)

// ParseError is returned when generated text does not match the quiz template.
// Fragment holds the part of the input that failed; Raw holds the whole input.
type ParseError struct {
	Reason   ParseFailureReason
	Message  string
	Fragment string
	Raw      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// NewParseError creates a ParseError for the given reason.
func NewParseError(reason ParseFailureReason, message, fragment, raw string) *ParseError {
	return &ParseError{
		Reason:   reason,
		Message:  message,
		Fragment: fragment,
		Raw:      raw,
	}
}

// ParseReason extracts the failure reason if err is a ParseError.
func ParseReason(err error) (ParseFailureReason, bool) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Reason, true
	}
	return "", false
}
