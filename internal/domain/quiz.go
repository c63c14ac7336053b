package domain

import (
	"fmt"
	"strings"
)

const (
	// OptionCount is the number of answer choices in every quiz poll.
	OptionCount = 4
	// BilingualDelimiter joins the primary and secondary rendering of an option.
	BilingualDelimiter = " / "
)

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// QuizQuestion is a bilingual multiple-choice question ready to be published.
// It is immutable once constructed; use NewQuizQuestion.
type QuizQuestion struct {
	prompt       string
	options      []string
	correctIndex int
}

// NewQuizQuestion validates the invariants of a quiz question and builds it.
func NewQuizQuestion(prompt string, options []string, correctIndex int) (*QuizQuestion, error) {
	lines := strings.Split(prompt, "\n")
	if len(lines) != 2 {
		return nil, NewValidationError(fmt.Sprintf("prompt must have exactly 2 lines, got %d", len(lines)))
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			return nil, NewValidationError("prompt lines must not be empty")
		}
	}

	if len(options) != OptionCount {
		return nil, NewValidationError(fmt.Sprintf("quiz must have exactly %d options, got %d", OptionCount, len(options)))
	}
	for i, opt := range options {
		if strings.TrimSpace(opt) == "" {
			return nil, NewValidationError(fmt.Sprintf("option %s is empty", LetterForIndex(i)))
		}
		if !strings.Contains(opt, "/") {
			return nil, NewValidationError(fmt.Sprintf("option %s has no bilingual delimiter", LetterForIndex(i)))
		}
	}

	if correctIndex < 0 || correctIndex >= OptionCount {
		return nil, NewValidationError(fmt.Sprintf("correct index %d out of range", correctIndex))
	}

	opts := make([]string, len(options))
	copy(opts, options)
	return &QuizQuestion{
		prompt:       prompt,
		options:      opts,
		correctIndex: correctIndex,
	}, nil
}

// Prompt returns the two-line question text.
func (q *QuizQuestion) Prompt() string {
	return q.prompt
}

// Options returns a copy of the four answer choices in A..D order.
func (q *QuizQuestion) Options() []string {
	opts := make([]string, len(q.options))
	copy(opts, q.options)
	return opts
}

// CorrectIndex returns the zero-based index of the correct option.
func (q *QuizQuestion) CorrectIndex() int {
	return q.correctIndex
}

// CorrectLetter returns the option marker letter of the correct answer.
func (q *QuizQuestion) CorrectLetter() string {
	return LetterForIndex(q.correctIndex)
}

// Explanation is the text shown to users after answering the poll.
func (q *QuizQuestion) Explanation() string {
	return "Correct answer: " + q.CorrectLetter()
}

// LetterForIndex maps 0..3 to A..D.
func LetterForIndex(i int) string {
	return string(rune('A' + i))
}
