// Package parser turns free-form generated quiz text into a validated QuizQuestion.
//
// The expected input looks like:
//
//	Who was the first President of India?
//	भारत के प्रथम राष्ट्रपति कौन थे?
//
//	A) Dr. Rajendra Prasad / डॉ राजेंद्र प्रसाद
//	B) Jawaharlal Nehru / जवाहरलाल नेहरू
//	C) Sardar Vallabhbhai Patel / सरदार वल्लभभाई पटेल
//	D) Dr. A.P.J. Abdul Kalam / डॉ ए पी जे अब्दुल कलाम
//
//	Correct: A
//
// Every step has a narrow acceptance rule. Anything else is rejected with a
// *domain.ParseError rather than guessed at.
package parser

import (
	"fmt"
	"strings"

	"quiz-poll/internal/domain"
)

const (
	blockSeparator = "\n\n"
	markerLen      = 3

	answerMarker          = "Correct:"
	secondaryAnswerMarker = "सही उत्तर:"
)

var optionMarkers = []string{"A) ", "B) ", "C) ", "D) "}

// secondaryLetters maps Hindi letter names to option letters.
var secondaryLetters = map[string]string{
	"ए":  "A",
	"बी": "B",
	"सी": "C",
	"डी": "D",
}

// Parse structures raw model output into a QuizQuestion.
func Parse(raw string) (*domain.QuizQuestion, error) {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	blocks := strings.Split(text, blockSeparator)
	if len(blocks) < 2 {
		return nil, domain.NewParseError(domain.MalformedStructure,
			fmt.Sprintf("got %d sections, expected at least 2", len(blocks)), text, raw)
	}

	prompt, err := parsePrompt(blocks[0], raw)
	if err != nil {
		return nil, err
	}

	optionLines := strings.Split(strings.TrimSpace(blocks[1]), "\n")
	options, err := parseOptions(optionLines, raw)
	if err != nil {
		return nil, err
	}

	letter, err := parseAnswer(blocks, optionLines, raw)
	if err != nil {
		return nil, err
	}

	q, err := domain.NewQuizQuestion(prompt, options, int(letter[0]-'A'))
	if err != nil {
		return nil, domain.NewParseError(domain.MalformedQuestion, err.Error(), prompt, raw)
	}
	return q, nil
}

func parsePrompt(block, raw string) (string, error) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	if len(lines) != 2 {
		return "", domain.NewParseError(domain.MalformedQuestion,
			fmt.Sprintf("expected 2 question lines, got %d", len(lines)), block, raw)
	}
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
		if lines[i] == "" {
			return "", domain.NewParseError(domain.MalformedQuestion,
				fmt.Sprintf("question line %d is empty", i+1), block, raw)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// parseOptions keeps lines that carry an option marker and a bilingual body.
// Everything else in the block is noise.
func parseOptions(lines []string, raw string) ([]string, error) {
	options := make([]string, 0, domain.OptionCount)
	for _, line := range lines {
		if !hasOptionMarker(line) {
			continue
		}
		body := strings.TrimSpace(line[markerLen:])
		if body == "" || !strings.Contains(body, "/") {
			continue
		}
		options = append(options, body)
	}

	if len(options) != domain.OptionCount {
		return nil, domain.NewParseError(domain.InvalidOptionCount,
			fmt.Sprintf("got %d valid options, expected %d", len(options), domain.OptionCount),
			strings.Join(lines, "\n"), raw)
	}
	return options, nil
}

func hasOptionMarker(line string) bool {
	for _, marker := range optionMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// parseAnswer finds the answer key and reduces it to a single option letter.
// A dedicated trailing block is the initial candidate; an answer line inside
// the options block, scanned from the bottom, overrides it.
func parseAnswer(blocks, optionLines []string, raw string) (string, error) {
	candidate := strings.TrimSpace(optionLines[len(optionLines)-1])
	if len(blocks) > 2 {
		candidate = strings.TrimSpace(blocks[len(blocks)-1])
	}
	for i := len(optionLines) - 1; i >= 0; i-- {
		line := optionLines[i]
		if strings.HasPrefix(line, answerMarker) || strings.HasPrefix(line, secondaryAnswerMarker) {
			candidate = line
			break
		}
	}

	var value string
	switch {
	case strings.Contains(candidate, answerMarker):
		value = strings.SplitN(candidate, answerMarker, 2)[1]
	case strings.Contains(candidate, secondaryAnswerMarker):
		value = strings.SplitN(candidate, secondaryAnswerMarker, 2)[1]
	default:
		return "", domain.NewParseError(domain.MissingAnswerKey,
			"no answer key line found", candidate, raw)
	}

	letter := normalizeAnswer(value)
	if mapped, ok := secondaryLetters[letter]; ok {
		letter = mapped
	}

	switch letter {
	case "A", "B", "C", "D":
		return letter, nil
	}
	return "", domain.NewParseError(domain.InvalidAnswerLetter,
		fmt.Sprintf("answer %q is not one of A, B, C, D", letter), candidate, raw)
}

// normalizeAnswer strips echoed option text such as "A) Delhi / दिल्ली" down to "A".
func normalizeAnswer(value string) string {
	value = strings.TrimSpace(value)
	// A trailing answer block may continue with an explanation line.
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	if i := strings.Index(value, "/"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	if i := strings.Index(value, ")"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return value
}
