package domain

import "context"

// QuestionGenerator produces raw quiz text from a generative model.
type QuestionGenerator interface {
	// GenerateQuestion returns the model's free-form response. recentQuestions
	// are embedded in the request so the model avoids repeating them.
	GenerateQuestion(ctx context.Context, recentQuestions []string) (string, error)
}
