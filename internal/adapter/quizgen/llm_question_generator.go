package quizgen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"quiz-poll/internal/config"
	"quiz-poll/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const systemPrompt = `Generate a multiple choice question for UPSC/SSC CGL exam preparation. Follow this EXACT format and example:

Example Output:
Who was the first President of India?
भारत के प्रथम राष्ट्रपति कौन थे?

A) Dr. Rajendra Prasad / डॉ राजेंद्र प्रसाद
B) Jawaharlal Nehru / जवाहरलाल नेहरू
C) Sardar Vallabhbhai Patel / सरदार वल्लभभाई पटेल
D) Dr. A.P.J. Abdul Kalam / डॉ ए पी जे अब्दुल कलाम

Correct: A

Requirements:
1. Question MUST be shown in both English and Hindi
2. Hindi translation must be accurate and grammatically correct
3. Each option MUST have both English and Hindi versions separated by ' / '
4. Options MUST start with A), B), C), D) followed by a space
5. Topics: Indian History, Geography, Polity, Economics, or Current Affairs
6. Use proper Hindi Unicode characters
7. Keep formatting consistent throughout`

// LLMQuestionGenerator implements domain.QuestionGenerator on top of a LangchainGo model.
type LLMQuestionGenerator struct {
	model       llms.Model
	modelName   string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewModel builds the LangchainGo client for the configured provider.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key cannot be empty")
		}
		llm, err := openai.New(openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
		}
		return llm, nil
	case "ollama":
		httpClient := &http.Client{Timeout: cfg.Timeout}
		llm, err := ollama.New(ollama.WithServerURL(cfg.ServerURL), ollama.WithModel(cfg.Model), ollama.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// NewLLMQuestionGenerator creates a new instance of LLMQuestionGenerator.
func NewLLMQuestionGenerator(model llms.Model, cfg config.LLMConfig, logger *zap.Logger) (*LLMQuestionGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("llm model cannot be nil")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model name cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Initializing LLMQuestionGenerator", zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))
	return &LLMQuestionGenerator{
		model:       model,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// GenerateQuestion asks the model for one question in the bilingual quiz format.
func (g *LLMQuestionGenerator) GenerateQuestion(ctx context.Context, recentQuestions []string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildUserPrompt(recentQuestions)),
	}

	g.logger.Debug("Requesting quiz question from LLM",
		zap.String("model", g.modelName),
		zap.Int("recent_questions", len(recentQuestions)),
	)

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			g.logger.Error("LLM request timed out", zap.Duration("timeout", g.timeout))
		}
		return "", domain.NewGenerationError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.NewGenerationError(fmt.Errorf("llm returned no choices"))
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", domain.NewGenerationError(fmt.Errorf("llm returned empty content"))
	}

	g.logger.Debug("Raw LLM response received", zap.String("raw_response", text))
	return text, nil
}

// buildUserPrompt asks for a new question and lists recent ones to avoid.
func buildUserPrompt(recentQuestions []string) string {
	var b strings.Builder
	b.WriteString("Generate one new question now.")
	if len(recentQuestions) == 0 {
		return b.String()
	}
	b.WriteString("\n\nDo NOT repeat or closely paraphrase any of these recently asked questions:")
	for _, q := range recentQuestions {
		b.WriteString("\n- ")
		b.WriteString(strings.ReplaceAll(q, "\n", " | "))
	}
	return b.String()
}

// Static assertion to ensure LLMQuestionGenerator implements QuestionGenerator
var _ domain.QuestionGenerator = (*LLMQuestionGenerator)(nil)
