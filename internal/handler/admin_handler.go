package handler

import (
	"strconv"

	"quiz-poll/internal/domain"
	"quiz-poll/internal/dto"
	"quiz-poll/internal/logger"
	"quiz-poll/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 100
)

// AdminHandler serves the operator API of the quiz bot.
type AdminHandler struct {
	cycles  domain.CycleService
	history domain.QuestionHistory
	archive domain.PublicationRepository // nil when archiving is disabled
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(cycles domain.CycleService, history domain.QuestionHistory, archive domain.PublicationRepository) *AdminHandler {
	return &AdminHandler{
		cycles:  cycles,
		history: history,
		archive: archive,
	}
}

// RegisterRoutes mounts /healthz and the token protected /api group on app.
func (h *AdminHandler) RegisterRoutes(app *fiber.App, jwtSecret []byte) {
	app.Get("/healthz", h.Health)

	api := app.Group("/api", middleware.AdminOnly(jwtSecret))
	api.Get("/questions/recent", h.GetRecentQuestions)
	api.Get("/publications/recent", h.GetRecentPublications)
	api.Post("/cycles", h.TriggerCycle)
}

// Health handles GET /healthz
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	snapshot, err := h.history.Load(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{
			Status:       "degraded",
			HistoryError: err.Error(),
		})
	}
	return c.JSON(dto.HealthResponse{
		Status:      "ok",
		HistorySize: snapshot.Len(),
	})
}

// GetRecentQuestions handles GET /api/questions/recent?limit=N
func (h *AdminHandler) GetRecentQuestions(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	snapshot, err := h.history.Load(c.UserContext())
	if err != nil {
		return err
	}

	tail := snapshot.Tail(limit)
	questions := make([]dto.RecentQuestion, 0, len(tail))
	for _, r := range tail {
		questions = append(questions, dto.RecentQuestion{
			Hash:      r.Hash,
			Question:  r.Question,
			DateAdded: r.DateAdded,
		})
	}

	return c.JSON(dto.RecentQuestionsResponse{
		Questions: questions,
		Total:     snapshot.Len(),
	})
}

// GetRecentPublications handles GET /api/publications/recent?limit=N
func (h *AdminHandler) GetRecentPublications(c *fiber.Ctx) error {
	if h.archive == nil {
		return fiber.NewError(fiber.StatusNotFound, "publication archive is disabled")
	}
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	publications, err := h.archive.GetRecentPublications(c.UserContext(), limit)
	if err != nil {
		return err
	}

	resp := dto.RecentPublicationsResponse{Publications: make([]dto.PublicationResponse, 0, len(publications))}
	for _, p := range publications {
		resp.Publications = append(resp.Publications, dto.PublicationResponse{
			ID:           p.ID,
			QuestionHash: p.QuestionHash,
			Prompt:       p.Prompt,
			CorrectIndex: p.CorrectIndex,
			ChatID:       p.ChatID,
			MessageID:    p.MessageID,
			PublishedAt:  p.PublishedAt,
		})
	}
	return c.JSON(resp)
}

// TriggerCycle handles POST /api/cycles. It runs a cycle synchronously, or
// joins the one already in flight, and returns its outcome.
func (h *AdminHandler) TriggerCycle(c *fiber.Ctx) error {
	logger.Get().Info("Quiz cycle triggered via admin API",
		zap.Any("subject", c.Locals(middleware.SubjectKey)),
	)

	result, err := h.cycles.RunCycle(c.UserContext())
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if result.Status == domain.CycleSkipped {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.CycleResponse{
		CycleID:    result.CycleID,
		Status:     string(result.Status),
		SkipReason: string(result.SkipReason),
		Prompt:     result.Prompt,
		WasNew:     result.WasNew,
		MessageID:  result.MessageID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	})
}

func parseLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultRecentLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, domain.NewInvalidInputError("limit must be a positive integer")
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return limit, nil
}
