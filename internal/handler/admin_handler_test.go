package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"quiz-poll/internal/config"
	"quiz-poll/internal/dedup"
	"quiz-poll/internal/domain"
	"quiz-poll/internal/dto"
	"quiz-poll/internal/logger"
	"quiz-poll/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var adminSecret = []byte("admin-secret")

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error", Env: "test"}); err != nil {
		log.Fatalf("Failed to initialize logger for handler tests: %v", err)
	}
	exitCode := m.Run()
	_ = logger.Sync()
	os.Exit(exitCode)
}

type MockCycleService struct {
	mock.Mock
}

func (m *MockCycleService) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CycleResult), args.Error(1)
}

type MockPublicationRepository struct {
	mock.Mock
}

func (m *MockPublicationRepository) SavePublication(ctx context.Context, p *domain.Publication) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPublicationRepository) GetRecentPublications(ctx context.Context, limit int) ([]*domain.Publication, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Publication), args.Error(1)
}

type testEnv struct {
	app     *fiber.App
	cycles  *MockCycleService
	archive *MockPublicationRepository
	history *dedup.FileStore
	token   string
}

func setupTestApp(t *testing.T, withArchive bool) *testEnv {
	t.Helper()
	env := &testEnv{
		cycles:  new(MockCycleService),
		archive: new(MockPublicationRepository),
		history: dedup.NewFileStore(afero.NewMemMapFs(), "question_history.json", zap.NewNop()),
	}
	var archive domain.PublicationRepository
	if withArchive {
		archive = env.archive
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	NewAdminHandler(env.cycles, env.history, archive).RegisterRoutes(env.app, adminSecret)

	token, err := middleware.IssueAdminToken(adminSecret, "tester", time.Hour)
	require.NoError(t, err)
	env.token = token
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, authed bool) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerSchema+e.token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	env := setupTestApp(t, false)
	_, err := env.history.Record(context.Background(), "q1")
	require.NoError(t, err)

	status, body := env.do(t, "GET", "/healthz", false)

	assert.Equal(t, fiber.StatusOK, status)
	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.HistorySize)
}

func TestGetRecentQuestions(t *testing.T) {
	env := setupTestApp(t, false)
	for _, q := range []string{"q1", "q2", "q3"} {
		_, err := env.history.Record(context.Background(), q)
		require.NoError(t, err)
	}

	status, body := env.do(t, "GET", "/api/questions/recent?limit=2", true)

	assert.Equal(t, fiber.StatusOK, status)
	var resp dto.RecentQuestionsResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, "q2", resp.Questions[0].Question)
	assert.Equal(t, domain.HashPrompt("q3"), resp.Questions[1].Hash)
}

func TestGetRecentQuestions_Validation(t *testing.T) {
	env := setupTestApp(t, false)

	status, _ := env.do(t, "GET", "/api/questions/recent", false)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	for _, limit := range []string{"0", "-1", "abc"} {
		status, body := env.do(t, "GET", "/api/questions/recent?limit="+limit, true)
		assert.Equal(t, fiber.StatusBadRequest, status, limit)
		var errResp middleware.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &errResp))
		assert.Equal(t, string(domain.ErrInvalidInput), errResp.Code)
	}
}

func TestGetRecentPublications(t *testing.T) {
	env := setupTestApp(t, true)
	publishedAt := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	env.archive.On("GetRecentPublications", mock.Anything, 5).
		Return([]*domain.Publication{{ID: "p1", MessageID: 42, CorrectIndex: 1, PublishedAt: publishedAt}}, nil).Once()

	status, body := env.do(t, "GET", "/api/publications/recent", true)

	assert.Equal(t, fiber.StatusOK, status)
	var resp dto.RecentPublicationsResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Publications, 1)
	assert.Equal(t, 42, resp.Publications[0].MessageID)
	assert.True(t, publishedAt.Equal(resp.Publications[0].PublishedAt))
	env.archive.AssertExpectations(t)
}

func TestGetRecentPublications_ArchiveDisabled(t *testing.T) {
	env := setupTestApp(t, false)

	status, _ := env.do(t, "GET", "/api/publications/recent", true)

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTriggerCycle(t *testing.T) {
	tests := []struct {
		name       string
		result     *domain.CycleResult
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "published",
			result:     &domain.CycleResult{CycleID: "c1", Status: domain.CyclePublished, WasNew: true, MessageID: 7},
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "skipped",
			result:     &domain.CycleResult{CycleID: "c2", Status: domain.CycleSkipped, SkipReason: domain.InvalidOptionCount},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "generation failed",
			err:        domain.NewGenerationError(errors.New("quota")),
			wantStatus: fiber.StatusServiceUnavailable,
			wantCode:   "GENERATION_FAILED",
		},
		{
			name:       "history locked",
			err:        errors.Join(errors.New("failed to lock question history"), domain.ErrLockNotAcquired),
			wantStatus: fiber.StatusConflict,
			wantCode:   "CYCLE_IN_PROGRESS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestApp(t, false)
			if tt.err != nil {
				env.cycles.On("RunCycle", mock.Anything).Return(nil, tt.err).Once()
			} else {
				env.cycles.On("RunCycle", mock.Anything).Return(tt.result, nil).Once()
			}

			status, body := env.do(t, "POST", "/api/cycles", true)

			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode != "" {
				var errResp middleware.ErrorResponse
				require.NoError(t, json.Unmarshal(body, &errResp))
				assert.Equal(t, tt.wantCode, errResp.Code)
			} else {
				var resp dto.CycleResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, tt.result.CycleID, resp.CycleID)
				assert.Equal(t, string(tt.result.Status), resp.Status)
				assert.Equal(t, string(tt.result.SkipReason), resp.SkipReason)
			}
			env.cycles.AssertExpectations(t)
		})
	}
}

func TestTriggerCycle_RequiresToken(t *testing.T) {
	env := setupTestApp(t, false)

	status, _ := env.do(t, "POST", "/api/cycles", false)

	assert.Equal(t, fiber.StatusUnauthorized, status)
	env.cycles.AssertNotCalled(t, "RunCycle", mock.Anything)
}
