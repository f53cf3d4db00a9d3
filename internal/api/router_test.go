package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlechef/doodlechef/internal/api"
	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/auth"
	"github.com/doodlechef/doodlechef/internal/cleanup"
	"github.com/doodlechef/doodlechef/internal/dictionary"
	"github.com/doodlechef/doodlechef/internal/generation"
	"github.com/doodlechef/doodlechef/internal/prompt"
	"github.com/doodlechef/doodlechef/internal/suggestion"
)

const (
	testSessionSecret = "test-session-secret-at-least-32-chars"
	testCronSecret    = "test-cron-secret"
	testAdminPIN      = "4821"
)

// fakeModerator flags any input containing "forbidden".
type fakeModerator struct{}

func (fakeModerator) ModerateText(_ context.Context, input string) (*generation.ModerationResult, error) {
	return &generation.ModerationResult{
		Flagged: strings.Contains(input, "forbidden"),
		Raw:     json.RawMessage(`{"flagged":false}`),
	}, nil
}

func (fakeModerator) ModerateImage(_ context.Context, _ string) (*generation.ModerationResult, error) {
	return &generation.ModerationResult{Raw: json.RawMessage(`{"flagged":false}`)}, nil
}

// fakeImages returns a fixed payload.
type fakeImages struct{}

func (fakeImages) Generate(_ context.Context, _ string, _ generation.ImageOptions) (string, error) {
	return "aGVsbG8=", nil
}

type testEnv struct {
	router   http.Handler
	sessions *auth.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)

	dictRepo := dictionary.NewInMemoryRepository()
	ctx := context.Background()
	items := []dictionary.Item{
		{Category: dictionary.CategoryPalette, Label: "sunset", PromptText: "warm sunset palette"},
		{Category: dictionary.CategoryStyle, Label: "crayon", PromptText: "crayon drawing style"},
		{Category: dictionary.CategoryTheme, Label: "picnic", PromptText: "picnic in the park"},
		{Category: dictionary.CategoryMood, Label: "happy", PromptText: "cheerful and bright"},
	}
	for i := range items {
		require.NoError(t, dictRepo.UpsertItem(ctx, &items[i]))
	}

	genRepo := generation.NewMemoryRepository()
	generationService := generation.NewService(generation.ServiceConfig{
		Repository: genRepo,
		Composer:   prompt.NewComposer(dictRepo),
		Moderator:  fakeModerator{},
		Images:     fakeImages{},
		Logger:     logger,
	})

	suggestionService := suggestion.NewService(suggestion.NewInMemoryRepository(), logger)
	cleanupService := cleanup.NewService(genRepo, suggestion.NewInMemoryRepository(), logger)

	sessions := auth.NewSessionService(auth.SessionConfig{
		SigningKey: testSessionSecret,
		Issuer:     "https://api.doodlechef.app",
	})

	pinHash, err := auth.HashPIN(testAdminPIN)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Version:           "test",
		BuildTime:         "2026-01-01T00:00:00Z",
		Logger:            logger,
		GenerationService: generationService,
		SuggestionService: suggestionService,
		DictionaryService: dictionary.NewService(dictRepo),
		CleanupService:    cleanupService,
		PINVerifier:       auth.NewPINVerifier(pinHash),
		Sessions:          sessions,
		Lockouts:          auth.NewLockoutTracker(),
		CronSecret:        testCronSecret,
	})

	return &testEnv{router: router, sessions: sessions}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) addSession(t *testing.T, req *http.Request) {
	t.Helper()

	token, _, err := e.sessions.Issue()
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
}

func validSubmission() models.GenerationCreateRequest {
	return models.GenerationCreateRequest{
		DeviceID: uuid.NewString(),
		Palette:  "sunset",
		Style:    "crayon",
		Theme:    "picnic",
		Mood:     "happy",
	}
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Dictionary(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/dictionary", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.DictionaryList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Items, 4)

	// Prompt text never leaves the server.
	assert.NotContains(t, w.Body.String(), "warm sunset palette")
}

func TestRouter_CreateGeneration(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, http.MethodPost, "/v1/generations", validSubmission())
	w := env.do(req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var created models.GenerationCreated
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, generation.DefaultDeviceDailyLimit-1, created.RemainingToday)
}

func TestRouter_CreateGeneration_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	submission := validSubmission()
	submission.Palette = ""
	req := jsonRequest(t, http.MethodPost, "/v1/generations", submission)
	w := env.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
}

func TestRouter_CreateGeneration_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	submission := validSubmission()
	submission.Theme = "volcano"
	w := env.do(jsonRequest(t, http.MethodPost, "/v1/generations", submission))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "volcano")
}

func TestRouter_CreateSuggestion(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/v1/suggestions", models.SuggestionCreateRequest{
		DeviceID: uuid.NewString(),
		Phrase:   "a dragon made of pancakes",
	}))

	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.SuggestionCreated
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.Status)
}

func TestRouter_AdminLoginAndQueue(t *testing.T) {
	env := newTestEnv(t)

	// Wrong PIN is rejected.
	w := env.do(jsonRequest(t, http.MethodPost, "/v1/admin/login", models.LoginRequest{PIN: "0000"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct PIN sets a session cookie.
	w = env.do(jsonRequest(t, http.MethodPost, "/v1/admin/login", models.LoginRequest{PIN: testAdminPIN}))
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	sessionCookie := cookies[0]
	assert.Equal(t, auth.SessionCookieName, sessionCookie.Name)
	assert.True(t, sessionCookie.HttpOnly)

	// The cookie grants access to the queue.
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/queue", http.NoBody)
	req.AddCookie(sessionCookie)
	w = env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)

	var queue models.ReviewQueue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	assert.Empty(t, queue.Generations)
	assert.Empty(t, queue.Suggestions)
}

func TestRouter_AdminQueue_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/admin/queue", http.NoBody))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_ApproveFlow(t *testing.T) {
	env := newTestEnv(t)

	// Submit a generation.
	submission := validSubmission()
	w := env.do(jsonRequest(t, http.MethodPost, "/v1/generations", submission))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.GenerationCreated
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// It shows up in the review queue.
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/queue", http.NoBody)
	env.addSession(t, req)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var queue models.ReviewQueue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	require.Len(t, queue.Generations, 1)
	assert.Equal(t, created.ID, queue.Generations[0].ID)
	assert.Equal(t, "sunset", queue.Generations[0].TokenIDs.Palette)

	// Approve it.
	req = jsonRequest(t, http.MethodPost, "/v1/admin/approve", models.ReviewRequest{ID: created.ID})
	env.addSession(t, req)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ReviewResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "approved", result.Status)
	assert.Empty(t, result.Reason)

	// A second approve conflicts.
	req = jsonRequest(t, http.MethodPost, "/v1/admin/approve", models.ReviewRequest{ID: created.ID})
	env.addSession(t, req)
	w = env.do(req)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The image appears in the device gallery.
	w = env.do(httptest.NewRequest(http.MethodGet, "/v1/gallery?deviceId="+submission.DeviceID, http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var gallery models.Gallery
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gallery))
	require.Len(t, gallery.Images, 1)
	assert.Equal(t, created.ID, gallery.Images[0].ID)
	assert.Equal(t, "aGVsbG8=", gallery.Images[0].ImageData)
}

func TestRouter_RejectUnknownGeneration(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, http.MethodPost, "/v1/admin/reject", models.ReviewRequest{ID: uuid.NewString()})
	env.addSession(t, req)
	w := env.do(req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RejectSuggestion(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/v1/suggestions", models.SuggestionCreateRequest{
		DeviceID: uuid.NewString(),
		Phrase:   "slime milkshake",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.SuggestionCreated
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := jsonRequest(t, http.MethodPost, "/v1/admin/reject", models.ReviewRequest{
		ID:   created.ID,
		Type: "suggestion",
	})
	env.addSession(t, req)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.ReviewResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "rejected", result.Status)
	assert.Equal(t, "suggestion", result.Type)
}

func TestRouter_CronCleanup(t *testing.T) {
	env := newTestEnv(t)

	// Without the secret the sweep never runs.
	w := env.do(httptest.NewRequest(http.MethodPost, "/v1/cron/cleanup", http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong token.
	req := httptest.NewRequest(http.MethodPost, "/v1/cron/cleanup", http.NoBody)
	req.Header.Set("Authorization", "Bearer wrong-secret")
	w = env.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct token runs the sweep and reports counts.
	req = httptest.NewRequest(http.MethodPost, "/v1/cron/cleanup", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CleanupResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Zero(t, result.Deleted.Pending)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := env.do(req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
