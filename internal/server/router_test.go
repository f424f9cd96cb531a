package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/coach/internal/api"
	"github.com/cloo-solutions/coach/internal/api/handlers"
	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/cloo-solutions/coach/internal/prompt"
	"github.com/cloo-solutions/coach/internal/service"
)

type stubCompleter struct {
	output string
	err    error
}

func (s stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return s.output, s.err
}

type panickingExtractor struct{}

func (panickingExtractor) Extract(ctx context.Context, question string, previous *domain.KnowledgeBase) service.ExtractResult {
	panic("unexpected")
}

func newTestRouter(t *testing.T, completer service.Completer) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()

	composer, err := prompt.NewComposer()
	require.NoError(t, err)

	pipeline := service.NewPipeline(service.PipelineConfig{
		Completer: completer,
		Composer:  composer,
		Model:     "mistral:latest",
		Logger:    logger,
	})

	return NewRouter(RouterConfig{
		Logger:         logger,
		Model:          "mistral:latest",
		AskHandler:     handlers.NewAskHandler(pipeline, logger),
		HealthHandler:  handlers.NewHealthHandler(),
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:   1 << 20,
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, stubCompleter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"data":{"status":"healthy","message":"Coach API is running"}}`, w.Body.String())
}

func TestRouter_AskExtracts(t *testing.T) {
	router := newTestRouter(t, stubCompleter{
		output: `"input": "marathon", "summary": "Training for a marathon", "response": "Build your long run slowly."`,
	})

	body := `{"question":"I want to run a marathon","knowledge_base":null}`
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Build your long run slowly.", resp.Answer)
	assert.Equal(t, domain.KnowledgeBase{
		Input:    "marathon",
		Summary:  "Training for a marathon",
		Response: "Build your long run slowly.",
	}, resp.KnowledgeBase)
}

func TestRouter_AskModelDown(t *testing.T) {
	router := newTestRouter(t, stubCompleter{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question":"hello"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.FallbackAnswer("hello"), resp.Answer)
	assert.Equal(t, domain.ErrorKnowledgeBase("hello"), resp.KnowledgeBase)
}

func TestRouter_AccessLogCarriesOutcome(t *testing.T) {
	logger, hook := test.NewNullLogger()
	composer, err := prompt.NewComposer()
	require.NoError(t, err)

	pipeline := service.NewPipeline(service.PipelineConfig{
		Completer: stubCompleter{err: errors.New("connection refused")},
		Composer:  composer,
		Model:     "mistral:latest",
		Logger:    logger,
	})
	router := NewRouter(RouterConfig{
		Logger:     logger,
		Model:      "mistral:latest",
		AskHandler: handlers.NewAskHandler(pipeline, logger),
	})

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question":"hello"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, string(service.OutcomeErrorFallback), entry.Data["outcome"])
}

func TestRouter_AskValidation(t *testing.T) {
	router := newTestRouter(t, stubCompleter{})

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question":""}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"question is required"}`, w.Body.String())
}

func TestRouter_BodyTooLarge(t *testing.T) {
	logger, _ := test.NewNullLogger()
	router := NewRouter(RouterConfig{
		Logger:       logger,
		AskHandler:   handlers.NewAskHandler(panickingExtractor{}, logger),
		MaxBodyBytes: 32,
	})

	body := `{"question":"` + strings.Repeat("a", 100) + `"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_PanicReturnsApology(t *testing.T) {
	logger, _ := test.NewNullLogger()
	router := NewRouter(RouterConfig{
		Logger:     logger,
		AskHandler: handlers.NewAskHandler(panickingExtractor{}, logger),
	})

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewBufferString(`{"question":"hello"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, api.TechnicalDifficultiesMessage, resp.Error)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, stubCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter(t, stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, stubCompleter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ask", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
