package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/cloo-solutions/coach/internal/api"
	"github.com/cloo-solutions/coach/internal/api/middleware"
	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/cloo-solutions/coach/internal/logging"
	"github.com/cloo-solutions/coach/internal/service"
)

type Extractor interface {
	Extract(ctx context.Context, question string, previous *domain.KnowledgeBase) service.ExtractResult
}

type AskHandler struct {
	pipeline Extractor
	logger   logrus.FieldLogger
}

func NewAskHandler(pipeline Extractor, logger logrus.FieldLogger) *AskHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AskHandler{pipeline: pipeline, logger: logger}
}

type AskRequest struct {
	Question      string                `json:"question"`
	KnowledgeBase *domain.KnowledgeBase `json:"knowledge_base"`
}

type AskResponse struct {
	Answer        string               `json:"answer"`
	KnowledgeBase domain.KnowledgeBase `json:"knowledge_base"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	log := logging.WithRequest(h.logger, r, middleware.GetRequestID(r.Context()))

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := validateQuestion(req.Question)
	if err != nil {
		log.WithError(err).Debug("rejected question")
		api.HandleError(w, err)
		return
	}

	result := h.pipeline.Extract(r.Context(), question, req.KnowledgeBase)
	log.WithField("outcome", result.Outcome).Debug("answered question")
	middleware.Annotate(r.Context(), "outcome", string(result.Outcome))

	api.JSON(w, http.StatusOK, AskResponse{
		Answer:        result.Answer,
		KnowledgeBase: result.KnowledgeBase,
	})
}

func validateQuestion(raw string) (string, error) {
	question := strings.TrimSpace(raw)
	if question == "" {
		return "", domain.ErrQuestionRequired
	}
	if utf8.RuneCountInString(question) > domain.MaxQuestionLength {
		return "", domain.ErrQuestionTooLong
	}
	return question, nil
}
