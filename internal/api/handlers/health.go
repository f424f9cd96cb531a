package handlers

import (
	"net/http"

	"github.com/cloo-solutions/coach/internal/api"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Message: "Coach API is running",
	})
}
