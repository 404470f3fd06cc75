package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/itchan-dev/anonboard/backend/internal/service"
	"github.com/itchan-dev/anonboard/shared/config"
	"github.com/itchan-dev/anonboard/shared/logger"
)

// HealthChecker is satisfied by every storage backend
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Renderer interface {
	Render(text string) string
}

type Handler struct {
	board  service.BoardService
	markup Renderer
	health HealthChecker
	cfg    *config.Config
}

func New(board service.BoardService, markup Renderer, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{board: board, markup: markup, health: health, cfg: cfg}
}

// writeJSON encodes before writing anything, so an encoding failure can still become a 500
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(text))
}
