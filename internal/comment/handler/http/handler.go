package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/model"
	"github.com/MyNameIsWhaaat/socialfeed/internal/comment/service"
	"github.com/MyNameIsWhaaat/socialfeed/internal/ratelimit"
	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

type Handler struct {
	svc     service.CommentService
	tl      timeline.Service
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

func New(svc service.CommentService, tl timeline.Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, tl: tl, log: log}
}

// WithRateLimit guards /timeline with l.
func (h *Handler) WithRateLimit(l *ratelimit.Limiter) *Handler {
	h.limiter = l
	return h
}

type homepageResponse struct {
	Comments []model.Comment `json:"comments"`
}

func (h *Handler) Homepage(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("id"))

	cs, err := h.svc.ListByAuthor(r.Context(), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid id"})
		default:
			h.log.Error().Err(err).Str("uid", uid).Msg("homepage query failed")
			writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{"error": "internal error"})
		}
		return
	}
	if cs == nil {
		cs = []model.Comment{}
	}

	writeJSON(w, stdhttp.StatusOK, homepageResponse{Comments: cs})
}

func (h *Handler) Timeline(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("id"))

	tl, err := h.tl.Build(r.Context(), uid)
	if err != nil {
		switch {
		case errors.Is(err, timeline.ErrInvalidInput):
			writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid id"})
		case errors.Is(err, timeline.ErrDependency):
			h.log.Warn().Err(err).Str("uid", uid).Msg("timeline dependency failed")
			writeJSON(w, stdhttp.StatusBadGateway, map[string]any{"error": "dependency failure"})
		default:
			h.log.Error().Err(err).Str("uid", uid).Msg("timeline failed")
			writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{"error": "internal error"})
		}
		return
	}

	writeJSON(w, stdhttp.StatusOK, tl)
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
