package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vibelink/vibelink-server/internal/api/respond"
	"github.com/vibelink/vibelink-server/internal/api/validate"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/services"
)

// MatchHandler is a thin HTTP transport over MatchService.
type MatchHandler struct {
	svc *services.MatchService
}

func NewMatchHandler(svc *services.MatchService) *MatchHandler { return &MatchHandler{svc: svc} }

// CreateMatch POST /api/matches
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	var req struct {
		MomentID string `json:"momentId"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.CreateMatch(r.Context(), caller, req.MomentID, req.Message)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateMatchStatus PUT /api/matches/{matchId}
func (h *MatchHandler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateStatus(r.Context(), mux.Vars(r)["matchId"], caller, model.MatchStatus(req.Status))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetMatch GET /api/matches/{matchId}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	out, err := h.svc.GetByID(r.Context(), mux.Vars(r)["matchId"], caller)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListMatches GET /api/matches?page&limit
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	q := r.URL.Query()
	page, err := validate.PositiveInt("page", q.Get("page"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit, err := validate.PositiveInt("limit", q.Get("limit"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.ListForUser(r.Context(), caller, page, limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
