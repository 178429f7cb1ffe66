package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vibelink/vibelink-server/internal/api/respond"
	"github.com/vibelink/vibelink-server/internal/api/validate"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/services"
)

// MomentHandler is a thin HTTP transport over MomentService and the nearby
// query path.
type MomentHandler struct {
	moments *services.MomentService
	query   *services.QueryService
}

func NewMomentHandler(moments *services.MomentService, query *services.QueryService) *MomentHandler {
	return &MomentHandler{moments: moments, query: query}
}

// CreateMoment POST /api/moments
func (h *MomentHandler) CreateMoment(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	var req struct {
		Caption         string      `json:"caption"`
		MediaRef        string      `json:"mediaRef"`
		Location        model.Point `json:"location"`
		LifetimeSeconds int64       `json:"lifetimeSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.moments.CreateMoment(r.Context(), services.CreateMomentRequest{
		OwnerID:  caller,
		Caption:  req.Caption,
		MediaRef: req.MediaRef,
		Location: req.Location,
		Lifetime: time.Duration(req.LifetimeSeconds) * time.Second,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetMoment GET /api/moments/{momentId}
func (h *MomentHandler) GetMoment(w http.ResponseWriter, r *http.Request) {
	out, err := h.moments.GetMoment(r.Context(), mux.Vars(r)["momentId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteMoment DELETE /api/moments/{momentId}
func (h *MomentHandler) DeleteMoment(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	if err := h.moments.DeleteMoment(r.Context(), mux.Vars(r)["momentId"], caller); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NearbyMoments GET /api/moments/nearby?lat&lng&maxDistance&page&limit
func (h *MomentHandler) NearbyMoments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin, err := validate.Coordinates(q.Get("lat"), q.Get("lng"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	maxDistance, err := validate.PositiveFloat("maxDistance", q.Get("maxDistance"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
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

	out, err := h.query.NearbyMoments(r.Context(), origin, maxDistance, page, limit)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
