package api

import (
	"encoding/json"
	"net/http"

	"github.com/vibelink/vibelink-server/internal/api/respond"
	"github.com/vibelink/vibelink-server/internal/api/validate"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/services"
)

// UserHandler covers the user-side proximity surface: location updates and
// cluster queries.
type UserHandler struct {
	query *services.QueryService
}

func NewUserHandler(query *services.QueryService) *UserHandler { return &UserHandler{query: query} }

// UpdateLocation PUT /api/users/location
func (h *UserHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
	var req model.Point
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.query.UpdateUserLocation(r.Context(), caller, req)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// NearbyClusters GET /api/users/clusters?lat&lng&maxDistance&gridSize
func (h *UserHandler) NearbyClusters(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		respond.WriteUnauthorized(w, "missing "+callerIDHeader)
		return
	}
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
	gridSize, err := validate.PositiveFloat("gridSize", q.Get("gridSize"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	clusters, err := h.query.NearbyUserClusters(r.Context(), caller, origin, maxDistance, gridSize)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"clusters": clusters,
		"count":    len(clusters),
	})
}
