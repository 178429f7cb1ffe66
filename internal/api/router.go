package api

import (
	"github.com/gorilla/mux"

	"github.com/vibelink/vibelink-server/internal/api/recovery"
	"github.com/vibelink/vibelink-server/internal/services"
)

// Deps bundles the services the router exposes.
type Deps struct {
	Moments   *services.MomentService
	Matches   *services.MatchService
	Query     *services.QueryService
	IsHealthy func() bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler(d.IsHealthy)
	momentHandler := NewMomentHandler(d.Moments, d.Query)
	matchHandler := NewMatchHandler(d.Matches)
	userHandler := NewUserHandler(d.Query)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Moment endpoints. /nearby is registered before the {momentId} route so
	// the literal path wins.
	router.HandleFunc("/api/moments", momentHandler.CreateMoment).Methods("POST")
	router.HandleFunc("/api/moments/nearby", momentHandler.NearbyMoments).Methods("GET")
	router.HandleFunc("/api/moments/{momentId}", momentHandler.GetMoment).Methods("GET")
	router.HandleFunc("/api/moments/{momentId}", momentHandler.DeleteMoment).Methods("DELETE")

	// Match endpoints
	router.HandleFunc("/api/matches", matchHandler.CreateMatch).Methods("POST")
	router.HandleFunc("/api/matches", matchHandler.ListMatches).Methods("GET")
	router.HandleFunc("/api/matches/{matchId}", matchHandler.GetMatch).Methods("GET")
	router.HandleFunc("/api/matches/{matchId}", matchHandler.UpdateMatchStatus).Methods("PUT")

	// User endpoints
	router.HandleFunc("/api/users/location", userHandler.UpdateLocation).Methods("PUT")
	router.HandleFunc("/api/users/clusters", userHandler.NearbyClusters).Methods("GET")

	return router
}
