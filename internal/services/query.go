package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/geocode"
	"github.com/vibelink/vibelink-server/internal/geoindex"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

// QueryDefaults fills in radius, grid size and page size when a caller
// leaves them unset (zero).
type QueryDefaults struct {
	RadiusMeters float64
	GridMeters   float64
	PageSize     int
}

// QueryService answers proximity questions: which moments are near a point,
// and where do nearby users cluster.
type QueryService struct {
	store       store.Store
	momentIndex geoindex.Index
	userIndex   geoindex.Index
	geocoder    geocode.Reverser
	defaults    QueryDefaults
	now         func() time.Time
	log         zerolog.Logger
}

func NewQueryService(s store.Store, momentIdx, userIdx geoindex.Index, gc geocode.Reverser, defaults QueryDefaults, log zerolog.Logger) *QueryService {
	return &QueryService{
		store:       s,
		momentIndex: momentIdx,
		userIndex:   userIdx,
		geocoder:    gc,
		defaults:    defaults,
		now:         time.Now,
		log:         log,
	}
}

// WithClock overrides the time source. Test hook.
func (s *QueryService) WithClock(now func() time.Time) *QueryService {
	s.now = now
	return s
}

// NearbyMoments returns the live moments within maxDistanceMeters of
// origin, nearest first. Expired moments are dropped before pagination, so
// page math always refers to the visible set.
func (s *QueryService) NearbyMoments(ctx context.Context, origin model.Point, maxDistanceMeters float64, page, pageSize int) (*model.MomentPage, error) {
	if maxDistanceMeters == 0 {
		maxDistanceMeters = s.defaults.RadiusMeters
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaults.PageSize
	}

	neighbors, err := s.momentIndex.QueryRadius(ctx, origin, maxDistanceMeters, 0, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	live := make([]*model.Moment, 0, len(neighbors))
	for _, n := range neighbors {
		m, err := s.store.Moments().Get(ctx, n.ID, now)
		if errors.Is(err, model.ErrNotFound) {
			// Stale index entry for an expired or deleted moment; the
			// reaper will catch up.
			continue
		}
		if err != nil {
			return nil, err
		}
		live = append(live, m)
	}

	total := len(live)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &model.MomentPage{
		Moments: live[start:end],
		Pagination: model.Pagination{
			Total: total,
			Page:  page,
			Pages: model.Pages(total, pageSize),
		},
	}, nil
}

// NearbyUserClusters aggregates the users around origin into grid cells.
// The requester's own location never appears in the result.
func (s *QueryService) NearbyUserClusters(ctx context.Context, requesterID string, origin model.Point, maxDistanceMeters, gridSizeMeters float64) ([]model.Cluster, error) {
	if maxDistanceMeters == 0 {
		maxDistanceMeters = s.defaults.RadiusMeters
	}
	if gridSizeMeters == 0 {
		gridSizeMeters = s.defaults.GridMeters
	}

	neighbors, err := s.userIndex.QueryRadius(ctx, origin, maxDistanceMeters, 0, 0)
	if err != nil {
		return nil, err
	}

	others := make([]geo.Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		if n.ID == requesterID {
			continue
		}
		others = append(others, n)
	}

	clusters, err := geo.ClusterUsers(origin, others, gridSizeMeters)
	if err != nil {
		return nil, err
	}

	for i := range clusters {
		label, err := s.geocoder.Reverse(ctx, clusters[i].Centroid)
		if err != nil {
			s.log.Warn().Err(err).
				Int("grid_x", clusters[i].GridX).
				Int("grid_y", clusters[i].GridY).
				Msg("cluster label lookup failed")
			continue
		}
		clusters[i].Label = label
	}
	return clusters, nil
}

// UpdateUserLocation stores the user's current position and mirrors it into
// the user geo index. Last write wins.
func (s *QueryService) UpdateUserLocation(ctx context.Context, userID string, p model.Point) (*model.UserLocation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", model.ErrInvalidArgument)
	}
	if err := geo.ValidatePoint(p); err != nil {
		return nil, err
	}

	loc := &model.UserLocation{
		UserID:    userID,
		Location:  p,
		UpdatedAt: s.now(),
	}
	saved, err := s.store.UserLocations().Upsert(ctx, loc)
	if err != nil {
		return nil, err
	}
	if err := s.userIndex.Upsert(ctx, userID, p); err != nil {
		return nil, fmt.Errorf("index user location %s: %w", userID, err)
	}
	return saved, nil
}
