// Package geoindex provides the radius-query structure over point-located
// entities. Implementations live in this package (memory, redis); services
// receive the Index interface.
package geoindex

import (
	"context"
	"fmt"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/model"
)

// Index answers "within radius, sorted by distance" queries over entities
// keyed by id. Upserts and removals completed before a query starts must be
// visible to it.
type Index interface {
	// Upsert inserts or replaces the entity's position.
	Upsert(ctx context.Context, id string, p model.Point) error

	// Remove drops the entity from the index. Removing an absent id is a no-op.
	Remove(ctx context.Context, id string) error

	// QueryRadius returns entities within maxDistanceMeters of origin,
	// ascending by distance. limit <= 0 means unlimited; offset skips the
	// nearest entries.
	QueryRadius(ctx context.Context, origin model.Point, maxDistanceMeters float64, limit, offset int) ([]geo.Neighbor, error)
}

func validateQuery(origin model.Point, maxDistanceMeters float64) error {
	if err := geo.ValidatePoint(origin); err != nil {
		return err
	}
	if maxDistanceMeters <= 0 {
		return fmt.Errorf("%w: maxDistanceMeters must be positive, got %v", model.ErrInvalidArgument, maxDistanceMeters)
	}
	return nil
}
