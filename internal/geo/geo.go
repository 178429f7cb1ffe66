// Package geo holds the coordinate math used by the proximity engine:
// great-circle distance, coordinate validation, and grid clustering.
package geo

import (
	"fmt"
	"math"

	"github.com/vibelink/vibelink-server/internal/model"
)

// earthRadiusM is the mean Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Neighbor is an entity returned by a radius query: its id, position and
// great-circle distance from the query origin in meters.
type Neighbor struct {
	ID       string
	Point    model.Point
	Distance float64
}

// Distance returns the great-circle distance between two points in meters.
// Spherical distance avoids the latitude-dependent error of a planar
// approximation.
func Distance(a, b model.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ValidatePoint checks coordinate ranges: longitude [-180,180],
// latitude [-90,90]. NaN and infinities are rejected.
func ValidatePoint(p model.Point) error {
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) ||
		math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", model.ErrInvalidArgument)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", model.ErrInvalidArgument, p.Longitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", model.ErrInvalidArgument, p.Latitude)
	}
	return nil
}
