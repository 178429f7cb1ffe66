package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/vibelink/vibelink-server/internal/model"
)

// metersPerDegree is the equatorial meters-per-degree constant applied
// uniformly to both axes. The approximation degrades at high latitudes;
// acceptable for human-scale proximity at moderate latitudes.
const metersPerDegree = 111320.0

// ClusterUsers partitions points already filtered to within radius into
// fixed-size grid cells relative to origin and aggregates each cell.
// The caller is responsible for excluding the querying user's own location
// from the input. An empty input yields an empty result; a cell holding a
// single point is still a valid cluster.
func ClusterUsers(origin model.Point, points []Neighbor, gridSizeMeters float64) ([]model.Cluster, error) {
	if gridSizeMeters <= 0 {
		return nil, fmt.Errorf("%w: gridSizeMeters must be positive, got %v", model.ErrInvalidArgument, gridSizeMeters)
	}

	stepDeg := gridSizeMeters / metersPerDegree

	type cellKey struct{ x, y int }
	type cellAgg struct {
		count   int
		sumLng  float64
		sumLat  float64
		sumDist float64
	}

	cells := make(map[cellKey]*cellAgg)
	for _, p := range points {
		key := cellKey{
			x: int(math.Floor((p.Point.Longitude - origin.Longitude) / stepDeg)),
			y: int(math.Floor((p.Point.Latitude - origin.Latitude) / stepDeg)),
		}
		agg := cells[key]
		if agg == nil {
			agg = &cellAgg{}
			cells[key] = agg
		}
		agg.count++
		agg.sumLng += p.Point.Longitude
		agg.sumLat += p.Point.Latitude
		agg.sumDist += p.Distance
	}

	out := make([]model.Cluster, 0, len(cells))
	for key, agg := range cells {
		n := float64(agg.count)
		out = append(out, model.Cluster{
			GridX: key.x,
			GridY: key.y,
			Count: agg.count,
			Centroid: model.Point{
				Longitude: agg.sumLng / n,
				Latitude:  agg.sumLat / n,
			},
			MeanDistance: math.Round(agg.sumDist/n*100) / 100,
		})
	}

	// Ascending mean distance; (gridX, gridY) breaks ties for determinism.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanDistance != out[j].MeanDistance {
			return out[i].MeanDistance < out[j].MeanDistance
		}
		if out[i].GridX != out[j].GridX {
			return out[i].GridX < out[j].GridX
		}
		return out[i].GridY < out[j].GridY
	})
	return out, nil
}
