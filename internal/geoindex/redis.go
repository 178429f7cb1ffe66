package geoindex

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/model"
)

// RedisIndex stores positions in a Redis geo set so multiple processes can
// share one index. Equal distances order by member name on the server side
// rather than by insertion order.
type RedisIndex struct {
	rdb *redis.Client
	key string
}

// NewRedis wraps an existing client. key namespaces the geo set, so one
// deployment can run separate indexes for moments and user locations.
func NewRedis(rdb *redis.Client, key string) *RedisIndex {
	return &RedisIndex{rdb: rdb, key: key}
}

// Connect builds a Redis client from an address; password may be empty.
func Connect(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func (ix *RedisIndex) Upsert(ctx context.Context, id string, p model.Point) error {
	if err := geo.ValidatePoint(p); err != nil {
		return err
	}
	return ix.rdb.GeoAdd(ctx, ix.key, &redis.GeoLocation{
		Name:      id,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	}).Err()
}

func (ix *RedisIndex) Remove(ctx context.Context, id string) error {
	return ix.rdb.ZRem(ctx, ix.key, id).Err()
}

func (ix *RedisIndex) QueryRadius(ctx context.Context, origin model.Point, maxDistanceMeters float64, limit, offset int) ([]geo.Neighbor, error) {
	if err := validateQuery(origin, maxDistanceMeters); err != nil {
		return nil, err
	}

	q := &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  origin.Longitude,
			Latitude:   origin.Latitude,
			Radius:     maxDistanceMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}
	if limit > 0 {
		// The server applies the count before we skip, so lease enough rows
		// to cover the offset.
		q.Count = limit + offset
	}

	locs, err := ix.rdb.GeoSearchLocation(ctx, ix.key, q).Result()
	if err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(locs) {
		return []geo.Neighbor{}, nil
	}
	locs = locs[offset:]
	if limit > 0 && limit < len(locs) {
		locs = locs[:limit]
	}

	out := make([]geo.Neighbor, len(locs))
	for i, l := range locs {
		out[i] = geo.Neighbor{
			ID:       l.Name,
			Point:    model.Point{Longitude: l.Longitude, Latitude: l.Latitude},
			Distance: l.Dist,
		}
	}
	return out, nil
}
