// Package factory selects the concrete store, geo index and geocoder
// implementations named by the configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/vibelink/vibelink-server/internal/config"
	"github.com/vibelink/vibelink-server/internal/geocode"
	"github.com/vibelink/vibelink-server/internal/geoindex"
	"github.com/vibelink/vibelink-server/internal/store"
	"github.com/vibelink/vibelink-server/internal/store/memory"
	"github.com/vibelink/vibelink-server/internal/store/postgres"
	"github.com/vibelink/vibelink-server/internal/store/sqlite"
)

// NewStore selects the storage driver based on cfg.DBDriver.
func NewStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.EnsureSchema(db); err != nil {
			return nil, err
		}
		return sqlite.NewWithDB(db), nil
	case "postgres":
		if err := postgres.Bootstrap(ctx, cfg.PostgresDSN); err != nil {
			return nil, err
		}
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewGeoIndexes builds the moment and user geo indexes based on
// cfg.GeoIndexDriver. The two indexes never share a keyspace.
func NewGeoIndexes(cfg *config.Config) (moments, users geoindex.Index, err error) {
	switch cfg.GeoIndexDriver {
	case "memory":
		return geoindex.NewMemory(), geoindex.NewMemory(), nil
	case "redis":
		rdb := geoindex.Connect(cfg.RedisAddr, cfg.RedisPassword)
		return geoindex.NewRedis(rdb, "geo:moments"), geoindex.NewRedis(rdb, "geo:users"), nil
	default:
		return nil, nil, fmt.Errorf("unknown GEO_INDEX_DRIVER: %s", cfg.GeoIndexDriver)
	}
}

// NewGeocoder returns the reverse geocoder, or a no-op when none is
// configured.
func NewGeocoder(cfg *config.Config) geocode.Reverser {
	if cfg.GeocoderURL == "" {
		return geocode.Noop{}
	}
	return geocode.NewRestClient(cfg.GeocoderURL)
}
