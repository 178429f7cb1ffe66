package geoindex

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/vibelink/vibelink-server/internal/model"
)

// Requires a reachable Redis; set VIBELINK_TEST_REDIS_ADDR to enable, e.g.
//
//	VIBELINK_TEST_REDIS_ADDR=localhost:6379 go test ./internal/geoindex/...
func TestRedisIndex_Integration(t *testing.T) {
	addr := os.Getenv("VIBELINK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("VIBELINK_TEST_REDIS_ADDR not set; skipping Redis geo index test")
	}

	ctx := context.Background()
	rdb := Connect(addr, os.Getenv("VIBELINK_TEST_REDIS_PASSWORD"))
	key := "geo:test:" + uuid.NewString()
	t.Cleanup(func() { _ = rdb.Del(ctx, key).Err() })

	ix := NewRedis(rdb, key)
	origin := model.Point{Longitude: 4.9, Latitude: 52.37}

	if err := ix.Upsert(ctx, "near", model.Point{Longitude: 4.9, Latitude: 52.3709}); err != nil {
		t.Fatalf("Upsert near: %v", err)
	}
	if err := ix.Upsert(ctx, "far", model.Point{Longitude: 4.9, Latitude: 52.3790}); err != nil {
		t.Fatalf("Upsert far: %v", err)
	}
	if err := ix.Upsert(ctx, "out", model.Point{Longitude: 5.2, Latitude: 52.37}); err != nil {
		t.Fatalf("Upsert out: %v", err)
	}

	got, err := ix.QueryRadius(ctx, origin, 2000, 0, 0)
	if err != nil {
		t.Fatalf("QueryRadius: %v", err)
	}
	if len(got) != 2 || got[0].ID != "near" || got[1].ID != "far" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got[0].Distance <= 0 || got[0].Distance >= got[1].Distance {
		t.Fatalf("distances not ascending: %+v", got)
	}

	// Offset paging
	page2, err := ix.QueryRadius(ctx, origin, 2000, 1, 1)
	if err != nil {
		t.Fatalf("QueryRadius offset: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "far" {
		t.Fatalf("unexpected page: %+v", page2)
	}

	// Moved entries leave their old position
	if err := ix.Remove(ctx, "near"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	got, err = ix.QueryRadius(ctx, origin, 2000, 0, 0)
	if err != nil {
		t.Fatalf("QueryRadius after remove: %v", err)
	}
	if len(got) != 1 || got[0].ID != "far" {
		t.Fatalf("unexpected result after remove: %+v", got)
	}

	if _, err := ix.QueryRadius(ctx, origin, 0, 0, 0); err == nil {
		t.Fatalf("expected error for non-positive radius")
	}
}
