package geoindex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/model"
)

func TestMemoryQueryRadiusBoundAndOrder(t *testing.T) {
	ctx := context.Background()
	ix := NewMemory()
	origin := model.Point{}

	// Points at increasing distance east of the origin, inserted shuffled.
	offsets := []float64{0.004, 0.001, 0.003, 0.002, 0.05}
	for i, off := range offsets {
		if err := ix.Upsert(ctx, fmt.Sprintf("e%d", i), model.Point{Longitude: off}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := ix.QueryRadius(ctx, origin, 500, 0, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 hits within 500m, got %d", len(got))
	}
	for i, n := range got {
		if n.Distance > 500 {
			t.Fatalf("hit %s beyond radius: %v", n.ID, n.Distance)
		}
		if d := geo.Distance(origin, n.Point); d > 500 {
			t.Fatalf("true distance of %s beyond radius: %v", n.ID, d)
		}
		if i > 0 && got[i-1].Distance > n.Distance {
			t.Fatalf("results not ascending at %d: %v > %v", i, got[i-1].Distance, n.Distance)
		}
	}
}

func TestMemoryQueryRadiusStableTies(t *testing.T) {
	ctx := context.Background()
	ix := NewMemory()

	// Same position, distinct ids: insertion order must win.
	for _, id := range []string{"z-first", "a-second", "m-third"} {
		if err := ix.Upsert(ctx, id, model.Point{Longitude: 0.001}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := ix.QueryRadius(ctx, model.Point{}, 1000, 0, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"z-first", "a-second", "m-third"}
	for i, n := range got {
		if n.ID != want[i] {
			t.Fatalf("tie order: got %v at %d, want %v", n.ID, i, want[i])
		}
	}
}

func TestMemoryLimitOffset(t *testing.T) {
	ctx := context.Background()
	ix := NewMemory()
	for i := 0; i < 5; i++ {
		p := model.Point{Longitude: 0.001 * float64(i+1)}
		if err := ix.Upsert(ctx, fmt.Sprintf("p%d", i), p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	page, err := ix.QueryRadius(ctx, model.Point{}, 10000, 2, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(page) != 2 || page[0].ID != "p2" || page[1].ID != "p3" {
		t.Fatalf("unexpected page: %+v", page)
	}

	past, err := ix.QueryRadius(ctx, model.Point{}, 10000, 2, 10)
	if err != nil {
		t.Fatalf("query past end: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("expected empty page past end, got %d", len(past))
	}
}

func TestMemoryRemoveAndUpsertVisible(t *testing.T) {
	ctx := context.Background()
	ix := NewMemory()

	if err := ix.Upsert(ctx, "u1", model.Point{Longitude: 0.001}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ix.Remove(ctx, "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := ix.QueryRadius(ctx, model.Point{}, 1000, 0, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("removed entity still returned: %+v", got)
	}

	// Moving an entity must be reflected immediately.
	if err := ix.Upsert(ctx, "u2", model.Point{Longitude: 0.001}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := ix.Upsert(ctx, "u2", model.Point{Longitude: 1}); err != nil {
		t.Fatalf("move: %v", err)
	}
	got, err = ix.QueryRadius(ctx, model.Point{}, 1000, 0, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("moved entity still within radius: %+v", got)
	}
}

func TestMemoryInvalidArguments(t *testing.T) {
	ctx := context.Background()
	ix := NewMemory()

	if err := ix.Upsert(ctx, "bad", model.Point{Latitude: 91}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad point, got %v", err)
	}
	if _, err := ix.QueryRadius(ctx, model.Point{}, 0, 0, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero radius, got %v", err)
	}
	if _, err := ix.QueryRadius(ctx, model.Point{Longitude: 200}, 100, 0, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad origin, got %v", err)
	}
}
