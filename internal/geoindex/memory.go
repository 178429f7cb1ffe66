package geoindex

import (
	"context"
	"sort"
	"sync"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/model"
)

// MemoryIndex is an in-process Index backed by a mutex-guarded map and a
// linear scan. Entities keep their original insertion sequence across
// upserts so equal distances order stably.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	nextSeq uint64
}

type memEntry struct {
	point model.Point
	seq   uint64
}

// NewMemory returns an empty in-memory index.
func NewMemory() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memEntry)}
}

func (ix *MemoryIndex) Upsert(_ context.Context, id string, p model.Point) error {
	if err := geo.ValidatePoint(p); err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if prev, ok := ix.entries[id]; ok {
		ix.entries[id] = memEntry{point: p, seq: prev.seq}
		return nil
	}
	ix.entries[id] = memEntry{point: p, seq: ix.nextSeq}
	ix.nextSeq++
	return nil
}

func (ix *MemoryIndex) Remove(_ context.Context, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries, id)
	return nil
}

func (ix *MemoryIndex) QueryRadius(_ context.Context, origin model.Point, maxDistanceMeters float64, limit, offset int) ([]geo.Neighbor, error) {
	if err := validateQuery(origin, maxDistanceMeters); err != nil {
		return nil, err
	}

	type hit struct {
		geo.Neighbor
		seq uint64
	}

	ix.mu.RLock()
	hits := make([]hit, 0, len(ix.entries))
	for id, e := range ix.entries {
		d := geo.Distance(origin, e.point)
		if d <= maxDistanceMeters {
			hits = append(hits, hit{Neighbor: geo.Neighbor{ID: id, Point: e.point, Distance: d}, seq: e.seq})
		}
	}
	ix.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].seq < hits[j].seq
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return []geo.Neighbor{}, nil
	}
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}

	out := make([]geo.Neighbor, len(hits))
	for i, h := range hits {
		out[i] = h.Neighbor
	}
	return out, nil
}
