// Package memory provides the mutex-guarded in-process store driver. It is
// the default build target and the reference implementation exercised by
// the unit test suites; fresh instances give tests full isolation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

type memStore struct {
	moments   *moments
	matches   *matches
	locations *locations
}

// New returns an empty in-memory store.
func New() store.Store {
	return &memStore{
		moments:   &moments{byID: make(map[string]model.Moment)},
		matches:   &matches{byID: make(map[string]model.Match), byPair: make(map[pairKey]string)},
		locations: &locations{byUser: make(map[string]model.UserLocation)},
	}
}

func (s *memStore) Moments() store.Moments             { return s.moments }
func (s *memStore) Matches() store.Matches             { return s.matches }
func (s *memStore) UserLocations() store.UserLocations { return s.locations }

// --- Moments ---

type moments struct {
	mu   sync.RWMutex
	byID map[string]model.Moment
}

func (m *moments) Create(_ context.Context, in *model.Moment) (*model.Moment, error) {
	if !in.ExpiresAt.After(in.CreatedAt) {
		return nil, fmt.Errorf("%w: expiresAt must be after createdAt", model.ErrInvalidArgument)
	}
	rec := *in
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	m.mu.Lock()
	m.byID[rec.ID] = rec
	m.mu.Unlock()

	out := rec
	return &out, nil
}

func (m *moments) Get(_ context.Context, id string, now time.Time) (*model.Moment, error) {
	m.mu.RLock()
	rec, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok || !rec.IsLive(now) {
		return nil, fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
	}
	out := rec
	return &out, nil
}

func (m *moments) Delete(_ context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok || !rec.IsLive(now) {
		return fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

func (m *moments) DeleteExpired(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged []string
	for id, rec := range m.byID {
		if !rec.IsLive(now) {
			delete(m.byID, id)
			purged = append(purged, id)
		}
	}
	return purged, nil
}

// --- Matches ---

type pairKey struct{ requesterID, momentID string }

type matches struct {
	mu      sync.RWMutex
	byID    map[string]model.Match
	byPair  map[pairKey]string
	nextSeq uint64
	seqs    map[string]uint64
}

func (m *matches) Create(_ context.Context, in *model.Match) (*model.Match, error) {
	rec := *in
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	key := pairKey{requesterID: rec.RequesterID, momentID: rec.MomentID}

	// The pair check and the insert happen under one lock, so concurrent
	// duplicate creates see exactly one success and one conflict.
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byPair[key]; exists {
		return nil, fmt.Errorf("match for requester %s and moment %s already exists: %w",
			rec.RequesterID, rec.MomentID, model.ErrConflict)
	}
	if m.seqs == nil {
		m.seqs = make(map[string]uint64)
	}
	m.byPair[key] = rec.ID
	m.byID[rec.ID] = rec
	m.seqs[rec.ID] = m.nextSeq
	m.nextSeq++

	out := rec
	return &out, nil
}

func (m *matches) Get(_ context.Context, id string) (*model.Match, error) {
	m.mu.RLock()
	rec, ok := m.byID[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, model.ErrNotFound)
	}
	out := rec
	return &out, nil
}

func (m *matches) UpdateStatus(_ context.Context, id string, status model.MatchStatus, now time.Time) (*model.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, model.ErrNotFound)
	}
	// The terminal check and the write share the lock, so concurrent
	// transitions see exactly one success.
	if rec.Status.Terminal() {
		return nil, fmt.Errorf("match %s already %s: %w", id, rec.Status, model.ErrInvalidOperation)
	}
	rec.Status = status
	rec.UpdatedAt = now
	m.byID[id] = rec

	out := rec
	return &out, nil
}

func (m *matches) ListForUser(_ context.Context, userID string, page, pageSize int) ([]*model.Match, int, error) {
	m.mu.RLock()
	var all []model.Match
	for _, rec := range m.byID {
		if rec.RequesterID == userID || rec.OwnerID == userID {
			all = append(all, rec)
		}
	}
	seqs := make(map[string]uint64, len(all))
	for _, rec := range all {
		seqs[rec.ID] = m.seqs[rec.ID]
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return seqs[all[i].ID] > seqs[all[j].ID]
	})

	total := len(all)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []*model.Match{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	out := make([]*model.Match, 0, end-offset)
	for _, rec := range all[offset:end] {
		cp := rec
		out = append(out, &cp)
	}
	return out, total, nil
}

// --- UserLocations ---

type locations struct {
	mu     sync.RWMutex
	byUser map[string]model.UserLocation
}

func (l *locations) Upsert(_ context.Context, loc *model.UserLocation) (*model.UserLocation, error) {
	rec := *loc
	l.mu.Lock()
	l.byUser[rec.UserID] = rec
	l.mu.Unlock()
	out := rec
	return &out, nil
}

func (l *locations) Get(_ context.Context, userID string) (*model.UserLocation, error) {
	l.mu.RLock()
	rec, ok := l.byUser[userID]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("location for user %s: %w", userID, model.ErrNotFound)
	}
	out := rec
	return &out, nil
}
