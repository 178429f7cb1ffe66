// Package storetest holds the compliance suite every store driver must
// pass. Driver test files call Run with a constructor returning a clean,
// isolated store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

// Run exercises the persistence contract against a store.Store implementation.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	owner := "owner-" + uuid.NewString()
	requester := "req-" + uuid.NewString()

	// Moments: create with explicit lifetime
	m, err := s.Moments().Create(ctx, &model.Moment{
		OwnerID:   owner,
		Caption:   "sunset at the pier",
		MediaRef:  "media/abc123",
		Location:  model.Point{Longitude: -122.42, Latitude: 37.77},
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateMoment: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("CreateMoment: empty id")
	}

	// Live read
	if got, err := s.Moments().Get(ctx, m.ID, now.Add(time.Hour)); err != nil || got.Caption != "sunset at the pier" {
		t.Fatalf("GetMoment: got=%v err=%v", got, err)
	}

	// Expired moments are invisible even before a purge
	if _, err := s.Moments().Get(ctx, m.ID, now.Add(25*time.Hour)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMoment expired: expected ErrNotFound, got %v", err)
	}
	if err := s.Moments().Delete(ctx, m.ID, now.Add(25*time.Hour)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteMoment expired: expected ErrNotFound, got %v", err)
	}

	// Rejects non-positive lifetime
	if _, err := s.Moments().Create(ctx, &model.Moment{
		OwnerID: owner, Caption: "bad", CreatedAt: now, ExpiresAt: now,
	}); !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("CreateMoment zero lifetime: expected ErrInvalidArgument, got %v", err)
	}

	// Matches: create, duplicate pair conflicts
	match, err := s.Matches().Create(ctx, &model.Match{
		RequesterID: requester,
		OwnerID:     owner,
		MomentID:    m.ID,
		Status:      model.MatchPending,
		Message:     "hi",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if match.ID == "" || match.Status != model.MatchPending {
		t.Fatalf("CreateMatch: unexpected record %+v", match)
	}
	if _, err := s.Matches().Create(ctx, &model.Match{
		RequesterID: requester, OwnerID: owner, MomentID: m.ID,
		Status: model.MatchPending, CreatedAt: now, UpdatedAt: now,
	}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("CreateMatch duplicate: expected ErrConflict, got %v", err)
	}

	// A different requester for the same moment is fine
	if _, err := s.Matches().Create(ctx, &model.Match{
		RequesterID: "req2-" + uuid.NewString(), OwnerID: owner, MomentID: m.ID,
		Status: model.MatchPending, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second),
	}); err != nil {
		t.Fatalf("CreateMatch second requester: %v", err)
	}

	// Get and status update
	if got, err := s.Matches().Get(ctx, match.ID); err != nil || got.Message != "hi" {
		t.Fatalf("GetMatch: got=%v err=%v", got, err)
	}
	later := now.Add(2 * time.Second)
	upd, err := s.Matches().UpdateStatus(ctx, match.ID, model.MatchAccepted, later)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if upd.Status != model.MatchAccepted || !upd.UpdatedAt.After(upd.CreatedAt) {
		t.Fatalf("UpdateStatus: unexpected record %+v", upd)
	}
	if _, err := s.Matches().UpdateStatus(ctx, "missing-"+uuid.NewString(), model.MatchRejected, later); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateStatus missing: expected ErrNotFound, got %v", err)
	}

	// A terminal match never transitions again, not even to the same
	// status; the store enforces this atomically with the write.
	if _, err := s.Matches().UpdateStatus(ctx, match.ID, model.MatchRejected, later.Add(time.Second)); !errors.Is(err, model.ErrInvalidOperation) {
		t.Fatalf("UpdateStatus terminal: expected ErrInvalidOperation, got %v", err)
	}
	if _, err := s.Matches().UpdateStatus(ctx, match.ID, model.MatchAccepted, later.Add(time.Second)); !errors.Is(err, model.ErrInvalidOperation) {
		t.Fatalf("UpdateStatus terminal same-status: expected ErrInvalidOperation, got %v", err)
	}
	if got, err := s.Matches().Get(ctx, match.ID); err != nil || got.Status != model.MatchAccepted || !got.UpdatedAt.Equal(upd.UpdatedAt) {
		t.Fatalf("UpdateStatus terminal: record changed, got=%+v err=%v", got, err)
	}

	// ListForUser: newest first, both roles, paging totals
	lst, total, err := s.Matches().ListForUser(ctx, owner, 1, 10)
	if err != nil || total != 2 || len(lst) != 2 {
		t.Fatalf("ListForUser owner: n=%d total=%d err=%v", len(lst), total, err)
	}
	if lst[0].CreatedAt.Before(lst[1].CreatedAt) {
		t.Fatalf("ListForUser: not sorted newest first")
	}
	if _, total, err := s.Matches().ListForUser(ctx, requester, 1, 10); err != nil || total != 1 {
		t.Fatalf("ListForUser requester: total=%d err=%v", total, err)
	}
	if page2, total, err := s.Matches().ListForUser(ctx, owner, 5, 10); err != nil || total != 2 || len(page2) != 0 {
		t.Fatalf("ListForUser past end: n=%d total=%d err=%v", len(page2), total, err)
	}

	// UserLocations: last write wins
	uid := "loc-" + uuid.NewString()
	if _, err := s.UserLocations().Upsert(ctx, &model.UserLocation{
		UserID: uid, Location: model.Point{Longitude: 1, Latitude: 1}, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}
	if _, err := s.UserLocations().Upsert(ctx, &model.UserLocation{
		UserID: uid, Location: model.Point{Longitude: 2, Latitude: 2}, UpdatedAt: later,
	}); err != nil {
		t.Fatalf("UpsertLocation overwrite: %v", err)
	}
	loc, err := s.UserLocations().Get(ctx, uid)
	if err != nil || loc.Location.Longitude != 2 {
		t.Fatalf("GetLocation: got=%v err=%v", loc, err)
	}
	if _, err := s.UserLocations().Get(ctx, "absent-"+uuid.NewString()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetLocation absent: expected ErrNotFound, got %v", err)
	}

	// Reaper hook: expired rows purge, live rows survive
	expired, err := s.Moments().Create(ctx, &model.Moment{
		OwnerID: owner, Caption: "short lived", CreatedAt: now, ExpiresAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateMoment short lived: %v", err)
	}
	live, err := s.Moments().Create(ctx, &model.Moment{
		OwnerID: owner, Caption: "long lived", CreatedAt: now, ExpiresAt: now.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateMoment long lived: %v", err)
	}
	purged, err := s.Moments().DeleteExpired(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if !containsID(purged, expired.ID) {
		t.Fatalf("DeleteExpired: %s not purged (got %v)", expired.ID, purged)
	}
	if containsID(purged, live.ID) {
		t.Fatalf("DeleteExpired: live moment %s purged", live.ID)
	}
	if _, err := s.Moments().Get(ctx, live.ID, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("GetMoment after sweep: %v", err)
	}

	// Owner delete path
	if err := s.Moments().Delete(ctx, live.ID, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("DeleteMoment: %v", err)
	}
	if _, err := s.Moments().Get(ctx, live.ID, now.Add(2*time.Hour)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetMoment after delete: expected ErrNotFound, got %v", err)
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
