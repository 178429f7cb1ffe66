package store

import (
	"context"
	"time"

	"github.com/vibelink/vibelink-server/internal/model"
)

// Store exposes the persistence operations the services need.
// Implementations live under internal/store/<driver>/ (memory, sqlite,
// postgres) and must pass the storetest compliance suite.
type Store interface {
	Moments() Moments
	Matches() Matches
	UserLocations() UserLocations
}

// Moments persists ephemeral posts. Expired records are logically deleted:
// no read operation may return a moment whose ExpiresAt has passed, whether
// or not the reaper purged it yet.
type Moments interface {
	// Create persists the moment, generating ID/CreatedAt/ExpiresAt when
	// unset (ExpiresAt defaults to CreatedAt + the given TTL handled by the
	// service layer). ExpiresAt must be after CreatedAt.
	Create(ctx context.Context, m *model.Moment) (*model.Moment, error)

	// Get returns model.ErrNotFound when the moment is absent or expired.
	Get(ctx context.Context, id string, now time.Time) (*model.Moment, error)

	// Delete removes the record; model.ErrNotFound when absent or expired.
	Delete(ctx context.Context, id string, now time.Time) error

	// DeleteExpired purges records with ExpiresAt <= now and returns the
	// purged ids. Advisory cleanup only; visibility never depends on it.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// Matches persists the match lifecycle. Create enforces the uniqueness of
// (RequesterID, MomentID) atomically: concurrent duplicate creates yield
// exactly one success and one model.ErrConflict.
type Matches interface {
	Create(ctx context.Context, m *model.Match) (*model.Match, error)
	Get(ctx context.Context, id string) (*model.Match, error)

	// UpdateStatus transitions a pending match to the given status and sets
	// updatedAt. The pending precondition is enforced atomically with the
	// write: a match already in a terminal state yields
	// model.ErrInvalidOperation, so concurrent transitions see exactly one
	// success. Authorization rules stay with the caller.
	UpdateStatus(ctx context.Context, id string, status model.MatchStatus, now time.Time) (*model.Match, error)

	// ListForUser returns matches where the user is requester or owner,
	// newest first, plus the total before paging.
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Match, int, error)
}

// UserLocations keeps one live record per user, last-write-wins.
type UserLocations interface {
	Upsert(ctx context.Context, loc *model.UserLocation) (*model.UserLocation, error)
	Get(ctx context.Context, userID string) (*model.UserLocation, error)
}
