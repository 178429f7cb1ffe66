package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vibelink/vibelink-server/internal/geoindex"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
	"github.com/vibelink/vibelink-server/internal/store/memory"
)

type matchFixture struct {
	store   store.Store
	moments *MomentService
	matches *MatchService
	now     time.Time
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	f := &matchFixture{
		store: memory.New(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.moments = NewMomentService(f.store, geoindex.NewMemory(), 24*time.Hour).WithClock(clock)
	f.matches = NewMatchService(f.store, 10).WithClock(clock)
	return f
}

func (f *matchFixture) createMoment(t *testing.T, owner string) *model.Moment {
	t.Helper()
	m, err := f.moments.CreateMoment(context.Background(), CreateMomentRequest{OwnerID: owner})
	require.NoError(t, err)
	return m
}

func TestMatchService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	match, err := f.matches.CreateMatch(ctx, "u2", moment.ID, "can I join?")
	require.NoError(t, err)
	require.Equal(t, model.MatchPending, match.Status)
	require.Equal(t, "u1", match.OwnerID)
	require.Equal(t, "u2", match.RequesterID)

	// Same requester may not ask twice.
	_, err = f.matches.CreateMatch(ctx, "u2", moment.ID, "again")
	require.ErrorIs(t, err, model.ErrConflict)

	// A different requester may.
	_, err = f.matches.CreateMatch(ctx, "u3", moment.ID, "")
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	updated, err := f.matches.UpdateStatus(ctx, match.ID, "u1", model.MatchAccepted)
	require.NoError(t, err)
	require.Equal(t, model.MatchAccepted, updated.Status)
	require.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	// Terminal: no second transition, not even to the same status.
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u1", model.MatchRejected)
	require.ErrorIs(t, err, model.ErrInvalidOperation)
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u1", model.MatchAccepted)
	require.ErrorIs(t, err, model.ErrInvalidOperation)
}

func TestMatchService_ConcurrentDecisions(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	match, err := f.matches.CreateMatch(ctx, "u2", moment.ID, "")
	require.NoError(t, err)

	// The owner racing accept against reject must settle on exactly one
	// outcome; the losing call fails instead of overwriting it.
	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		status := model.MatchAccepted
		if i%2 == 1 {
			status = model.MatchRejected
		}
		wg.Add(1)
		go func(i int, st model.MatchStatus) {
			defer wg.Done()
			_, results[i] = f.matches.UpdateStatus(ctx, match.ID, "u1", st)
		}(i, status)
	}
	wg.Wait()

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, model.ErrInvalidOperation)
	}
	require.Equal(t, 1, ok)

	got, err := f.matches.GetByID(ctx, match.ID, "u1")
	require.NoError(t, err)
	require.True(t, got.Status.Terminal())
}

func TestMatchService_CreateRejectsSelfJoin(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	_, err := f.matches.CreateMatch(ctx, "u1", moment.ID, "")
	require.ErrorIs(t, err, model.ErrInvalidOperation)
}

func TestMatchService_CreateRequiresLiveMoment(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)

	_, err := f.matches.CreateMatch(ctx, "u2", "no-such-moment", "")
	require.ErrorIs(t, err, model.ErrNotFound)

	moment := f.createMoment(t, "u1")
	f.now = f.now.Add(25 * time.Hour)
	_, err = f.matches.CreateMatch(ctx, "u2", moment.ID, "")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMatchService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	_, err := f.matches.CreateMatch(ctx, "", moment.ID, "")
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = f.matches.CreateMatch(ctx, "u2", "", "")
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = f.matches.CreateMatch(ctx, "u2", moment.ID, strings.Repeat("x", 501))
	require.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestMatchService_UpdateStatusAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	match, err := f.matches.CreateMatch(ctx, "u2", moment.ID, "")
	require.NoError(t, err)

	// The requester cannot decide their own request.
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u2", model.MatchAccepted)
	require.ErrorIs(t, err, model.ErrForbidden)

	// Bystanders cannot either.
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u3", model.MatchAccepted)
	require.ErrorIs(t, err, model.ErrForbidden)

	// Target status is restricted to the terminal pair.
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u1", model.MatchPending)
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	_, err = f.matches.UpdateStatus(ctx, match.ID, "u1", "banana")
	require.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = f.matches.UpdateStatus(ctx, "no-such-match", "u1", model.MatchAccepted)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMatchService_GetByID_ParticipantsOnly(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	match, err := f.matches.CreateMatch(ctx, "u2", moment.ID, "")
	require.NoError(t, err)

	for _, uid := range []string{"u1", "u2"} {
		got, err := f.matches.GetByID(ctx, match.ID, uid)
		require.NoError(t, err)
		require.Equal(t, match.ID, got.ID)
	}

	_, err = f.matches.GetByID(ctx, match.ID, "u3")
	require.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.matches.GetByID(ctx, "no-such-match", "u1")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMatchService_ListForUser_PageMath(t *testing.T) {
	ctx := context.Background()
	f := newMatchFixture(t)
	moment := f.createMoment(t, "u1")

	for i := 0; i < 7; i++ {
		f.now = f.now.Add(time.Second)
		_, err := f.matches.CreateMatch(ctx, fmt.Sprintf("req-%d", i), moment.ID, "")
		require.NoError(t, err)
	}

	// Owner side sees all seven.
	page1, err := f.matches.ListForUser(ctx, "u1", 1, 3)
	require.NoError(t, err)
	require.Len(t, page1.Matches, 3)
	require.Equal(t, model.Pagination{Total: 7, Page: 1, Pages: 3}, page1.Pagination)

	// Newest first.
	require.Equal(t, "req-6", page1.Matches[0].RequesterID)

	page3, err := f.matches.ListForUser(ctx, "u1", 3, 3)
	require.NoError(t, err)
	require.Len(t, page3.Matches, 1)

	// Beyond the last page: empty, same totals.
	page4, err := f.matches.ListForUser(ctx, "u1", 4, 3)
	require.NoError(t, err)
	require.Empty(t, page4.Matches)
	require.Equal(t, 7, page4.Pagination.Total)

	// Requester side sees their single match.
	reqPage, err := f.matches.ListForUser(ctx, "req-2", 1, 10)
	require.NoError(t, err)
	require.Len(t, reqPage.Matches, 1)

	// Defaults kick in for out-of-range paging arguments.
	defPage, err := f.matches.ListForUser(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, defPage.Pagination.Page)
	require.Len(t, defPage.Matches, 7)
}
