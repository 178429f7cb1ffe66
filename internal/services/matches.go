package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

const maxMessageLen = 500

// MatchService runs the match state machine: a requester asks to join a
// live moment, the moment owner accepts or rejects exactly once.
type MatchService struct {
	store           store.Store
	defaultPageSize int
	now             func() time.Time
}

func NewMatchService(s store.Store, defaultPageSize int) *MatchService {
	return &MatchService{store: s, defaultPageSize: defaultPageSize, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *MatchService) WithClock(now func() time.Time) *MatchService {
	s.now = now
	return s
}

// CreateMatch records a pending join request against a live moment. The
// moment must exist and be live, the requester must not be its owner, and
// at most one match may exist per (requester, moment) pair.
func (s *MatchService) CreateMatch(ctx context.Context, requesterID, momentID, message string) (*model.Match, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("%w: requesterId is required", model.ErrInvalidArgument)
	}
	if momentID == "" {
		return nil, fmt.Errorf("%w: momentId is required", model.ErrInvalidArgument)
	}
	if len(message) > maxMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", model.ErrInvalidArgument, maxMessageLen)
	}

	now := s.now()
	m, err := s.store.Moments().Get(ctx, momentID, now)
	if err != nil {
		return nil, err
	}
	if m.OwnerID == requesterID {
		return nil, fmt.Errorf("%w: cannot request a match on your own moment", model.ErrInvalidOperation)
	}

	match := &model.Match{
		RequesterID: requesterID,
		OwnerID:     m.OwnerID,
		MomentID:    momentID,
		Status:      model.MatchPending,
		Message:     message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.store.Matches().Create(ctx, match)
}

// UpdateStatus transitions a pending match to accepted or rejected. Only
// the moment owner may transition it, and only once.
func (s *MatchService) UpdateStatus(ctx context.Context, matchID, actingUserID string, status model.MatchStatus) (*model.Match, error) {
	if status != model.MatchAccepted && status != model.MatchRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected, got %q", model.ErrInvalidArgument, status)
	}
	match, err := s.store.Matches().Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.OwnerID != actingUserID {
		return nil, fmt.Errorf("%w: only the moment owner may update a match", model.ErrForbidden)
	}
	if match.Status.Terminal() {
		return nil, fmt.Errorf("%w: match already %s", model.ErrInvalidOperation, match.Status)
	}
	return s.store.Matches().UpdateStatus(ctx, matchID, status, s.now())
}

// GetByID returns the match to its participants only.
func (s *MatchService) GetByID(ctx context.Context, matchID, actingUserID string) (*model.Match, error) {
	match, err := s.store.Matches().Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.RequesterID != actingUserID && match.OwnerID != actingUserID {
		return nil, fmt.Errorf("%w: not a participant in this match", model.ErrForbidden)
	}
	return match, nil
}

// ListForUser pages through the user's matches, newest first.
func (s *MatchService) ListForUser(ctx context.Context, userID string, page, pageSize int) (*model.MatchPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	matches, total, err := s.store.Matches().ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &model.MatchPage{
		Matches: matches,
		Pagination: model.Pagination{
			Total: total,
			Page:  page,
			Pages: model.Pages(total, pageSize),
		},
	}, nil
}
