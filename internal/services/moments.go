package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vibelink/vibelink-server/internal/geo"
	"github.com/vibelink/vibelink-server/internal/geoindex"
	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

const maxCaptionLen = 200

// CreateMomentRequest carries the caller-supplied fields for a new moment.
// Lifetime overrides the service default TTL when positive; zero means
// "use the default".
type CreateMomentRequest struct {
	OwnerID  string
	Caption  string
	MediaRef string
	Location model.Point
	Lifetime time.Duration
}

// MomentService orchestrates the moment lifecycle and keeps the moment geo
// index in step with the store.
type MomentService struct {
	store      store.Store
	index      geoindex.Index
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMomentService(s store.Store, idx geoindex.Index, defaultTTL time.Duration) *MomentService {
	return &MomentService{store: s, index: idx, defaultTTL: defaultTTL, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *MomentService) WithClock(now func() time.Time) *MomentService {
	s.now = now
	return s
}

func (s *MomentService) CreateMoment(ctx context.Context, req CreateMomentRequest) (*model.Moment, error) {
	if req.OwnerID == "" {
		return nil, fmt.Errorf("%w: ownerId is required", model.ErrInvalidArgument)
	}
	if len(req.Caption) > maxCaptionLen {
		return nil, fmt.Errorf("%w: caption exceeds %d characters", model.ErrInvalidArgument, maxCaptionLen)
	}
	if err := geo.ValidatePoint(req.Location); err != nil {
		return nil, err
	}
	ttl := s.defaultTTL
	if req.Lifetime != 0 {
		if req.Lifetime < 0 {
			return nil, fmt.Errorf("%w: lifetime must be positive", model.ErrInvalidArgument)
		}
		ttl = req.Lifetime
	}

	now := s.now()
	m := &model.Moment{
		OwnerID:   req.OwnerID,
		Caption:   req.Caption,
		MediaRef:  req.MediaRef,
		Location:  req.Location,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	created, err := s.store.Moments().Create(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := s.index.Upsert(ctx, created.ID, created.Location); err != nil {
		return nil, fmt.Errorf("index moment %s: %w", created.ID, err)
	}
	return created, nil
}

// GetMoment returns model.ErrNotFound for absent and expired moments alike.
func (s *MomentService) GetMoment(ctx context.Context, id string) (*model.Moment, error) {
	return s.store.Moments().Get(ctx, id, s.now())
}

// DeleteMoment removes the moment and its index entry. Only the owner may
// delete; everyone else gets model.ErrForbidden.
func (s *MomentService) DeleteMoment(ctx context.Context, id, requesterID string) error {
	m, err := s.store.Moments().Get(ctx, id, s.now())
	if err != nil {
		return err
	}
	if m.OwnerID != requesterID {
		return fmt.Errorf("%w: only the owner may delete a moment", model.ErrForbidden)
	}
	if err := s.store.Moments().Delete(ctx, id, s.now()); err != nil {
		return err
	}
	return s.index.Remove(ctx, id)
}
