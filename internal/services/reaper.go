package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/geoindex"
	"github.com/vibelink/vibelink-server/internal/store"
)

// Reaper periodically purges expired moments and their geo index entries.
// It is advisory cleanup: every read path checks liveness itself, so a
// slow or stopped reaper never leaks expired moments to callers.
type Reaper struct {
	store    store.Store
	index    geoindex.Index
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewReaper(s store.Store, idx geoindex.Index, interval time.Duration, log zerolog.Logger) *Reaper {
	return &Reaper{store: s, index: idx, interval: interval, now: time.Now, log: log}
}

// WithClock overrides the time source. Test hook.
func (r *Reaper) WithClock(now func() time.Time) *Reaper {
	r.now = now
	return r
}

// Run sweeps on a ticker until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Msg("moment reaper starting")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("moment reaper stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := r.SweepOnce(ctx); err != nil {
				// Log and continue; the next tick retries.
				r.log.Error().Err(err).Msg("reaper sweep")
			}
		}
	}
}

// SweepOnce purges everything expired as of now and de-indexes the purged
// moments.
func (r *Reaper) SweepOnce(ctx context.Context) error {
	ids, err := r.store.Moments().DeleteExpired(ctx, r.now())
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.index.Remove(ctx, id); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		r.log.Info().Int("purged", len(ids)).Msg("expired moments purged")
	}
	return nil
}
