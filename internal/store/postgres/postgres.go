// Package postgres provides the PostgreSQL store driver used by the cloud
// build targets. Schema migrations are managed outside the process; see
// schema.sql in this directory for the expected layout.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Moments() store.Moments             { return &moments{db: s.db} }
func (s *pgStore) Matches() store.Matches             { return &matches{db: s.db} }
func (s *pgStore) UserLocations() store.UserLocations { return &locations{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Moments ---

type moments struct{ db *sql.DB }

func (m *moments) Create(ctx context.Context, in *model.Moment) (*model.Moment, error) {
	if !in.ExpiresAt.After(in.CreatedAt) {
		return nil, fmt.Errorf("%w: expiresAt must be after createdAt", model.ErrInvalidArgument)
	}
	rec := *in
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO moments (id, owner_id, caption, media_ref, longitude, latitude, created_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, rec.ID, rec.OwnerID, rec.Caption, rec.MediaRef,
		rec.Location.Longitude, rec.Location.Latitude,
		rec.CreatedAt.UTC(), rec.ExpiresAt.UTC())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *moments) Get(ctx context.Context, id string, now time.Time) (*model.Moment, error) {
	var rec model.Moment
	err := m.db.QueryRowContext(ctx, `
        SELECT id, owner_id, caption, media_ref, longitude, latitude, created_at, expires_at
        FROM moments WHERE id=$1 AND expires_at > $2
    `, id, now.UTC()).Scan(&rec.ID, &rec.OwnerID, &rec.Caption, &rec.MediaRef,
		&rec.Location.Longitude, &rec.Location.Latitude, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

func (m *moments) Delete(ctx context.Context, id string, now time.Time) error {
	res, err := m.db.ExecContext(ctx, `
        DELETE FROM moments WHERE id=$1 AND expires_at > $2
    `, id, now.UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (m *moments) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
        DELETE FROM moments WHERE expires_at <= $1 RETURNING id
    `, now.UTC())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var purged []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		purged = append(purged, id)
	}
	return purged, rows.Err()
}

// --- Matches ---

type matches struct{ db *sql.DB }

func (m *matches) Create(ctx context.Context, in *model.Match) (*model.Match, error) {
	rec := *in
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO matches (id, requester_id, owner_id, moment_id, status, message, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, rec.ID, rec.RequesterID, rec.OwnerID, rec.MomentID,
		string(rec.Status), rec.Message, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("match for requester %s and moment %s already exists: %w",
				rec.RequesterID, rec.MomentID, model.ErrConflict)
		}
		return nil, err
	}
	return &rec, nil
}

func (m *matches) Get(ctx context.Context, id string) (*model.Match, error) {
	var rec model.Match
	var status string
	err := m.db.QueryRowContext(ctx, `
        SELECT id, requester_id, owner_id, moment_id, status, message, created_at, updated_at
        FROM matches WHERE id=$1
    `, id).Scan(&rec.ID, &rec.RequesterID, &rec.OwnerID, &rec.MomentID,
		&status, &rec.Message, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	rec.Status = model.MatchStatus(status)
	return &rec, nil
}

func (m *matches) UpdateStatus(ctx context.Context, id string, status model.MatchStatus, now time.Time) (*model.Match, error) {
	var rec model.Match
	var st string
	// Guarding on the pending status makes the transition atomic: of two
	// concurrent calls only one matches the row.
	err := m.db.QueryRowContext(ctx, `
        UPDATE matches SET status=$2, updated_at=$3
        WHERE id=$1 AND status=$4
        RETURNING id, requester_id, owner_id, moment_id, status, message, created_at, updated_at
    `, id, string(status), now.UTC(), string(model.MatchPending)).Scan(&rec.ID, &rec.RequesterID, &rec.OwnerID, &rec.MomentID,
		&st, &rec.Message, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			cur, err := m.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("match %s already %s: %w", id, cur.Status, model.ErrInvalidOperation)
		}
		return nil, err
	}
	rec.Status = model.MatchStatus(st)
	return &rec, nil
}

func (m *matches) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Match, int, error) {
	var total int
	if err := m.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM matches WHERE requester_id=$1 OR owner_id=$1
    `, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := m.db.QueryContext(ctx, `
        SELECT id, requester_id, owner_id, moment_id, status, message, created_at, updated_at
        FROM matches WHERE requester_id=$1 OR owner_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Match{}
	for rows.Next() {
		var rec model.Match
		var status string
		if err := rows.Scan(&rec.ID, &rec.RequesterID, &rec.OwnerID, &rec.MomentID,
			&status, &rec.Message, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		rec.Status = model.MatchStatus(status)
		out = append(out, &rec)
	}
	return out, total, rows.Err()
}

// --- UserLocations ---

type locations struct{ db *sql.DB }

func (l *locations) Upsert(ctx context.Context, loc *model.UserLocation) (*model.UserLocation, error) {
	rec := *loc
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO user_locations (user_id, longitude, latitude, updated_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (user_id) DO UPDATE
        SET longitude=EXCLUDED.longitude, latitude=EXCLUDED.latitude, updated_at=EXCLUDED.updated_at
    `, rec.UserID, rec.Location.Longitude, rec.Location.Latitude, rec.UpdatedAt.UTC())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (l *locations) Get(ctx context.Context, userID string) (*model.UserLocation, error) {
	var rec model.UserLocation
	err := l.db.QueryRowContext(ctx, `
        SELECT user_id, longitude, latitude, updated_at FROM user_locations WHERE user_id=$1
    `, userID).Scan(&rec.UserID, &rec.Location.Longitude, &rec.Location.Latitude, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location for user %s: %w", userID, model.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}
