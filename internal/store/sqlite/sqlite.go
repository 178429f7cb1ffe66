// Package sqlite provides the file-backed store driver used by the local
// build target.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vibelink/vibelink-server/internal/model"
	"github.com/vibelink/vibelink-server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode for better read concurrency.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS moments (
            id TEXT PRIMARY KEY,
            owner_id TEXT NOT NULL,
            caption TEXT NOT NULL,
            media_ref TEXT NOT NULL DEFAULT '',
            longitude REAL NOT NULL DEFAULT 0,
            latitude REAL NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL,
            expires_at TIMESTAMP NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_moments_expires_at ON moments(expires_at)`,
		`CREATE TABLE IF NOT EXISTS matches (
            id TEXT PRIMARY KEY,
            requester_id TEXT NOT NULL,
            owner_id TEXT NOT NULL,
            moment_id TEXT NOT NULL,
            status TEXT NOT NULL,
            message TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_requester_moment
            ON matches(requester_id, moment_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_owner ON matches(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_requester ON matches(requester_id)`,
		`CREATE TABLE IF NOT EXISTS user_locations (
            user_id TEXT PRIMARY KEY,
            longitude REAL NOT NULL,
            latitude REAL NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewWithDB constructs a SQLite store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Moments() store.Moments             { return &moments{db: s.db} }
func (s *sqliteStore) Matches() store.Matches             { return &matches{db: s.db} }
func (s *sqliteStore) UserLocations() store.UserLocations { return &locations{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
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
        VALUES (?,?,?,?,?,?,?,?)
    `, rec.ID, rec.OwnerID, rec.Caption, rec.MediaRef,
		rec.Location.Longitude, rec.Location.Latitude,
		rec.CreatedAt.UTC(), rec.ExpiresAt.UTC())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *moments) Get(ctx context.Context, id string, now time.Time) (*model.Moment, error) {
	row := m.db.QueryRowContext(ctx, `
        SELECT id, owner_id, caption, media_ref, longitude, latitude, created_at, expires_at
        FROM moments WHERE id=?
    `, id)
	rec, err := scanMoment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	if !rec.IsLive(now) {
		return nil, fmt.Errorf("moment %s: %w", id, model.ErrNotFound)
	}
	return rec, nil
}

func (m *moments) Delete(ctx context.Context, id string, now time.Time) error {
	// Re-check liveness so a delete cannot resurrect semantics for an
	// already-expired record.
	if _, err := m.Get(ctx, id, now); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx, `DELETE FROM moments WHERE id=?`, id)
	return err
}

func (m *moments) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, expires_at FROM moments`)
	if err != nil {
		return nil, err
	}
	var purged []string
	for rows.Next() {
		var id string
		var exp time.Time
		if err := rows.Scan(&id, &exp); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if !exp.After(now) {
			purged = append(purged, id)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for _, id := range purged {
		if _, err := m.db.ExecContext(ctx, `DELETE FROM moments WHERE id=?`, id); err != nil {
			return nil, err
		}
	}
	return purged, nil
}

func scanMoment(row *sql.Row) (*model.Moment, error) {
	var rec model.Moment
	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Caption, &rec.MediaRef,
		&rec.Location.Longitude, &rec.Location.Latitude,
		&rec.CreatedAt, &rec.ExpiresAt); err != nil {
		return nil, err
	}
	return &rec, nil
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
        VALUES (?,?,?,?,?,?,?,?)
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
	row := m.db.QueryRowContext(ctx, `
        SELECT id, requester_id, owner_id, moment_id, status, message, created_at, updated_at
        FROM matches WHERE id=?
    `, id)
	rec, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return rec, nil
}

func (m *matches) UpdateStatus(ctx context.Context, id string, status model.MatchStatus, now time.Time) (*model.Match, error) {
	// Guarding on the pending status makes the transition atomic: of two
	// concurrent calls only one matches the row.
	res, err := m.db.ExecContext(ctx, `
        UPDATE matches SET status=?, updated_at=? WHERE id=? AND status=?
    `, string(status), now.UTC(), id, string(model.MatchPending))
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		rec, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("match %s already %s: %w", id, rec.Status, model.ErrInvalidOperation)
	}
	return m.Get(ctx, id)
}

func (m *matches) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*model.Match, int, error) {
	var total int
	if err := m.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM matches WHERE requester_id=? OR owner_id=?
    `, userID, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := m.db.QueryContext(ctx, `
        SELECT id, requester_id, owner_id, moment_id, status, message, created_at, updated_at
        FROM matches WHERE requester_id=? OR owner_id=?
        ORDER BY created_at DESC, id DESC
        LIMIT ? OFFSET ?
    `, userID, userID, pageSize, offset)
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

func scanMatch(row *sql.Row) (*model.Match, error) {
	var rec model.Match
	var status string
	if err := row.Scan(&rec.ID, &rec.RequesterID, &rec.OwnerID, &rec.MomentID,
		&status, &rec.Message, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Status = model.MatchStatus(status)
	return &rec, nil
}

// --- UserLocations ---

type locations struct{ db *sql.DB }

func (l *locations) Upsert(ctx context.Context, loc *model.UserLocation) (*model.UserLocation, error) {
	rec := *loc
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO user_locations (user_id, longitude, latitude, updated_at)
        VALUES (?,?,?,?)
        ON CONFLICT (user_id) DO UPDATE
        SET longitude=excluded.longitude, latitude=excluded.latitude, updated_at=excluded.updated_at
    `, rec.UserID, rec.Location.Longitude, rec.Location.Latitude, rec.UpdatedAt.UTC())
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (l *locations) Get(ctx context.Context, userID string) (*model.UserLocation, error) {
	var rec model.UserLocation
	err := l.db.QueryRowContext(ctx, `
        SELECT user_id, longitude, latitude, updated_at FROM user_locations WHERE user_id=?
    `, userID).Scan(&rec.UserID, &rec.Location.Longitude, &rec.Location.Latitude, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location for user %s: %w", userID, model.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}
