package model

import "time"

// Point is a geographic coordinate in degrees, GeoJSON axis order
// (longitude first).
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// MatchStatus is the three-state approval workflow of a match.
type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchAccepted MatchStatus = "accepted"
	MatchRejected MatchStatus = "rejected"
)

// Terminal reports whether the status can no longer transition.
func (s MatchStatus) Terminal() bool {
	return s == MatchAccepted || s == MatchRejected
}

// Moment is an ephemeral, location-tagged post. Once ExpiresAt passes the
// moment is logically deleted: it is excluded from every read path even if
// the physical record has not been purged yet.
type Moment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Caption   string    `json:"caption"`
	MediaRef  string    `json:"mediaRef"`
	Location  Point     `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsLive reports whether the moment is still visible at the given instant.
func (m *Moment) IsLive(now time.Time) bool {
	return now.Before(m.ExpiresAt)
}

// UserLocation is the single live location record per user; each update
// overwrites the previous one (no history retained).
type UserLocation struct {
	UserID    string    `json:"userId"`
	Location  Point     `json:"location"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Match is a join request from RequesterID to OwnerID's moment. At most one
// match exists per (RequesterID, MomentID) pair; status transitions once,
// by the owner only, from pending to a terminal state.
type Match struct {
	ID          string      `json:"id"`
	RequesterID string      `json:"requesterId"`
	OwnerID     string      `json:"ownerId"`
	MomentID    string      `json:"momentId"`
	Status      MatchStatus `json:"status"`
	Message     string      `json:"message,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Cluster is a derived per-cell aggregate of nearby users, computed fresh
// per query and never persisted.
type Cluster struct {
	GridX        int     `json:"gridX"`
	GridY        int     `json:"gridY"`
	Count        int     `json:"count"`
	Centroid     Point   `json:"centroid"`
	MeanDistance float64 `json:"meanDistance"`
	Label        string  `json:"label,omitempty"`
}

// Pagination describes the page math returned alongside list results.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

// Pages computes ceil(total/pageSize) for a positive page size.
func Pages(total, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// MomentPage is one page of nearby moments.
type MomentPage struct {
	Moments    []*Moment  `json:"moments"`
	Pagination Pagination `json:"pagination"`
}

// MatchPage is one page of a user's matches.
type MatchPage struct {
	Matches    []*Match   `json:"matches"`
	Pagination Pagination `json:"pagination"`
}
