package domain

import (
	"errors"
	"time"
)

// Query and lookup failure modes, returned as wrapped sentinel errors so
// callers can branch with errors.Is and turn them into user-facing responses
// (HTTP 404, CLI error entries) without crashing.
var (
	// ErrNotFound means the index holds no station that can answer the query.
	ErrNotFound = errors.New("no station found")

	// ErrInvalidQuery means the query coordinates are outside WGS-84 bounds.
	ErrInvalidQuery = errors.New("query coordinates out of range")

	// ErrUnknownZIP means the postal code could not be resolved to coordinates.
	ErrUnknownZIP = errors.New("unknown zip code")
)

// Geo is a WGS-84 latitude/longitude pair in decimal degrees.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates are within WGS-84 bounds.
func (g Geo) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lon >= -180 && g.Lon <= 180
}

// IsPlaceholder reports whether the coordinates are the (0, 0) "position
// never digitized" placeholder used by the source archives.
func (g Geo) IsPlaceholder() bool {
	return g.Lat == 0 && g.Lon == 0
}

// StationRecord is one climate station with its annual degree-day normals.
// Records are immutable once loaded. HDD65/CDD65 are nil when the source feed
// had no usable value; nil is distinct from a legitimate zero-degree-day
// climate.
type StationRecord struct {
	ID    string
	Name  string
	Coord Geo
	HDD65 *float64
	CDD65 *float64
}

// NearestResult is the station closest to a query point and how far away it is.
type NearestResult struct {
	Station    StationRecord
	DistanceKm float64
}

// ResolvedClimate is the lookup output, shaped for direct JSON serialization.
// HDD65/CDD65 serialize as null when the matched station has no value.
type ResolvedClimate struct {
	ZIP        string    `json:"zip,omitempty"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	StationID  string    `json:"station"`
	Name       string    `json:"name,omitempty"`
	DistKm     float64   `json:"dist_km"`
	HDD65      *float64  `json:"hdd65"`
	CDD65      *float64  `json:"cdd65"`
	FarMatch   bool      `json:"far_match,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}
