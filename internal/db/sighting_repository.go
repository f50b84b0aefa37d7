package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Sighting is one display takeover: the moment an aircraft became the
// active subject on the matrix.
type Sighting struct {
	ID          int64
	ICAO        string
	Callsign    string
	Latitude    float64
	Longitude   float64
	AltitudeFt  float64
	SpeedKt     float64
	DistanceNM  float64
	BearingDeg  float64
	Origin      string
	Destination string
	SeenAt      time.Time
}

// SightingRepository stores and queries sightings.
type SightingRepository struct {
	db *DB
}

// NewSightingRepository creates a repository over an open connection.
func NewSightingRepository(db *DB) *SightingRepository {
	return &SightingRepository{db: db}
}

// Record inserts one sighting and returns its assigned ID.
func (r *SightingRepository) Record(ctx context.Context, s Sighting) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sightings (
			icao, callsign, latitude, longitude, altitude_ft, speed_kt,
			distance_nm, bearing_deg, origin, destination, seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		s.ICAO,
		nullString(s.Callsign),
		s.Latitude,
		s.Longitude,
		s.AltitudeFt,
		s.SpeedKt,
		s.DistanceNM,
		s.BearingDeg,
		nullString(s.Origin),
		nullString(s.Destination),
		s.SeenAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sighting: %w", err)
	}
	return id, nil
}

// Recent returns the newest sightings, most recent first.
func (r *SightingRepository) Recent(ctx context.Context, limit int) ([]Sighting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, icao, callsign, latitude, longitude, altitude_ft,
		       speed_kt, distance_nm, bearing_deg, origin, destination, seen_at
		FROM sightings
		ORDER BY seen_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sightings: %w", err)
	}
	defer rows.Close()

	var out []Sighting
	for rows.Next() {
		var s Sighting
		var callsign, origin, destination sql.NullString
		if err := rows.Scan(
			&s.ID, &s.ICAO, &callsign, &s.Latitude, &s.Longitude,
			&s.AltitudeFt, &s.SpeedKt, &s.DistanceNM, &s.BearingDeg,
			&origin, &destination, &s.SeenAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		s.Callsign = callsign.String
		s.Origin = origin.String
		s.Destination = destination.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSince returns how many sightings were recorded after the cutoff.
func (r *SightingRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sightings WHERE seen_at >= $1`,
		cutoff.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sightings: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
