package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
)

// ReplacePaceZones supersedes the user's active zone set and inserts the
// new one in a single transaction. Old rows are kept (superseded_at set)
// so past workouts retain their zone links.
func (db *DB) ReplacePaceZones(ctx context.Context, userID int, zones []models.PaceZone) ([]models.PaceZone, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting zone replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE pace_zones SET superseded_at = NOW()
		 WHERE user_id = $1 AND superseded_at IS NULL`, userID); err != nil {
		return nil, fmt.Errorf("superseding pace zones: %w", err)
	}

	inserted := make([]models.PaceZone, 0, len(zones))
	for _, z := range zones {
		row := z
		row.ID = uuid.New()
		row.UserID = userID
		err := tx.QueryRow(ctx,
			`INSERT INTO pace_zones (id, user_id, name, min_pace_sec, max_pace_sec, description, color_hex)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING created_at`,
			row.ID, userID, row.Name, int(row.MinPace.Seconds()), int(row.MaxPace.Seconds()),
			row.Description, row.ColorHex).Scan(&row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting pace zone %s: %w", z.Name, err)
		}
		inserted = append(inserted, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing zone replace: %w", err)
	}
	return inserted, nil
}

// ActivePaceZones returns the user's current zone set, slowest first.
func (db *DB) ActivePaceZones(ctx context.Context, userID int) ([]models.PaceZone, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, min_pace_sec, max_pace_sec, description, color_hex, superseded_at, created_at
		 FROM pace_zones
		 WHERE user_id = $1 AND superseded_at IS NULL
		 ORDER BY max_pace_sec DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying pace zones: %w", err)
	}
	defer rows.Close()
	return scanPaceZones(rows)
}

// GetPaceZone fetches one zone by id, active or superseded.
func (db *DB) GetPaceZone(ctx context.Context, id uuid.UUID, userID int) (*models.PaceZone, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, min_pace_sec, max_pace_sec, description, color_hex, superseded_at, created_at
		 FROM pace_zones WHERE id = $1 AND user_id = $2`, id, userID)
	z, err := scanPaceZone(row)
	if err != nil {
		return nil, fmt.Errorf("getting pace zone %s: %w", id, err)
	}
	return z, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaceZone(row rowScanner) (*models.PaceZone, error) {
	var z models.PaceZone
	var minSec, maxSec int
	var superseded *time.Time
	if err := row.Scan(&z.ID, &z.UserID, &z.Name, &minSec, &maxSec,
		&z.Description, &z.ColorHex, &superseded, &z.CreatedAt); err != nil {
		return nil, err
	}
	z.MinPace = models.PaceFromSeconds(float64(minSec))
	z.MaxPace = models.PaceFromSeconds(float64(maxSec))
	z.SupersededAt = superseded
	return &z, nil
}

func scanPaceZones(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]models.PaceZone, error) {
	var zones []models.PaceZone
	for rows.Next() {
		z, err := scanPaceZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pace zone: %w", err)
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}
