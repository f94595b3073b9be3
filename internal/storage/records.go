package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
)

// UpsertRecord stores a personal record, keeping only the better time
// when a record for the distance already exists. It reports whether the
// row was written.
func (db *DB) UpsertRecord(ctx context.Context, r *models.PersonalRecord) (improved bool, err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO personal_records (id, user_id, distance, time_sec, pace_sec, workout_id, achieved_on)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id, distance)
		 DO UPDATE SET time_sec = EXCLUDED.time_sec, pace_sec = EXCLUDED.pace_sec,
		               workout_id = EXCLUDED.workout_id, achieved_on = EXCLUDED.achieved_on
		 WHERE personal_records.time_sec > EXCLUDED.time_sec`,
		r.ID, r.UserID, r.Distance, int(r.Time.Seconds()), int(r.Pace.Seconds()),
		r.WorkoutID, r.AchievedOn)
	if err != nil {
		return false, fmt.Errorf("upserting record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecordFor returns the user's current record over a distance, or nil.
func (db *DB) RecordFor(ctx context.Context, userID int, distance string) (*models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		recordColumns+` WHERE user_id = $1 AND distance = $2`, userID, distance)
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}
	defer rows.Close()
	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ListRecords returns the user's records ordered by distance.
func (db *DB) ListRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		recordColumns+` WHERE user_id = $1
		 ORDER BY CASE distance
		   WHEN '5k' THEN 1 WHEN '10k' THEN 2
		   WHEN 'half_marathon' THEN 3 WHEN 'marathon' THEN 4 ELSE 5 END`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

const recordColumns = `
	SELECT id, user_id, distance, time_sec, pace_sec, workout_id, achieved_on
	FROM personal_records`

func scanRecords(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]models.PersonalRecord, error) {
	var out []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		var timeSec, paceSec int
		if err := rows.Scan(&r.ID, &r.UserID, &r.Distance, &timeSec, &paceSec,
			&r.WorkoutID, &r.AchievedOn); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Time = time.Duration(timeSec) * time.Second
		r.Pace = models.PaceFromSeconds(float64(paceSec))
		out = append(out, r)
	}
	return out, rows.Err()
}
