package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
)

// InsertCompletedWorkout stores a run. Rows with an external id are
// deduplicated per user: a second insert with the same external id is a
// no-op and inserted comes back false.
func (db *DB) InsertCompletedWorkout(ctx context.Context, w *models.CompletedWorkout) (inserted bool, err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO completed_workouts
		 (id, user_id, scheduled_workout_id, date, distance_km, duration_sec, avg_pace_sec,
		  avg_heart_rate, max_heart_rate, elevation_gain_m, source, external_id, device_name, route, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL DO NOTHING`,
		w.ID, w.UserID, w.ScheduledWorkoutID, w.Date, w.DistanceKm,
		int(w.Duration.Seconds()), int(w.AvgPace.Seconds()),
		w.AvgHeartRate, w.MaxHeartRate, w.ElevationGainM,
		w.Source, w.ExternalID, w.DeviceName, w.RouteJSON, w.Notes)
	if err != nil {
		return false, fmt.Errorf("inserting completed workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// WorkoutByExternalID fetches the user's workout carrying an import
// external id. Used to return the persisted row on a dedup hit.
func (db *DB) WorkoutByExternalID(ctx context.Context, userID int, externalID string) (*models.CompletedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		completedWorkoutColumns+` WHERE user_id = $1 AND external_id = $2`, userID, externalID)
	w, err := scanCompletedWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("getting workout by external id %q: %w", externalID, err)
	}
	return w, nil
}

// GetCompletedWorkout fetches one completed workout owned by the user.
func (db *DB) GetCompletedWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.CompletedWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		completedWorkoutColumns+` WHERE id = $1 AND user_id = $2`, id, userID)
	w, err := scanCompletedWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("getting completed workout %s: %w", id, err)
	}
	return w, nil
}

// ListCompletedWorkouts returns the user's runs, newest first.
func (db *DB) ListCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		completedWorkoutColumns+` WHERE user_id = $1 ORDER BY date DESC, created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	defer rows.Close()
	return scanCompletedWorkouts(rows)
}

// CompletedWorkoutsBetween returns the user's runs in [from, to),
// oldest first. Part of the training.LoadStore contract.
func (db *DB) CompletedWorkoutsBetween(ctx context.Context, userID int, from, to time.Time) ([]models.CompletedWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		completedWorkoutColumns+` WHERE user_id = $1 AND date >= $2 AND date < $3 ORDER BY date`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying workouts between: %w", err)
	}
	defer rows.Close()
	return scanCompletedWorkouts(rows)
}

// MatchedScheduledIDs returns the set of scheduled workout ids that
// already have a completed workout linked, keyed by id string.
func (db *DB) MatchedScheduledIDs(ctx context.Context, userID int) (map[string]bool, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT scheduled_workout_id FROM completed_workouts
		 WHERE user_id = $1 AND scheduled_workout_id IS NOT NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying matched ids: %w", err)
	}
	defer rows.Close()

	matched := make(map[string]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning matched id: %w", err)
		}
		matched[id.String()] = true
	}
	return matched, rows.Err()
}

// LinkWorkout points a completed workout at a scheduled one. Passing a
// nil scheduledID unlinks.
func (db *DB) LinkWorkout(ctx context.Context, id uuid.UUID, userID int, scheduledID *uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE completed_workouts SET scheduled_workout_id = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, scheduledID)
	if err != nil {
		return fmt.Errorf("linking workout %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("linking workout %s: not found", id)
	}
	return nil
}

const completedWorkoutColumns = `
	SELECT id, user_id, scheduled_workout_id, date, distance_km, duration_sec, avg_pace_sec,
	       avg_heart_rate, max_heart_rate, elevation_gain_m, source, external_id, device_name,
	       route, notes, created_at
	FROM completed_workouts`

func scanCompletedWorkout(row rowScanner) (*models.CompletedWorkout, error) {
	var w models.CompletedWorkout
	var durSec, paceSec int
	if err := row.Scan(&w.ID, &w.UserID, &w.ScheduledWorkoutID, &w.Date,
		&w.DistanceKm, &durSec, &paceSec, &w.AvgHeartRate, &w.MaxHeartRate,
		&w.ElevationGainM, &w.Source, &w.ExternalID, &w.DeviceName,
		&w.RouteJSON, &w.Notes, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.Duration = time.Duration(durSec) * time.Second
	w.AvgPace = models.PaceFromSeconds(float64(paceSec))
	return &w, nil
}

func scanCompletedWorkouts(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]models.CompletedWorkout, error) {
	var out []models.CompletedWorkout
	for rows.Next() {
		w, err := scanCompletedWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning completed workout: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}
