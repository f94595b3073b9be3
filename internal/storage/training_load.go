package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vught/pacekeeper/internal/models"
)

// UpsertTrainingLoad writes one day of load metrics, replacing any
// existing row for that day. Part of the training.LoadStore contract.
func (db *DB) UpsertTrainingLoad(ctx context.Context, load models.TrainingLoad) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO training_load (user_id, date, daily_tss, atl, ctl, tsb)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET daily_tss = EXCLUDED.daily_tss, atl = EXCLUDED.atl,
		               ctl = EXCLUDED.ctl, tsb = EXCLUDED.tsb`,
		load.UserID, load.Date, load.DailyTSS, load.ATL, load.CTL, load.TSB)
	if err != nil {
		return fmt.Errorf("upserting training load: %w", err)
	}
	return nil
}

// TrainingLoadOn returns the load row for a day, or nil when the user
// has no row yet. Part of the training.LoadStore contract.
func (db *DB) TrainingLoadOn(ctx context.Context, userID int, date time.Time) (*models.TrainingLoad, error) {
	var l models.TrainingLoad
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, date, daily_tss, atl, ctl, tsb
		 FROM training_load WHERE user_id = $1 AND date = $2`,
		userID, date).Scan(&l.UserID, &l.Date, &l.DailyTSS, &l.ATL, &l.CTL, &l.TSB)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting training load: %w", err)
	}
	return &l, nil
}

// LoadHistory returns the user's daily load rows in [from, to], oldest first.
func (db *DB) LoadHistory(ctx context.Context, userID int, from, to time.Time) ([]models.TrainingLoad, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, date, daily_tss, atl, ctl, tsb
		 FROM training_load
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying load history: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingLoad
	for rows.Next() {
		var l models.TrainingLoad
		if err := rows.Scan(&l.UserID, &l.Date, &l.DailyTSS, &l.ATL, &l.CTL, &l.TSB); err != nil {
			return nil, fmt.Errorf("scanning training load: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LatestTrainingLoad returns the most recent load row, or nil when the
// user has none.
func (db *DB) LatestTrainingLoad(ctx context.Context, userID int) (*models.TrainingLoad, error) {
	var l models.TrainingLoad
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, date, daily_tss, atl, ctl, tsb
		 FROM training_load WHERE user_id = $1 ORDER BY date DESC LIMIT 1`,
		userID).Scan(&l.UserID, &l.Date, &l.DailyTSS, &l.ATL, &l.CTL, &l.TSB)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest training load: %w", err)
	}
	return &l, nil
}
