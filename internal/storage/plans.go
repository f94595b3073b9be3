package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/plangen"
)

// InsertPlan persists a generated plan aggregate (plan, weeks, workouts)
// in one transaction. Generation is all-or-nothing: any failure rolls the
// whole aggregate back.
func (db *DB) InsertPlan(ctx context.Context, userID int, plan *plangen.Plan) (*models.TrainingPlan, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting plan insert: %w", err)
	}
	defer tx.Rollback(ctx)

	stored := &models.TrainingPlan{
		ID:             uuid.New(),
		UserID:         &userID,
		Name:           plan.Name,
		Description:    plan.Description,
		PlanType:       plan.PlanType,
		Methodology:    plan.Methodology,
		DurationWeeks:  plan.DurationWeeks,
		TargetRaceDate: plan.RaceDate,
	}
	if plan.GoalTime > 0 {
		gt := plan.GoalTime
		stored.GoalTime = &gt
	}

	var goalSec *int
	if stored.GoalTime != nil {
		s := int(stored.GoalTime.Seconds())
		goalSec = &s
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO training_plans
		 (id, user_id, name, description, plan_type, methodology, duration_weeks, target_race_date, goal_time_sec, is_template)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false)
		 RETURNING created_at`,
		stored.ID, userID, stored.Name, stored.Description, stored.PlanType,
		stored.Methodology, stored.DurationWeeks, stored.TargetRaceDate, goalSec,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting plan: %w", err)
	}

	for _, week := range plan.Weeks {
		weekRow := models.TrainingWeek{
			ID:               uuid.New(),
			PlanID:           stored.ID,
			WeekNumber:       week.WeekNumber,
			Focus:            week.Focus,
			TargetDistanceKm: week.TotalDistanceKm,
			Notes:            week.Notes,
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO training_weeks (id, plan_id, week_number, focus, target_distance_km, notes)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			weekRow.ID, stored.ID, weekRow.WeekNumber, weekRow.Focus,
			weekRow.TargetDistanceKm, weekRow.Notes); err != nil {
			return nil, fmt.Errorf("inserting week %d: %w", week.WeekNumber, err)
		}

		for order, wo := range week.Workouts {
			workout := scheduledFromOutline(weekRow.ID, order, wo)
			if _, err := tx.Exec(ctx,
				`INSERT INTO scheduled_workouts
				 (id, week_id, day_of_week, workout_type, target_distance_km, target_duration_sec, target_pace_sec, pace_zone_id, description, sort_order)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				workout.ID, weekRow.ID, workout.DayOfWeek, workout.WorkoutType,
				workout.TargetDistanceKm, durationSecPtr(workout.TargetDuration),
				paceSecPtr(workout.TargetPace), workout.PaceZoneID,
				workout.Description, workout.SortOrder); err != nil {
				return nil, fmt.Errorf("inserting workout week %d day %d: %w",
					week.WeekNumber, wo.DayOfWeek, err)
			}
			weekRow.Workouts = append(weekRow.Workouts, workout)
		}
		stored.Weeks = append(stored.Weeks, weekRow)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing plan insert: %w", err)
	}
	return stored, nil
}

func scheduledFromOutline(weekID uuid.UUID, order int, wo plangen.WorkoutOutline) models.ScheduledWorkout {
	w := models.ScheduledWorkout{
		ID:          uuid.New(),
		WeekID:      weekID,
		DayOfWeek:   wo.DayOfWeek,
		WorkoutType: wo.WorkoutType,
		Description: wo.Description,
		SortOrder:   order,
	}
	if wo.TargetDistanceKm > 0 {
		d := wo.TargetDistanceKm
		w.TargetDistanceKm = &d
	}
	if wo.TargetDuration > 0 {
		td := wo.TargetDuration
		w.TargetDuration = &td
	}
	if wo.TargetPace > 0 {
		p := wo.TargetPace
		w.TargetPace = &p
	}
	return w
}

func durationSecPtr(d *time.Duration) *int {
	if d == nil {
		return nil
	}
	s := int(d.Seconds())
	return &s
}

func paceSecPtr(p *models.Pace) *int {
	if p == nil {
		return nil
	}
	s := int(p.Seconds())
	return &s
}

// ListPlans returns the user's plans without their week detail, newest
// first.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]models.TrainingPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, description, plan_type, methodology, duration_weeks,
		        target_race_date, goal_time_sec, is_template, created_at
		 FROM training_plans
		 WHERE user_id = $1 OR is_template
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var plans []models.TrainingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// GetPlan fetches a plan aggregate with its weeks and workouts.
func (db *DB) GetPlan(ctx context.Context, id uuid.UUID, userID int) (*models.TrainingPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, plan_type, methodology, duration_weeks,
		        target_race_date, goal_time_sec, is_template, created_at
		 FROM training_plans
		 WHERE id = $1 AND (user_id = $2 OR is_template)`, id, userID)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, fmt.Errorf("getting plan %s: %w", id, err)
	}

	weekRows, err := db.Pool.Query(ctx,
		`SELECT id, plan_id, week_number, focus, target_distance_km, notes
		 FROM training_weeks WHERE plan_id = $1 ORDER BY week_number`, id)
	if err != nil {
		return nil, fmt.Errorf("querying weeks: %w", err)
	}
	defer weekRows.Close()

	weekIndex := make(map[uuid.UUID]int)
	for weekRows.Next() {
		var w models.TrainingWeek
		if err := weekRows.Scan(&w.ID, &w.PlanID, &w.WeekNumber, &w.Focus,
			&w.TargetDistanceKm, &w.Notes); err != nil {
			return nil, fmt.Errorf("scanning week: %w", err)
		}
		weekIndex[w.ID] = len(plan.Weeks)
		plan.Weeks = append(plan.Weeks, w)
	}
	if err := weekRows.Err(); err != nil {
		return nil, err
	}

	workoutRows, err := db.Pool.Query(ctx,
		`SELECT sw.id, sw.week_id, sw.day_of_week, sw.workout_type, sw.target_distance_km,
		        sw.target_duration_sec, sw.target_pace_sec, sw.pace_zone_id, sw.description, sw.sort_order
		 FROM scheduled_workouts sw
		 JOIN training_weeks tw ON tw.id = sw.week_id
		 WHERE tw.plan_id = $1
		 ORDER BY tw.week_number, sw.day_of_week, sw.sort_order`, id)
	if err != nil {
		return nil, fmt.Errorf("querying scheduled workouts: %w", err)
	}
	defer workoutRows.Close()

	for workoutRows.Next() {
		w, err := scanScheduledWorkout(workoutRows)
		if err != nil {
			return nil, fmt.Errorf("scanning scheduled workout: %w", err)
		}
		if idx, ok := weekIndex[w.WeekID]; ok {
			plan.Weeks[idx].Workouts = append(plan.Weeks[idx].Workouts, *w)
		}
	}
	return plan, workoutRows.Err()
}

// ListPlansWithDetail returns full aggregates for the user's non-template
// plans, for workout matching.
func (db *DB) ListPlansWithDetail(ctx context.Context, userID int) ([]models.TrainingPlan, error) {
	plans, err := db.ListPlans(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []models.TrainingPlan
	for _, p := range plans {
		if p.IsTemplate {
			continue
		}
		full, err := db.GetPlan(ctx, p.ID, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, *full)
	}
	return out, nil
}

// GetScheduledWorkout fetches one scheduled workout owned by the user.
func (db *DB) GetScheduledWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.ScheduledWorkout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT sw.id, sw.week_id, sw.day_of_week, sw.workout_type, sw.target_distance_km,
		        sw.target_duration_sec, sw.target_pace_sec, sw.pace_zone_id, sw.description, sw.sort_order
		 FROM scheduled_workouts sw
		 JOIN training_weeks tw ON tw.id = sw.week_id
		 JOIN training_plans tp ON tp.id = tw.plan_id
		 WHERE sw.id = $1 AND tp.user_id = $2`, id, userID)
	w, err := scanScheduledWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("getting scheduled workout %s: %w", id, err)
	}
	return w, nil
}

func scanPlan(row rowScanner) (*models.TrainingPlan, error) {
	var p models.TrainingPlan
	var goalSec *int
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.PlanType,
		&p.Methodology, &p.DurationWeeks, &p.TargetRaceDate, &goalSec,
		&p.IsTemplate, &p.CreatedAt); err != nil {
		return nil, err
	}
	if goalSec != nil {
		gt := time.Duration(*goalSec) * time.Second
		p.GoalTime = &gt
	}
	return &p, nil
}

func scanScheduledWorkout(row rowScanner) (*models.ScheduledWorkout, error) {
	var w models.ScheduledWorkout
	var durSec, paceSec *int
	if err := row.Scan(&w.ID, &w.WeekID, &w.DayOfWeek, &w.WorkoutType,
		&w.TargetDistanceKm, &durSec, &paceSec, &w.PaceZoneID,
		&w.Description, &w.SortOrder); err != nil {
		return nil, err
	}
	if durSec != nil {
		d := time.Duration(*durSec) * time.Second
		w.TargetDuration = &d
	}
	if paceSec != nil {
		p := models.PaceFromSeconds(float64(*paceSec))
		w.TargetPace = &p
	}
	return &w, nil
}
