package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. Identity comes from the transport layer
// (tailnet login or the local dev fallback).
type User struct {
	ID          int       `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// PaceZone is one user-scoped training intensity band. MinPace is the
// faster edge and MaxPace the slower edge, both in time per kilometer,
// so MinPace <= MaxPace always holds numerically.
//
// Recalculation supersedes the active set rather than mutating it:
// SupersededAt is set on the old rows and fresh rows are inserted, so
// past workouts keep pointing at the zones they were planned against.
type PaceZone struct {
	ID           uuid.UUID  `json:"id"`
	UserID       int        `json:"user_id"`
	Name         ZoneName   `json:"name"`
	MinPace      Pace       `json:"min_pace"`
	MaxPace      Pace       `json:"max_pace"`
	Description  string     `json:"description,omitempty"`
	ColorHex     string     `json:"color_hex"`
	SupersededAt *time.Time `json:"superseded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TrainingPlan is the aggregate root for a structured training program.
// Template plans (IsTemplate true) may have no owner; they are cloned
// per-user before use.
type TrainingPlan struct {
	ID             uuid.UUID      `json:"id"`
	UserID         *int           `json:"user_id,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	PlanType       PlanType       `json:"plan_type"`
	Methodology    string         `json:"methodology"`
	DurationWeeks  int            `json:"duration_weeks"`
	TargetRaceDate time.Time      `json:"target_race_date"`
	GoalTime       *time.Duration `json:"goal_time,omitempty"`
	IsTemplate     bool           `json:"is_template"`
	CreatedAt      time.Time      `json:"created_at"`

	Weeks []TrainingWeek `json:"weeks,omitempty"`
}

// StartDate is the Monday the plan begins, derived from race date and duration.
func (p *TrainingPlan) StartDate() time.Time {
	return p.TargetRaceDate.AddDate(0, 0, -7*p.DurationWeeks)
}

// TrainingWeek is one week of a plan. WeekNumber is 1-indexed and
// contiguous within its plan.
type TrainingWeek struct {
	ID               uuid.UUID `json:"id"`
	PlanID           uuid.UUID `json:"plan_id"`
	WeekNumber       int       `json:"week_number"`
	Focus            WeekFocus `json:"focus"`
	TargetDistanceKm float64   `json:"target_distance_km"`
	Notes            string    `json:"notes,omitempty"`

	Workouts []ScheduledWorkout `json:"workouts,omitempty"`
}

// ScheduledWorkout is a planned session within a training week.
// PaceZoneID is a non-owning link; deleting a zone nulls it out.
// Rest workouts carry no distance, duration or pace targets.
type ScheduledWorkout struct {
	ID               uuid.UUID      `json:"id"`
	WeekID           uuid.UUID      `json:"week_id"`
	DayOfWeek        int            `json:"day_of_week"` // 1 = Monday .. 7 = Sunday
	WorkoutType      WorkoutType    `json:"workout_type"`
	TargetDistanceKm *float64       `json:"target_distance_km,omitempty"`
	TargetDuration   *time.Duration `json:"target_duration,omitempty"`
	TargetPace       *Pace          `json:"target_pace,omitempty"`
	PaceZoneID       *uuid.UUID     `json:"pace_zone_id,omitempty"`
	Description      string         `json:"description,omitempty"`
	SortOrder        int            `json:"sort_order"`
}

// CompletedWorkout records an actual run. ScheduledWorkoutID is nullable
// because unplanned runs are valid. ExternalID dedups imports: at most
// one row per (user, external_id).
type CompletedWorkout struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             int           `json:"user_id"`
	ScheduledWorkoutID *uuid.UUID    `json:"scheduled_workout_id,omitempty"`
	Date               time.Time     `json:"date"`
	DistanceKm         float64       `json:"distance_km"`
	Duration           time.Duration `json:"duration"`
	AvgPace            Pace          `json:"avg_pace"`
	AvgHeartRate       *int          `json:"avg_heart_rate,omitempty"`
	MaxHeartRate       *int          `json:"max_heart_rate,omitempty"`
	ElevationGainM     *float64      `json:"elevation_gain_m,omitempty"`
	Source             WorkoutSource `json:"source"`
	ExternalID         *string       `json:"external_id,omitempty"`
	DeviceName         *string       `json:"device_name,omitempty"`
	RouteJSON          []byte        `json:"-"`
	Notes              string        `json:"notes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// TrainingLoad is one day of accumulated training stress for a user.
type TrainingLoad struct {
	UserID   int       `json:"user_id"`
	Date     time.Time `json:"date"`
	DailyTSS float64   `json:"daily_tss"`
	ATL      float64   `json:"atl"`
	CTL      float64   `json:"ctl"`
	TSB      float64   `json:"tsb"`
}

// PersonalRecord is a user's best time over a standard distance.
type PersonalRecord struct {
	ID         uuid.UUID     `json:"id"`
	UserID     int           `json:"user_id"`
	Distance   string        `json:"distance"` // 5k, 10k, half_marathon, marathon
	Time       time.Duration `json:"time"`
	Pace       Pace          `json:"pace"`
	WorkoutID  *uuid.UUID    `json:"workout_id,omitempty"`
	AchievedOn time.Time     `json:"achieved_on"`
}
