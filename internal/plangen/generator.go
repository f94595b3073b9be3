// Package plangen produces week-by-week training plan structures. Each
// methodology is a Generator implementation resolved by name through an
// immutable Registry built at startup.
package plangen

import (
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

// MaxWeeklyIncrease bounds week-over-week volume growth: the next week's
// total distance may be at most 10% above the previous week's. The
// algorithmic curve is clamped to this bound; user-supplied skeletons
// that violate it are rejected.
const MaxWeeklyIncrease = 1.10

// Taper length limits: the final 1-3 weeks must be taper weeks.
const (
	minTaperWeeks = 1
	maxTaperWeeks = 3
)

// FitnessProfile carries a runner's current fitness for plan scaling.
type FitnessProfile struct {
	RecentWeeklyKm  float64     `json:"recent_weekly_km,omitempty"`
	RecentLongRunKm float64     `json:"recent_long_run_km,omitempty"`
	ThresholdPace   models.Pace `json:"threshold_pace,omitempty"`
}

// WorkoutOutline is one planned session in a skeleton or generated week.
type WorkoutOutline struct {
	DayOfWeek        int                `json:"day_of_week"` // 1 = Monday .. 7 = Sunday
	WorkoutType      models.WorkoutType `json:"workout_type"`
	TargetDistanceKm float64            `json:"target_distance_km,omitempty"`
	TargetDuration   time.Duration      `json:"target_duration,omitempty"`
	TargetPace       models.Pace        `json:"target_pace,omitempty"`
	Description      string             `json:"description,omitempty"`
}

// WeekOutline is one week of a caller-supplied plan skeleton.
type WeekOutline struct {
	WeekNumber      int              `json:"week_number"`
	Focus           models.WeekFocus `json:"focus"`
	TotalDistanceKm float64          `json:"total_distance_km"`
	Workouts        []WorkoutOutline `json:"workouts,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

// Config is the input to plan generation. Now is injected so generation
// is a deterministic function of its inputs.
type Config struct {
	UserID   int
	PlanType models.PlanType
	RaceDate time.Time
	GoalTime time.Duration
	Name     string
	Fitness  *FitnessProfile
	Skeleton []WeekOutline
	Now      time.Time
}

// WeeksUntilRace returns the number of full weeks between Now and the race.
func (c Config) WeeksUntilRace() int {
	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}
	return int(c.RaceDate.Sub(now).Hours() / 24 / 7)
}

// Week is one generated training week.
type Week struct {
	WeekNumber      int              `json:"week_number"`
	Focus           models.WeekFocus `json:"focus"`
	TotalDistanceKm float64          `json:"total_distance_km"`
	Workouts        []WorkoutOutline `json:"workouts"`
	Notes           string           `json:"notes,omitempty"`
}

// Plan is a fully generated plan aggregate, ready to persist.
type Plan struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	PlanType      models.PlanType `json:"plan_type"`
	Methodology   string          `json:"methodology"`
	DurationWeeks int             `json:"duration_weeks"`
	RaceDate      time.Time       `json:"race_date"`
	GoalTime      time.Duration   `json:"goal_time,omitempty"`
	Weeks         []Week          `json:"weeks"`
}

// Generator is the contract every plan methodology satisfies.
type Generator interface {
	// Methodology returns the unique registry key for this generator.
	Methodology() string
	// DisplayName returns the human-readable methodology name.
	DisplayName() string
	// Supports reports whether the generator can build plans for a distance.
	Supports(models.PlanType) bool
	// MinWeeks and MaxWeeks bound plan duration for a distance.
	MinWeeks(models.PlanType) int
	MaxWeeks(models.PlanType) int
	// WeekFocus classifies a week's position: taper weeks are always
	// terminal, base weeks always initial.
	WeekFocus(weekNumber, totalWeeks int) models.WeekFocus
	// Generate builds the full plan aggregate or fails with a
	// *models.ValidationError. Generation is all-or-nothing.
	Generate(Config) (*Plan, error)
}

// validateConfig applies the constraints shared by all methodologies.
func validateConfig(g Generator, cfg Config) error {
	if !cfg.PlanType.Valid() || !g.Supports(cfg.PlanType) {
		return models.Validationf("plan_type", models.ReasonUnsupportedPlanType,
			"%s does not support plan type %q", g.Methodology(), cfg.PlanType)
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	if !cfg.RaceDate.After(now) {
		return models.Validationf("race_date", models.ReasonRaceDateNotFuture,
			"race date must be in the future")
	}

	weeks := cfg.WeeksUntilRace()
	if min := g.MinWeeks(cfg.PlanType); weeks < min {
		return models.Validationf("race_date", models.ReasonBelowMinimumWeeks,
			"at least %d weeks required for %s, have %d", min, cfg.PlanType, weeks)
	}

	if cfg.GoalTime != 0 {
		if err := validateGoalTime(cfg.GoalTime, cfg.PlanType); err != nil {
			return err
		}
	}
	return nil
}

// Goal-time plausibility windows, bounded below by world-record territory
// and above by typical race cutoffs.
var goalTimeWindows = map[models.PlanType][2]time.Duration{
	models.PlanHalfMarathon: {time.Hour, 4 * time.Hour},
	models.PlanFullMarathon: {2 * time.Hour, 7 * time.Hour},
}

func validateGoalTime(goal time.Duration, pt models.PlanType) error {
	w, ok := goalTimeWindows[pt]
	if !ok {
		return nil
	}
	if goal < w[0] {
		return models.Validationf("goal_time", models.ReasonGoalTimeImplausible,
			"%s goal under %s is faster than the world record", pt, w[0])
	}
	if goal > w[1] {
		return models.Validationf("goal_time", models.ReasonGoalTimeImplausible,
			"%s goal over %s exceeds typical race cutoffs", pt, w[1])
	}
	return nil
}

// validateProgression enforces the weekly volume bound and the terminal
// taper block on a completed week sequence.
func validateProgression(weeks []Week) error {
	for i := 1; i < len(weeks); i++ {
		prev, cur := weeks[i-1].TotalDistanceKm, weeks[i].TotalDistanceKm
		if prev > 0 && cur > prev*MaxWeeklyIncrease+1e-9 {
			return models.Validationf("weeks", models.ReasonProgressionExceeded,
				"week %d volume %.1fkm exceeds +%.0f%% over week %d (%.1fkm)",
				weeks[i].WeekNumber, cur, (MaxWeeklyIncrease-1)*100,
				weeks[i-1].WeekNumber, prev)
		}
	}

	taper := 0
	for i := len(weeks) - 1; i >= 0 && weeks[i].Focus == models.FocusTaper; i-- {
		taper++
	}
	if taper < minTaperWeeks {
		return models.Validationf("weeks", models.ReasonMissingTaper,
			"plan must end with at least %d taper week", minTaperWeeks)
	}
	if taper > maxTaperWeeks {
		return models.Validationf("weeks", models.ReasonMissingTaper,
			"taper block of %d weeks exceeds the maximum of %d", taper, maxTaperWeeks)
	}
	// Any non-terminal taper week breaks the monotonic focus shape.
	for _, w := range weeks[:len(weeks)-taper] {
		if w.Focus == models.FocusTaper {
			return models.Validationf("weeks", models.ReasonMissingTaper,
				"taper weeks must be the terminal weeks (week %d is mid-plan)", w.WeekNumber)
		}
	}
	return nil
}
