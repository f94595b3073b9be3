package plangen

import (
	"fmt"
	"math"

	"github.com/vught/pacekeeper/internal/models"
)

// CustomGenerator builds a balanced progressive plan, or validates and
// adopts a caller-supplied week-by-week skeleton when one is provided.
//
// Phase distribution over the plan: base 25%, build 35%, peak 25%,
// taper 15%.
type CustomGenerator struct{}

// NewCustomGenerator returns the "custom" methodology generator.
func NewCustomGenerator() *CustomGenerator {
	return &CustomGenerator{}
}

var customMinWeeks = map[models.PlanType]int{
	models.PlanHalfMarathon: 8,
	models.PlanFullMarathon: 12,
}

var customMaxWeeks = map[models.PlanType]int{
	models.PlanHalfMarathon: 20,
	models.PlanFullMarathon: 30,
}

// Starting weekly volume when the runner supplies no fitness profile.
var baseWeeklyKm = map[models.PlanType]float64{
	models.PlanHalfMarathon: 30,
	models.PlanFullMarathon: 45,
}

var phaseMultipliers = map[models.WeekFocus]float64{
	models.FocusBase:  0.80,
	models.FocusBuild: 1.00,
	models.FocusPeak:  1.15,
	models.FocusTaper: 0.60,
}

var workoutDescriptions = map[models.WorkoutType]string{
	models.WorkoutEasy:     "Easy effort, conversational pace",
	models.WorkoutLong:     "Long run - focus on time on feet",
	models.WorkoutTempo:    "Comfortably hard, sustainable effort",
	models.WorkoutInterval: "Hard efforts with recovery intervals",
	models.WorkoutRecovery: "Very easy recovery run",
	models.WorkoutRest:     "Rest day - optional stretching or cross-training",
}

// dayPlan is one slot in a weekly structure: day, type, and the share of
// the week's volume. Rest days carry no share.
type dayPlan struct {
	day      int
	workout  models.WorkoutType
	fraction float64
}

var weekStructures = map[models.WeekFocus][]dayPlan{
	models.FocusBase: {
		{1, models.WorkoutEasy, 0.20},
		{2, models.WorkoutRest, 0},
		{3, models.WorkoutEasy, 0.18},
		{4, models.WorkoutRest, 0},
		{5, models.WorkoutEasy, 0.15},
		{6, models.WorkoutRest, 0},
		{7, models.WorkoutLong, 0.35},
	},
	models.FocusBuild: {
		{1, models.WorkoutEasy, 0.15},
		{2, models.WorkoutTempo, 0.15},
		{3, models.WorkoutEasy, 0.12},
		{4, models.WorkoutRest, 0},
		{5, models.WorkoutEasy, 0.12},
		{6, models.WorkoutRecovery, 0.08},
		{7, models.WorkoutLong, 0.38},
	},
	models.FocusPeak: {
		{1, models.WorkoutEasy, 0.12},
		{2, models.WorkoutTempo, 0.15},
		{3, models.WorkoutEasy, 0.10},
		{4, models.WorkoutInterval, 0.12},
		{5, models.WorkoutRecovery, 0.08},
		{6, models.WorkoutRest, 0},
		{7, models.WorkoutLong, 0.43},
	},
	models.FocusTaper: {
		{1, models.WorkoutEasy, 0.18},
		{2, models.WorkoutRest, 0},
		{3, models.WorkoutEasy, 0.15},
		{4, models.WorkoutRest, 0},
		{5, models.WorkoutEasy, 0.12},
		{6, models.WorkoutRest, 0},
		{7, models.WorkoutLong, 0.30},
	},
}

var weekNotes = map[models.WeekFocus]string{
	models.FocusBase:  "Focus on building aerobic base. Keep all runs at conversational pace.",
	models.FocusBuild: "Building volume with quality sessions. Listen to your body.",
	models.FocusPeak:  "Peak training block. Prioritize recovery between hard efforts.",
	models.FocusTaper: "Reducing volume to arrive fresh at race day. Trust your training.",
}

const raceWeekNote = "Race week! Keep runs short and easy. Focus on rest and nutrition."

func (g *CustomGenerator) Methodology() string { return "custom" }
func (g *CustomGenerator) DisplayName() string { return "Custom Plan" }

func (g *CustomGenerator) Supports(pt models.PlanType) bool {
	_, ok := customMinWeeks[pt]
	return ok
}

func (g *CustomGenerator) MinWeeks(pt models.PlanType) int { return customMinWeeks[pt] }
func (g *CustomGenerator) MaxWeeks(pt models.PlanType) int { return customMaxWeeks[pt] }

// WeekFocus maps a week's position to its phase: base through 25% of the
// plan, build through 60%, then peak until the taper block. The taper is
// roughly 15% of the plan, capped at the final 1-3 weeks.
func (g *CustomGenerator) WeekFocus(weekNumber, totalWeeks int) models.WeekFocus {
	taperLen := int(float64(totalWeeks)*0.15 + 0.5)
	if taperLen < minTaperWeeks {
		taperLen = minTaperWeeks
	}
	if taperLen > maxTaperWeeks {
		taperLen = maxTaperWeeks
	}
	if weekNumber > totalWeeks-taperLen {
		return models.FocusTaper
	}

	progress := float64(weekNumber) / float64(totalWeeks)
	switch {
	case progress <= 0.25:
		return models.FocusBase
	case progress <= 0.60:
		return models.FocusBuild
	default:
		return models.FocusPeak
	}
}

// Generate builds the plan aggregate. With a skeleton in the config the
// supplied weeks are validated and adopted; otherwise the progressive
// structure is derived.
func (g *CustomGenerator) Generate(cfg Config) (*Plan, error) {
	if err := validateConfig(g, cfg); err != nil {
		return nil, err
	}

	var weeks []Week
	var duration int
	if len(cfg.Skeleton) > 0 {
		var err error
		weeks, err = g.adoptSkeleton(cfg)
		if err != nil {
			return nil, err
		}
		duration = len(weeks)
	} else {
		duration = cfg.WeeksUntilRace()
		if max := customMaxWeeks[cfg.PlanType]; duration > max {
			duration = max
		}
		weeks = g.buildWeeks(cfg, duration)
	}

	if err := validateProgression(weeks); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = defaultPlanName(duration, cfg.PlanType)
	}

	return &Plan{
		Name:          name,
		Description:   fmt.Sprintf("Custom %s training plan", planTypeLabel(cfg.PlanType)),
		PlanType:      cfg.PlanType,
		Methodology:   g.Methodology(),
		DurationWeeks: duration,
		RaceDate:      cfg.RaceDate,
		GoalTime:      cfg.GoalTime,
		Weeks:         weeks,
	}, nil
}

// adoptSkeleton validates a caller-supplied week sequence and converts it
// into generated weeks. The same progression and taper rules apply as to
// derived plans; violations are rejected, never silently fixed.
func (g *CustomGenerator) adoptSkeleton(cfg Config) ([]Week, error) {
	skeleton := cfg.Skeleton
	if len(skeleton) < customMinWeeks[cfg.PlanType] {
		return nil, models.Validationf("skeleton", models.ReasonBelowMinimumWeeks,
			"skeleton has %d weeks, minimum for %s is %d",
			len(skeleton), cfg.PlanType, customMinWeeks[cfg.PlanType])
	}
	if avail := cfg.WeeksUntilRace(); len(skeleton) > avail {
		return nil, models.Validationf("skeleton", models.ReasonWeeksNotContiguous,
			"skeleton spans %d weeks but only %d remain before the race", len(skeleton), avail)
	}

	weeks := make([]Week, 0, len(skeleton))
	for i, w := range skeleton {
		if w.WeekNumber != i+1 {
			return nil, models.Validationf("skeleton", models.ReasonWeeksNotContiguous,
				"week numbers must be contiguous from 1, got %d at position %d", w.WeekNumber, i+1)
		}
		if !w.Focus.Valid() {
			return nil, models.Validationf("skeleton", models.ReasonInvalidValue,
				"week %d has unknown focus %q", w.WeekNumber, w.Focus)
		}
		if w.TotalDistanceKm < 0 {
			return nil, models.Validationf("skeleton", models.ReasonInvalidValue,
				"week %d has negative total distance", w.WeekNumber)
		}
		for _, wo := range w.Workouts {
			if wo.DayOfWeek < 1 || wo.DayOfWeek > 7 {
				return nil, models.Validationf("skeleton", models.ReasonInvalidValue,
					"week %d has workout on day %d, want 1-7", w.WeekNumber, wo.DayOfWeek)
			}
			if !wo.WorkoutType.Valid() {
				return nil, models.Validationf("skeleton", models.ReasonInvalidValue,
					"week %d has unknown workout type %q", w.WeekNumber, wo.WorkoutType)
			}
			if wo.WorkoutType == models.WorkoutRest &&
				(wo.TargetDistanceKm != 0 || wo.TargetPace != 0 || wo.TargetDuration != 0) {
				return nil, models.Validationf("skeleton", models.ReasonRestWorkoutHasTarget,
					"week %d: rest workouts carry no distance, duration or pace target", w.WeekNumber)
			}
		}
		weeks = append(weeks, Week{
			WeekNumber:      w.WeekNumber,
			Focus:           w.Focus,
			TotalDistanceKm: round01(w.TotalDistanceKm),
			Workouts:        w.Workouts,
			Notes:           w.Notes,
		})
	}
	return weeks, nil
}

// buildWeeks derives the progressive week sequence. The raw volume curve
// grows within each phase; increases are then clamped to the weekly bound.
func (g *CustomGenerator) buildWeeks(cfg Config, duration int) []Week {
	base := baseWeeklyKm[cfg.PlanType]
	if cfg.Fitness != nil && cfg.Fitness.RecentWeeklyKm > 0 {
		base = cfg.Fitness.RecentWeeklyKm
	}

	volumes := make([]float64, duration)
	for i := range volumes {
		weekNum := i + 1
		focus := g.WeekFocus(weekNum, duration)
		progress := float64(weekNum) / float64(duration)
		volumes[i] = round01(base * phaseMultipliers[focus] * (0.9 + progress*0.2))
	}
	clampIncreases(volumes)

	weeks := make([]Week, 0, duration)
	for i, vol := range volumes {
		weekNum := i + 1
		focus := g.WeekFocus(weekNum, duration)
		notes := weekNotes[focus]
		if weekNum == duration {
			notes = raceWeekNote
		}
		weeks = append(weeks, Week{
			WeekNumber:      weekNum,
			Focus:           focus,
			TotalDistanceKm: vol,
			Workouts:        buildWorkouts(focus, vol),
			Notes:           notes,
		})
	}
	return weeks
}

// clampIncreases caps each week at MaxWeeklyIncrease over its predecessor,
// rounding down so the clamped value never re-breaches the bound.
func clampIncreases(volumes []float64) {
	for i := 1; i < len(volumes); i++ {
		limit := math.Floor(volumes[i-1]*MaxWeeklyIncrease*10) / 10
		if volumes[i] > limit {
			volumes[i] = limit
		}
	}
}

func buildWorkouts(focus models.WeekFocus, totalKm float64) []WorkoutOutline {
	structure := weekStructures[focus]
	workouts := make([]WorkoutOutline, 0, len(structure))
	for _, d := range structure {
		w := WorkoutOutline{
			DayOfWeek:   d.day,
			WorkoutType: d.workout,
			Description: workoutDescriptions[d.workout],
		}
		if d.workout != models.WorkoutRest {
			w.TargetDistanceKm = round01(totalKm * d.fraction)
		}
		workouts = append(workouts, w)
	}
	return workouts
}

func defaultPlanName(duration int, pt models.PlanType) string {
	return fmt.Sprintf("%d-Week %s Plan", duration, planTypeLabel(pt))
}

func planTypeLabel(pt models.PlanType) string {
	if pt == models.PlanHalfMarathon {
		return "Half Marathon"
	}
	return "Marathon"
}

func round01(v float64) float64 {
	return math.Round(v*10) / 10
}
