// Package training holds the analytics services layered on top of
// completed workouts: training load (TSS/ATL/CTL/TSB), matching of
// completed runs to scheduled sessions, and personal record detection.
package training

import (
	"context"
	"math"
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

// Exponential decay time constants, in days.
const (
	ATLDecayDays = 7  // acute (fatigue)
	CTLDecayDays = 42 // chronic (fitness)
)

// DefaultThresholdPace is used when the runner has no calculated zones.
var DefaultThresholdPace = models.PaceFromMinutes(5.0)

// WorkoutTSS computes the Training Stress Score of one workout:
//
//	TSS = duration_hours × IF² × 100, IF = threshold_pace / actual_pace
//
// A workout run exactly at threshold for one hour scores 100.
func WorkoutTSS(duration time.Duration, avgPace, threshold models.Pace) float64 {
	if duration <= 0 || avgPace <= 0 {
		return 0
	}
	if threshold <= 0 {
		threshold = DefaultThresholdPace
	}
	intensity := threshold.Seconds() / avgPace.Seconds()
	return round2(duration.Hours() * intensity * intensity * 100)
}

// AdvanceLoad rolls the exponentially weighted load averages forward one
// day given the day's total TSS.
func AdvanceLoad(prevATL, prevCTL, dailyTSS float64) (atl, ctl, tsb float64) {
	atlFactor := 1 - math.Exp(-1.0/ATLDecayDays)
	ctlFactor := 1 - math.Exp(-1.0/CTLDecayDays)
	atl = round2(prevATL + (dailyTSS-prevATL)*atlFactor)
	ctl = round2(prevCTL + (dailyTSS-prevCTL)*ctlFactor)
	tsb = round2(ctl - atl)
	return atl, ctl, tsb
}

// FormStatus maps the training stress balance to a named form band and a
// short piece of training advice.
func FormStatus(tsb float64) (status, advice string) {
	switch {
	case tsb > 15:
		return "Fresh", "Well rested. A good window for a race or a hard session."
	case tsb >= -10:
		return "Neutral", "Balanced load. Continue training as planned."
	case tsb >= -30:
		return "Fatigued", "Carrying fatigue. Favor easy running until form recovers."
	default:
		return "Overreached", "Load is well above what you are adapted to. Back off and recover."
	}
}

// FitnessTrend compares chronic load a week apart.
func FitnessTrend(currentCTL, weekAgoCTL float64) string {
	switch diff := currentCTL - weekAgoCTL; {
	case diff > 2:
		return "improving"
	case diff < -2:
		return "declining"
	default:
		return "maintaining"
	}
}

// LoadStore is the storage surface the recalculation walk needs.
type LoadStore interface {
	CompletedWorkoutsBetween(ctx context.Context, userID int, from, to time.Time) ([]models.CompletedWorkout, error)
	TrainingLoadOn(ctx context.Context, userID int, day time.Time) (*models.TrainingLoad, error)
	UpsertTrainingLoad(ctx context.Context, load models.TrainingLoad) error
}

// RecalculateLoad recomputes the load series for every day in [from, to],
// seeding the averages from the stored record of the day before from.
// Returns the number of days written.
func RecalculateLoad(ctx context.Context, store LoadStore, userID int, from, to time.Time, threshold models.Pace) (int, error) {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return 0, nil
	}

	workouts, err := store.CompletedWorkoutsBetween(ctx, userID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	tssByDay := make(map[time.Time]float64)
	for _, w := range workouts {
		day := truncateDay(w.Date)
		tssByDay[day] += WorkoutTSS(w.Duration, w.AvgPace, threshold)
	}

	var prevATL, prevCTL float64
	if prev, err := store.TrainingLoadOn(ctx, userID, from.AddDate(0, 0, -1)); err != nil {
		return 0, err
	} else if prev != nil {
		prevATL, prevCTL = prev.ATL, prev.CTL
	}

	days := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		daily := round2(tssByDay[day])
		atl, ctl, tsb := AdvanceLoad(prevATL, prevCTL, daily)
		if err := store.UpsertTrainingLoad(ctx, models.TrainingLoad{
			UserID:   userID,
			Date:     day,
			DailyTSS: daily,
			ATL:      atl,
			CTL:      ctl,
			TSB:      tsb,
		}); err != nil {
			return days, err
		}
		prevATL, prevCTL = atl, ctl
		days++
	}
	return days, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
