package training

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

// Matching parameters: date proximity dominates, distance similarity
// refines. Candidates further than the window never match.
const (
	DateWeight         = 0.6
	DistanceWeight     = 0.4
	MaxDateDiffDays    = 3
	AutoMatchThreshold = 0.7
)

// MatchCandidate is a scheduled workout that may correspond to a
// completed run.
type MatchCandidate struct {
	Scheduled   models.ScheduledWorkout `json:"scheduled"`
	Date        time.Time               `json:"date"`
	Score       float64                 `json:"score"`
	DateDiff    int                     `json:"date_diff_days"`
	DistanceKm  *float64                `json:"distance_diff_km,omitempty"`
	Explanation string                  `json:"explanation"`
}

// ScheduledDate resolves the calendar date of a scheduled workout from
// its plan's start date, week number, and day of week (1 = Monday).
func ScheduledDate(planStart time.Time, weekNumber, dayOfWeek int) time.Time {
	return truncateDay(planStart).AddDate(0, 0, (weekNumber-1)*7+dayOfWeek-1)
}

// FindCandidates scores the scheduled workouts of the given plan
// aggregates against a completed run and returns the best matches,
// highest score first. Rest days and already-matched sessions are the
// caller's responsibility to exclude via the matched set.
func FindCandidates(completed models.CompletedWorkout, plans []models.TrainingPlan, matched map[string]bool, limit int) []MatchCandidate {
	var candidates []MatchCandidate
	for _, plan := range plans {
		if plan.IsTemplate || plan.DurationWeeks == 0 {
			continue
		}
		start := plan.StartDate()
		for _, week := range plan.Weeks {
			for _, sw := range week.Workouts {
				if sw.WorkoutType == models.WorkoutRest {
					continue
				}
				if matched[sw.ID.String()] {
					continue
				}
				date := ScheduledDate(start, week.WeekNumber, sw.DayOfWeek)
				diff := dateDiffDays(completed.Date, date)
				if diff > MaxDateDiffDays {
					continue
				}
				candidates = append(candidates, scoreCandidate(completed, sw, date, diff))
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// BestMatch returns the top candidate if it clears the auto-match
// threshold.
func BestMatch(completed models.CompletedWorkout, plans []models.TrainingPlan, matched map[string]bool) (MatchCandidate, bool) {
	candidates := FindCandidates(completed, plans, matched, 1)
	if len(candidates) == 0 || candidates[0].Score < AutoMatchThreshold {
		return MatchCandidate{}, false
	}
	return candidates[0], true
}

// scoreCandidate weighs date proximity against distance similarity.
// A same-day run of the exact planned distance scores 1.0.
func scoreCandidate(completed models.CompletedWorkout, sw models.ScheduledWorkout, date time.Time, dateDiff int) MatchCandidate {
	dateScore := 1 - float64(dateDiff)/float64(MaxDateDiffDays+1)

	distScore := 0.5 // neutral when the session has no distance target
	var distDiff *float64
	if sw.TargetDistanceKm != nil && *sw.TargetDistanceKm > 0 {
		d := math.Abs(completed.DistanceKm - *sw.TargetDistanceKm)
		distDiff = &d
		distScore = 1 - math.Min(1, d / *sw.TargetDistanceKm)
	}

	score := DateWeight*dateScore + DistanceWeight*distScore

	explanation := fmt.Sprintf("%s scheduled %s", sw.WorkoutType, date.Format("2006-01-02"))
	if dateDiff == 0 {
		explanation += ", same day"
	} else {
		explanation += fmt.Sprintf(", %d day(s) off", dateDiff)
	}
	if distDiff != nil {
		explanation += fmt.Sprintf(", distance off by %.1fkm", *distDiff)
	}

	return MatchCandidate{
		Scheduled:   sw,
		Date:        date,
		Score:       math.Round(score*100) / 100,
		DateDiff:    dateDiff,
		DistanceKm:  distDiff,
		Explanation: explanation,
	}
}

func dateDiffDays(a, b time.Time) int {
	diff := int(truncateDay(a).Sub(truncateDay(b)).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}
