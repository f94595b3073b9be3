package training

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
)

func fl(v float64) *float64 { return &v }

// planWithOneWeek builds a minimal plan aggregate whose week 1 has an
// easy run on Monday and a rest day on Tuesday.
func planWithOneWeek(t *testing.T, raceDate time.Time, weeks int) models.TrainingPlan {
	t.Helper()
	plan := models.TrainingPlan{
		ID:             uuid.New(),
		Name:           "test plan",
		PlanType:       models.PlanHalfMarathon,
		Methodology:    "custom",
		DurationWeeks:  weeks,
		TargetRaceDate: raceDate,
	}
	plan.Weeks = []models.TrainingWeek{{
		ID:         uuid.New(),
		PlanID:     plan.ID,
		WeekNumber: 1,
		Focus:      models.FocusBase,
		Workouts: []models.ScheduledWorkout{
			{ID: uuid.New(), DayOfWeek: 1, WorkoutType: models.WorkoutEasy, TargetDistanceKm: fl(8)},
			{ID: uuid.New(), DayOfWeek: 2, WorkoutType: models.WorkoutRest},
		},
	}}
	return plan
}

// TestScheduledDate verifies calendar resolution of week/day positions.
func TestScheduledDate(t *testing.T) {
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC) // a Monday

	if got := ScheduledDate(start, 1, 1); !got.Equal(start) {
		t.Errorf("week 1 day 1 = %v, want %v", got, start)
	}
	if got := ScheduledDate(start, 1, 7); !got.Equal(start.AddDate(0, 0, 6)) {
		t.Errorf("week 1 day 7 = %v, want Sunday of week 1", got)
	}
	if got := ScheduledDate(start, 3, 2); !got.Equal(start.AddDate(0, 0, 15)) {
		t.Errorf("week 3 day 2 = %v, want start+15d", got)
	}
}

// TestFindCandidatesWindow verifies runs inside the 3-day window match
// and runs outside it never do.
func TestFindCandidatesWindow(t *testing.T) {
	race := time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC)
	plan := planWithOneWeek(t, race, 12)
	monday := plan.StartDate() // week 1 day 1

	sameDay := models.CompletedWorkout{Date: monday, DistanceKm: 8, Duration: 48 * time.Minute}
	got := FindCandidates(sameDay, []models.TrainingPlan{plan}, nil, 5)
	if len(got) != 1 {
		t.Fatalf("same-day run: %d candidates, want 1 (rest day excluded)", len(got))
	}
	if got[0].DateDiff != 0 || got[0].Score < AutoMatchThreshold {
		t.Errorf("same-day exact-distance run scored %.2f (diff %d), want auto-matchable",
			got[0].Score, got[0].DateDiff)
	}

	farAway := sameDay
	farAway.Date = monday.AddDate(0, 0, 5)
	if got := FindCandidates(farAway, []models.TrainingPlan{plan}, nil, 5); len(got) != 0 {
		t.Errorf("run 5 days out produced %d candidates, want 0", len(got))
	}
}

// TestFindCandidatesScoring verifies date proximity outweighs distance
// similarity per the configured weights.
func TestFindCandidatesScoring(t *testing.T) {
	race := time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC)
	plan := planWithOneWeek(t, race, 12)
	monday := plan.StartDate()

	exact := models.CompletedWorkout{Date: monday, DistanceKm: 8, Duration: 48 * time.Minute}
	offDistance := models.CompletedWorkout{Date: monday, DistanceKm: 14, Duration: 84 * time.Minute}
	offDate := exact
	offDate.Date = monday.AddDate(0, 0, 2)

	sExact := FindCandidates(exact, []models.TrainingPlan{plan}, nil, 1)[0].Score
	sOffDist := FindCandidates(offDistance, []models.TrainingPlan{plan}, nil, 1)[0].Score
	sOffDate := FindCandidates(offDate, []models.TrainingPlan{plan}, nil, 1)[0].Score

	if sExact <= sOffDist || sExact <= sOffDate {
		t.Errorf("exact match %.2f should outscore off-distance %.2f and off-date %.2f",
			sExact, sOffDist, sOffDate)
	}
}

// TestFindCandidatesExclusions verifies templates and already-matched
// sessions are skipped.
func TestFindCandidatesExclusions(t *testing.T) {
	race := time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC)
	plan := planWithOneWeek(t, race, 12)
	monday := plan.StartDate()
	run := models.CompletedWorkout{Date: monday, DistanceKm: 8, Duration: 48 * time.Minute}

	template := plan
	template.IsTemplate = true
	if got := FindCandidates(run, []models.TrainingPlan{template}, nil, 5); len(got) != 0 {
		t.Errorf("template plan produced %d candidates, want 0", len(got))
	}

	matched := map[string]bool{plan.Weeks[0].Workouts[0].ID.String(): true}
	if got := FindCandidates(run, []models.TrainingPlan{plan}, matched, 5); len(got) != 0 {
		t.Errorf("already-matched session produced %d candidates, want 0", len(got))
	}
}

// TestBestMatch verifies the auto-match threshold gate.
func TestBestMatch(t *testing.T) {
	race := time.Date(2026, time.May, 25, 0, 0, 0, 0, time.UTC)
	plan := planWithOneWeek(t, race, 12)
	monday := plan.StartDate()

	good := models.CompletedWorkout{Date: monday, DistanceKm: 8, Duration: 48 * time.Minute}
	if _, ok := BestMatch(good, []models.TrainingPlan{plan}, nil); !ok {
		t.Error("same-day exact run should auto-match")
	}

	// Three days off with a large distance mismatch scores below 0.7.
	poor := models.CompletedWorkout{Date: monday.AddDate(0, 0, 3), DistanceKm: 25, Duration: 150 * time.Minute}
	if c, ok := BestMatch(poor, []models.TrainingPlan{plan}, nil); ok {
		t.Errorf("poor candidate auto-matched with score %.2f", c.Score)
	}
}
