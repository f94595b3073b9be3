package training

import (
	"testing"
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

func run(date time.Time, km float64, dur time.Duration) models.CompletedWorkout {
	return models.CompletedWorkout{
		Date:       date,
		DistanceKm: km,
		Duration:   dur,
		AvgPace:    models.PaceFor(km, dur),
	}
}

// TestWeeklySummaries verifies Monday-based bucketing, inclusion of
// empty weeks, and per-week totals.
func TestWeeklySummaries(t *testing.T) {
	// 2026-04-06 is a Monday.
	now := time.Date(2026, 4, 16, 12, 0, 0, 0, time.UTC)
	workouts := []models.CompletedWorkout{
		run(time.Date(2026, 4, 6, 7, 0, 0, 0, time.UTC), 10, 50*time.Minute),
		run(time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC), 20, 100*time.Minute),
		run(time.Date(2026, 4, 14, 7, 0, 0, 0, time.UTC), 5, 25*time.Minute),
	}

	got := WeeklySummaries(workouts, 3, now)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if !got[0].WeekStart.Equal(time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first week start = %s, want 2026-03-30", got[0].WeekStart)
	}
	if got[0].Workouts != 0 || got[0].DistanceKm != 0 {
		t.Errorf("empty week should be a zero row, got %+v", got[0])
	}

	// Week of Apr 6: the Monday run and the Sunday run.
	if got[1].Workouts != 2 || got[1].DistanceKm != 30 {
		t.Errorf("week 2 = %d workouts / %.1fkm, want 2 / 30.0", got[1].Workouts, got[1].DistanceKm)
	}
	if got[1].AvgPace != models.PaceFor(30, 150*time.Minute) {
		t.Errorf("week 2 avg pace = %s, want 5:00", got[1].AvgPace)
	}

	if got[2].Workouts != 1 || got[2].DistanceKm != 5 {
		t.Errorf("week 3 = %d workouts / %.1fkm, want 1 / 5.0", got[2].Workouts, got[2].DistanceKm)
	}
}

// TestWeeklySummariesIgnoresOutOfWindow verifies runs before the window
// are not counted.
func TestWeeklySummariesIgnoresOutOfWindow(t *testing.T) {
	now := time.Date(2026, 4, 16, 12, 0, 0, 0, time.UTC)
	workouts := []models.CompletedWorkout{
		run(time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC), 10, 50*time.Minute),
	}
	got := WeeklySummaries(workouts, 2, now)
	for _, w := range got {
		if w.Workouts != 0 {
			t.Errorf("week %s should be empty, got %d workouts", w.WeekStart, w.Workouts)
		}
	}
}

func analyticsZones() []models.PaceZone {
	// Slowest first, matching ActivePaceZones ordering.
	mk := func(name models.ZoneName, min, max string) models.PaceZone {
		lo, _ := models.ParsePace(min)
		hi, _ := models.ParsePace(max)
		return models.PaceZone{Name: name, MinPace: lo, MaxPace: hi}
	}
	return []models.PaceZone{
		mk(models.ZoneRecovery, "6:18", "6:54"),
		mk(models.ZoneEasy, "5:42", "6:18"),
		mk(models.ZoneTempo, "5:06", "5:42"),
		mk(models.ZoneThreshold, "4:40", "5:06"),
		mk(models.ZoneInterval, "4:14", "4:40"),
		mk(models.ZoneRepetition, "3:55", "4:14"),
	}
}

// TestZoneDistribution verifies runs are attributed to the zone of
// their average pace and shares sum over the covered distance.
func TestZoneDistribution(t *testing.T) {
	day := time.Date(2026, 4, 6, 7, 0, 0, 0, time.UTC)
	workouts := []models.CompletedWorkout{
		run(day, 10, 60*time.Minute),                   // 6:00/km, easy
		run(day.AddDate(0, 0, 1), 10, 60*time.Minute),  // easy again
		run(day.AddDate(0, 0, 2), 10, 50*time.Minute),  // 5:00/km, threshold
		run(day.AddDate(0, 0, 3), 10, 100*time.Minute), // 10:00/km, slower than all bands
	}

	got := ZoneDistribution(workouts, analyticsZones())
	if len(got) != 6 {
		t.Fatalf("len = %d, want one share per active zone", len(got))
	}

	byZone := make(map[models.ZoneName]ZoneShare, len(got))
	for _, s := range got {
		byZone[s.Zone] = s
	}
	if s := byZone[models.ZoneEasy]; s.Workouts != 2 || s.DistanceKm != 20 {
		t.Errorf("easy share = %+v, want 2 workouts / 20km", s)
	}
	if s := byZone[models.ZoneThreshold]; s.Workouts != 1 || s.Percent != 25 {
		t.Errorf("threshold share = %+v, want 1 workout / 25%%", s)
	}
	// Paces beyond the slowest band still count as recovery volume.
	if s := byZone[models.ZoneRecovery]; s.Workouts != 1 {
		t.Errorf("recovery share = %+v, want the out-of-band slow run", s)
	}
}

// TestZoneDistributionNoZones verifies the distribution is empty when
// the runner has no calculated zones.
func TestZoneDistributionNoZones(t *testing.T) {
	day := time.Date(2026, 4, 6, 7, 0, 0, 0, time.UTC)
	if got := ZoneDistribution([]models.CompletedWorkout{run(day, 10, 50*time.Minute)}, nil); got != nil {
		t.Errorf("want nil distribution without zones, got %v", got)
	}
}
