package training

import (
	"time"

	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/vdot"
)

// WeekSummary aggregates the completed runs of one Monday-based
// calendar week.
type WeekSummary struct {
	WeekStart  time.Time     `json:"week_start"`
	Workouts   int           `json:"workouts"`
	DistanceKm float64       `json:"distance_km"`
	Duration   time.Duration `json:"duration"`
	AvgPace    models.Pace   `json:"avg_pace,omitempty"`
}

// WeeklySummaries buckets workouts into the last weeks calendar weeks
// ending with the week containing now, oldest first. Weeks without runs
// are included as zero rows so trend charts show the gaps.
func WeeklySummaries(workouts []models.CompletedWorkout, weeks int, now time.Time) []WeekSummary {
	if weeks <= 0 {
		weeks = 12
	}
	end := startOfWeek(now)
	start := end.AddDate(0, 0, -7*(weeks-1))

	byWeek := make(map[time.Time]*WeekSummary, weeks)
	out := make([]WeekSummary, weeks)
	for i := range out {
		ws := start.AddDate(0, 0, 7*i)
		out[i] = WeekSummary{WeekStart: ws}
		byWeek[ws] = &out[i]
	}

	for _, w := range workouts {
		s, ok := byWeek[startOfWeek(w.Date)]
		if !ok {
			continue
		}
		s.Workouts++
		s.DistanceKm = round2(s.DistanceKm + w.DistanceKm)
		s.Duration += w.Duration
	}
	for i := range out {
		if out[i].DistanceKm > 0 {
			out[i].AvgPace = models.PaceFor(out[i].DistanceKm, out[i].Duration)
		}
	}
	return out
}

// ZoneShare is one zone's slice of recent running volume.
type ZoneShare struct {
	Zone       models.ZoneName `json:"zone"`
	Workouts   int             `json:"workouts"`
	DistanceKm float64         `json:"distance_km"`
	Percent    float64         `json:"percent"`
}

// ZoneDistribution classifies each run by the zone its average pace
// falls into and reports the distance share per active zone. Zones must
// be ordered slowest first, as ActivePaceZones returns them; runs
// without a pace are skipped.
func ZoneDistribution(workouts []models.CompletedWorkout, zones []models.PaceZone) []ZoneShare {
	if len(zones) == 0 {
		return nil
	}
	bands := make([]vdot.Zone, len(zones))
	for i, z := range zones {
		bands[i] = vdot.Zone{Name: z.Name, MinPace: z.MinPace, MaxPace: z.MaxPace}
	}

	out := make([]ZoneShare, len(zones))
	index := make(map[models.ZoneName]*ZoneShare, len(zones))
	for i, z := range zones {
		out[i] = ZoneShare{Zone: z.Name}
		index[z.Name] = &out[i]
	}

	var totalKm float64
	for _, w := range workouts {
		if w.AvgPace <= 0 {
			continue
		}
		name, ok := vdot.ZoneForPace(w.AvgPace, bands)
		if !ok {
			continue
		}
		s := index[name]
		s.Workouts++
		s.DistanceKm = round2(s.DistanceKm + w.DistanceKm)
		totalKm += w.DistanceKm
	}
	if totalKm > 0 {
		for i := range out {
			out[i].Percent = round2(out[i].DistanceKm / totalKm * 100)
		}
	}
	return out
}

// startOfWeek returns the Monday midnight of the week containing t.
func startOfWeek(t time.Time) time.Time {
	t = truncateDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
