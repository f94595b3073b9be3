package gpx

import (
	"math"
	"strings"
	"testing"
	"time"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Morning Run</name>
    <trkseg>
      <trkpt lat="52.0000" lon="5.0000"><ele>10.0</ele><time>2026-04-06T07:00:00Z</time></trkpt>
      <trkpt lat="52.0045" lon="5.0000"><ele>14.0</ele><time>2026-04-06T07:02:30Z</time></trkpt>
      <trkpt lat="52.0090" lon="5.0000"><ele>12.0</ele><time>2026-04-06T07:05:00Z</time></trkpt>
      <trkpt lat="52.0135" lon="5.0000"><ele>18.0</ele><time>2026-04-06T07:07:30Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>`

// TestParseSummary verifies distance, duration, pace, and elevation gain
// extraction from a simple straight-line track.
func TestParseSummary(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleGPX))
	if err != nil {
		t.Fatal(err)
	}

	if s.Name != "Morning Run" {
		t.Errorf("name = %q, want Morning Run", s.Name)
	}
	if len(s.Points) != 4 {
		t.Fatalf("got %d points, want 4", len(s.Points))
	}

	// 0.0135 degrees of latitude is roughly 1.5km.
	if math.Abs(s.DistanceKm-1.5) > 0.05 {
		t.Errorf("distance = %.3fkm, want ~1.5km", s.DistanceKm)
	}
	if s.Duration != 7*time.Minute+30*time.Second {
		t.Errorf("duration = %s, want 7m30s", s.Duration)
	}
	// ~1.5km in 7:30 is ~5:00/km.
	if math.Abs(s.AvgPace.Seconds()-300) > 15 {
		t.Errorf("avg pace = %s, want ~5:00/km", s.AvgPace)
	}
	// Gains: +4 and +6; the -2 descent does not count.
	if math.Abs(s.ElevationGainM-10) > 0.01 {
		t.Errorf("elevation gain = %.1fm, want 10m", s.ElevationGainM)
	}
	if !s.StartTime.Equal(time.Date(2026, time.April, 6, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("start time = %v", s.StartTime)
	}
}

// TestParseRejectsEmptyTrack verifies files without track points fail
// with a descriptive error instead of a zeroed summary.
func TestParseRejectsEmptyTrack(t *testing.T) {
	empty := `<?xml version="1.0"?><gpx version="1.1" creator="t" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg></trkseg></trk></gpx>`
	if _, err := Parse(strings.NewReader(empty)); err == nil {
		t.Error("empty track parsed without error")
	}

	if _, err := Parse(strings.NewReader("not xml at all")); err == nil {
		t.Error("garbage input parsed without error")
	}
}

// TestToCompletedWorkout verifies the conversion carries source, dedup
// id, and rounded metrics.
func TestToCompletedWorkout(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleGPX))
	if err != nil {
		t.Fatal(err)
	}

	w := s.ToCompletedWorkout(7)
	if w.UserID != 7 {
		t.Errorf("user id = %d, want 7", w.UserID)
	}
	if w.Source != "gpx_import" {
		t.Errorf("source = %q, want gpx_import", w.Source)
	}
	if w.ExternalID == nil || !strings.HasPrefix(*w.ExternalID, "gpx:") {
		t.Errorf("external id = %v, want gpx:<unix>", w.ExternalID)
	}
	if w.ElevationGainM == nil || *w.ElevationGainM != 10 {
		t.Errorf("elevation gain = %v, want 10", w.ElevationGainM)
	}
	if w.Duration != s.Duration || w.AvgPace != s.AvgPace {
		t.Error("duration/pace must carry over unchanged")
	}
}
