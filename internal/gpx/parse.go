// Package gpx extracts workout summaries from GPX track files.
package gpx

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	gpxgo "github.com/tkrajina/gpxgo/gpx"
	"github.com/vught/pacekeeper/internal/models"
)

const earthRadiusKm = 6371.0

// RoutePoint is one recorded track point.
type RoutePoint struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	ElevationM *float64  `json:"elevation_m,omitempty"`
	Time       time.Time `json:"time,omitempty"`
}

// Summary is the parsed result of a GPX file.
type Summary struct {
	Name           string        `json:"name,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	DistanceKm     float64       `json:"distance_km"`
	Duration       time.Duration `json:"duration"`
	AvgPace        models.Pace   `json:"avg_pace"`
	ElevationGainM float64       `json:"elevation_gain_m"`
	Points         []RoutePoint  `json:"points"`
}

// Parse reads a GPX document and summarizes its first activity. All
// track segments are flattened into one point sequence.
func Parse(r io.Reader) (*Summary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gpx: %w", err)
	}
	doc, err := gpxgo.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing gpx: %w", err)
	}

	var points []RoutePoint
	name := doc.Name
	for _, track := range doc.Tracks {
		if name == "" {
			name = track.Name
		}
		for _, seg := range track.Segments {
			for _, p := range seg.Points {
				rp := RoutePoint{Lat: p.Latitude, Lon: p.Longitude, Time: p.Timestamp}
				if p.Elevation.NotNull() {
					ev := p.Elevation.Value()
					rp.ElevationM = &ev
				}
				points = append(points, rp)
			}
		}
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("gpx file contains no usable track points")
	}

	s := &Summary{Name: name, Points: points}
	s.DistanceKm = totalDistanceKm(points)
	s.ElevationGainM = elevationGain(points)

	if !points[0].Time.IsZero() && !points[len(points)-1].Time.IsZero() {
		s.StartTime = points[0].Time
		s.EndTime = points[len(points)-1].Time
		s.Duration = s.EndTime.Sub(s.StartTime)
		if s.Duration < 0 {
			return nil, fmt.Errorf("gpx track timestamps run backwards")
		}
		if s.DistanceKm > 0 && s.Duration > 0 {
			s.AvgPace = models.PaceFor(s.DistanceKm, s.Duration)
		}
	}
	return s, nil
}

// ToCompletedWorkout converts a summary into a workout row for a user.
// The external id is the start timestamp so re-importing the same file
// dedups at the storage layer.
func (s *Summary) ToCompletedWorkout(userID int) models.CompletedWorkout {
	ext := fmt.Sprintf("gpx:%d", s.StartTime.Unix())
	w := models.CompletedWorkout{
		UserID:     userID,
		Date:       s.StartTime,
		DistanceKm: round2(s.DistanceKm),
		Duration:   s.Duration,
		AvgPace:    s.AvgPace,
		Source:     models.SourceGPXImport,
		ExternalID: &ext,
		Notes:      s.Name,
	}
	if s.ElevationGainM > 0 {
		gain := round2(s.ElevationGainM)
		w.ElevationGainM = &gain
	}
	if route, err := json.Marshal(s.Points); err == nil {
		w.RouteJSON = route
	}
	return w
}

func totalDistanceKm(points []RoutePoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += haversineKm(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}
	return total
}

func elevationGain(points []RoutePoint) float64 {
	var gain float64
	var prev *float64
	for _, p := range points {
		if p.ElevationM == nil {
			continue
		}
		if prev != nil && *p.ElevationM > *prev {
			gain += *p.ElevationM - *prev
		}
		prev = p.ElevationM
	}
	return gain
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
