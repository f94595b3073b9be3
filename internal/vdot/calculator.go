// Package vdot derives training pace zones from race results or threshold
// pace using Jack Daniels' VDOT methodology. All functions are pure and
// deterministic; persistence is the caller's concern.
package vdot

import (
	"fmt"
	"sort"
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

// RaceDistances maps the named race distances to kilometers.
var RaceDistances = map[string]float64{
	"5k":            5.0,
	"10k":           10.0,
	"half_marathon": 21.0975,
	"marathon":      42.195,
}

// Plausibility envelopes, in decimal minutes per kilometer.
const (
	minRacePaceMin      = 2.0  // faster than any world record
	maxRacePaceMin      = 15.0 // slower than a walking floor
	minThresholdPaceMin = 2.5
	maxThresholdPaceMin = 10.0

	// Race pace for common distances runs slightly faster than threshold;
	// this offset converts one to the other before the table lookup.
	racePaceThresholdOffsetMin = 0.15
)

// zoneMeta carries the fixed descriptive attributes of each zone.
type zoneMeta struct {
	description string
	colorHex    string
}

var zoneDefinitions = map[models.ZoneName]zoneMeta{
	models.ZoneRecovery:   {"Very easy, conversational pace", "#9CA3AF"},
	models.ZoneEasy:       {"Comfortable, could hold a conversation", "#22C55E"},
	models.ZoneTempo:      {"Comfortably hard, marathon effort", "#EAB308"},
	models.ZoneThreshold:  {"Hard but sustainable for ~1 hour", "#F97316"},
	models.ZoneInterval:   {"Hard, 3-5 minute repeats at VO2max", "#EF4444"},
	models.ZoneRepetition: {"Very hard, short fast bursts", "#A855F7"},
}

// paceRow holds training paces, in decimal min/km, for one VDOT value.
type paceRow struct {
	easy, threshold, interval, repetition float64
}

// vdotPaceTable is Daniels' VDOT to training-pace lookup table.
// Values between entries are linearly interpolated; values outside the
// table are linearly extrapolated from the edge segment so that the
// threshold lookup stays an exact inverse of the pace interpolation.
var vdotPaceTable = map[int]paceRow{
	30: {7.47, 6.38, 5.85, 5.42},
	35: {6.85, 5.85, 5.35, 4.95},
	40: {6.30, 5.38, 4.92, 4.55},
	45: {5.85, 5.00, 4.55, 4.22},
	50: {5.47, 4.67, 4.23, 3.92},
	55: {5.13, 4.38, 3.97, 3.67},
	60: {4.85, 4.13, 3.73, 3.45},
	65: {4.60, 3.92, 3.53, 3.27},
	70: {4.38, 3.73, 3.37, 3.12},
	75: {4.18, 3.57, 3.22, 2.98},
	80: {4.00, 3.42, 3.08, 2.85},
}

var vdotKeys = func() []int {
	keys := make([]int, 0, len(vdotPaceTable))
	for k := range vdotPaceTable {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}()

// Zone is one computed pace band. MinPace is the faster edge.
type Zone struct {
	Name        models.ZoneName `json:"name"`
	MinPace     models.Pace     `json:"min_pace"`
	MaxPace     models.Pace     `json:"max_pace"`
	Description string          `json:"description"`
	ColorHex    string          `json:"color_hex"`
}

// Result is a complete zone calculation.
type Result struct {
	VDOT   float64 `json:"vdot"`
	Zones  []Zone  `json:"zones"`
	Source string  `json:"source"` // e.g. "5K in 22:00" or "threshold pace 5:00/km"
}

// FromRaceResult calculates pace zones from a race performance.
// distance is either a named race distance key or a "<km>" handled by
// FromRaceDistanceKm; use this variant for the enumerated distances.
func FromRaceResult(distance string, finish time.Duration) (*Result, error) {
	km, ok := RaceDistances[distance]
	if !ok {
		return nil, models.Validationf("distance", models.ReasonUnknownDistance,
			"unknown race distance %q", distance)
	}
	res, err := FromRaceDistanceKm(km, finish)
	if err != nil {
		return nil, err
	}
	res.Source = fmt.Sprintf("%s in %s", distance, formatDuration(finish))
	return res, nil
}

// FromRaceDistanceKm calculates pace zones from an arbitrary race distance.
func FromRaceDistanceKm(distanceKm float64, finish time.Duration) (*Result, error) {
	if distanceKm <= 0 {
		return nil, models.Validationf("distance_km", models.ReasonNotPositive,
			"distance must be positive")
	}
	if finish <= 0 {
		return nil, models.Validationf("finish_time", models.ReasonNotPositive,
			"finish time must be positive")
	}

	paceMin := finish.Minutes() / distanceKm
	if paceMin < minRacePaceMin {
		return nil, models.Validationf("finish_time", models.ReasonPaceTooFast,
			"pace %s/km is faster than world record territory", models.PaceFromMinutes(paceMin))
	}
	if paceMin > maxRacePaceMin {
		return nil, models.Validationf("finish_time", models.ReasonPaceTooSlow,
			"pace %s/km is below the walking-pace floor", models.PaceFromMinutes(paceMin))
	}

	// Race pace is a touch faster than threshold; shift before lookup.
	v := vdotFromThresholdPace(paceMin - racePaceThresholdOffsetMin)
	return &Result{
		VDOT:   round1(v),
		Zones:  zonesForVDOT(v),
		Source: fmt.Sprintf("%.2fkm in %s", distanceKm, formatDuration(finish)),
	}, nil
}

// FromThresholdPace calculates pace zones directly from a measured
// lactate threshold pace.
func FromThresholdPace(threshold models.Pace) (*Result, error) {
	paceMin := threshold.Minutes()
	if paceMin <= 0 {
		return nil, models.Validationf("threshold_pace", models.ReasonNotPositive,
			"threshold pace must be positive")
	}
	if paceMin < minThresholdPaceMin {
		return nil, models.Validationf("threshold_pace", models.ReasonPaceTooFast,
			"threshold pace %s/km is faster than elite level", threshold)
	}
	if paceMin > maxThresholdPaceMin {
		return nil, models.Validationf("threshold_pace", models.ReasonPaceTooSlow,
			"threshold pace %s/km is implausibly slow", threshold)
	}

	v := vdotFromThresholdPace(paceMin)
	return &Result{
		VDOT:   round1(v),
		Zones:  zonesForVDOT(v),
		Source: fmt.Sprintf("threshold pace %s/km", threshold),
	}, nil
}

// ZoneForPace classifies a pace into one of the computed zones. Paces
// slower than the recovery band map to recovery, faster than the
// repetition band to repetition.
func ZoneForPace(p models.Pace, zones []Zone) (models.ZoneName, bool) {
	if len(zones) == 0 {
		return "", false
	}
	for _, z := range zones {
		if p >= z.MinPace && p <= z.MaxPace {
			return z.Name, true
		}
	}
	if p > zones[0].MaxPace {
		return zones[0].Name, true
	}
	if p < zones[len(zones)-1].MinPace {
		return zones[len(zones)-1].Name, true
	}
	return "", false
}

// vdotFromThresholdPace inverts the threshold column of the pace table.
func vdotFromThresholdPace(paceMin float64) float64 {
	for i := 0; i < len(vdotKeys)-1; i++ {
		lo, hi := vdotKeys[i], vdotKeys[i+1]
		loPace := vdotPaceTable[lo].threshold
		hiPace := vdotPaceTable[hi].threshold
		// Pace decreases as VDOT increases.
		if loPace >= paceMin && paceMin >= hiPace {
			frac := (loPace - paceMin) / (loPace - hiPace)
			return float64(lo) + frac*float64(hi-lo)
		}
	}
	// Outside the table: extrapolate from the nearest edge segment.
	if paceMin > vdotPaceTable[vdotKeys[0]].threshold {
		return extrapolate(vdotKeys[0], vdotKeys[1], paceMin)
	}
	n := len(vdotKeys)
	return extrapolate(vdotKeys[n-2], vdotKeys[n-1], paceMin)
}

func extrapolate(lo, hi int, paceMin float64) float64 {
	loPace := vdotPaceTable[lo].threshold
	hiPace := vdotPaceTable[hi].threshold
	frac := (loPace - paceMin) / (loPace - hiPace)
	return float64(lo) + frac*float64(hi-lo)
}

// pacesForVDOT interpolates (or edge-extrapolates) the table row for a VDOT.
func pacesForVDOT(v float64) paceRow {
	n := len(vdotKeys)
	seg := func(lo, hi int) paceRow {
		frac := (v - float64(lo)) / float64(hi-lo)
		a, b := vdotPaceTable[lo], vdotPaceTable[hi]
		return paceRow{
			easy:       a.easy + frac*(b.easy-a.easy),
			threshold:  a.threshold + frac*(b.threshold-a.threshold),
			interval:   a.interval + frac*(b.interval-a.interval),
			repetition: a.repetition + frac*(b.repetition-a.repetition),
		}
	}
	if v <= float64(vdotKeys[0]) {
		return seg(vdotKeys[0], vdotKeys[1])
	}
	if v >= float64(vdotKeys[n-1]) {
		return seg(vdotKeys[n-2], vdotKeys[n-1])
	}
	for i := 0; i < n-1; i++ {
		if v >= float64(vdotKeys[i]) && v <= float64(vdotKeys[i+1]) {
			return seg(vdotKeys[i], vdotKeys[i+1])
		}
	}
	return seg(vdotKeys[0], vdotKeys[1])
}

// zonesForVDOT builds the six contiguous zones for a VDOT value,
// ordered slowest (recovery) to fastest (repetition).
func zonesForVDOT(v float64) []Zone {
	p := pacesForVDOT(v)
	tempoMid := (p.easy + p.threshold) / 2

	bands := []struct {
		name     models.ZoneName
		min, max float64 // decimal min/km; min is the faster edge
	}{
		{models.ZoneRecovery, p.easy * 1.05, p.easy * 1.15},
		{models.ZoneEasy, p.easy * 0.95, p.easy * 1.05},
		{models.ZoneTempo, tempoMid, p.easy * 0.95},
		{models.ZoneThreshold, p.threshold, tempoMid},
		{models.ZoneInterval, p.interval, p.threshold},
		{models.ZoneRepetition, p.repetition, p.interval},
	}

	zones := make([]Zone, 0, len(bands))
	for _, b := range bands {
		meta := zoneDefinitions[b.name]
		zones = append(zones, Zone{
			Name:        b.name,
			MinPace:     models.PaceFromMinutes(b.min),
			MaxPace:     models.PaceFromMinutes(b.max),
			Description: meta.description,
			ColorHex:    meta.colorHex,
		})
	}
	return zones
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
