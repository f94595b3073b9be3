package models

// ZoneName identifies a training intensity zone, ordered slowest to fastest.
type ZoneName string

const (
	ZoneRecovery   ZoneName = "recovery"
	ZoneEasy       ZoneName = "easy"
	ZoneTempo      ZoneName = "tempo"
	ZoneThreshold  ZoneName = "threshold"
	ZoneInterval   ZoneName = "interval"
	ZoneRepetition ZoneName = "repetition"
)

// ZoneOrder lists all zones from slowest (recovery) to fastest (repetition).
var ZoneOrder = []ZoneName{
	ZoneRecovery, ZoneEasy, ZoneTempo, ZoneThreshold, ZoneInterval, ZoneRepetition,
}

func (z ZoneName) Valid() bool {
	for _, n := range ZoneOrder {
		if z == n {
			return true
		}
	}
	return false
}

// PlanType is the race distance a training plan targets.
type PlanType string

const (
	PlanHalfMarathon PlanType = "half_marathon"
	PlanFullMarathon PlanType = "full_marathon"
)

func (t PlanType) Valid() bool {
	return t == PlanHalfMarathon || t == PlanFullMarathon
}

// DistanceKm returns the race distance in kilometers.
func (t PlanType) DistanceKm() float64 {
	if t == PlanHalfMarathon {
		return 21.0975
	}
	return 42.195
}

// WeekFocus classifies a training week's position in the plan arc.
type WeekFocus string

const (
	FocusBase  WeekFocus = "base"
	FocusBuild WeekFocus = "build"
	FocusPeak  WeekFocus = "peak"
	FocusTaper WeekFocus = "taper"
)

func (f WeekFocus) Valid() bool {
	switch f {
	case FocusBase, FocusBuild, FocusPeak, FocusTaper:
		return true
	}
	return false
}

// WorkoutType classifies a scheduled workout.
type WorkoutType string

const (
	WorkoutEasy     WorkoutType = "easy"
	WorkoutLong     WorkoutType = "long"
	WorkoutTempo    WorkoutType = "tempo"
	WorkoutInterval WorkoutType = "interval"
	WorkoutRecovery WorkoutType = "recovery"
	WorkoutRest     WorkoutType = "rest"
)

func (t WorkoutType) Valid() bool {
	switch t {
	case WorkoutEasy, WorkoutLong, WorkoutTempo, WorkoutInterval, WorkoutRecovery, WorkoutRest:
		return true
	}
	return false
}

// WorkoutSource records how a completed workout entered the system.
type WorkoutSource string

const (
	SourceManual       WorkoutSource = "manual"
	SourceGPXImport    WorkoutSource = "gpx_import"
	SourceExternalSync WorkoutSource = "external_sync"
)

func (s WorkoutSource) Valid() bool {
	switch s {
	case SourceManual, SourceGPXImport, SourceExternalSync:
		return true
	}
	return false
}
