package training

import (
	"time"

	"github.com/vught/pacekeeper/internal/models"
)

// RecordDistance is one standard distance personal records are kept for.
type RecordDistance struct {
	Key string
	Km  float64
}

// RecordDistances lists the tracked distances, shortest first.
var RecordDistances = []RecordDistance{
	{"5k", 5.0},
	{"10k", 10.0},
	{"half_marathon", 21.0975},
	{"marathon", 42.195},
}

// Completed distance may undershoot the nominal distance slightly
// (GPS drift) and still count as covering it.
const distanceTolerance = 0.99

// PRResult reports one record check outcome.
type PRResult struct {
	Distance      string        `json:"distance"`
	Time          time.Duration `json:"time"`
	Pace          models.Pace   `json:"pace"`
	Improvement   time.Duration `json:"improvement,omitempty"` // zero for a first record
	PreviousTime  time.Duration `json:"previous_time,omitempty"`
	IsFirstRecord bool          `json:"is_first_record"`
}

// CheckForPR examines a completed workout against the user's existing
// records and returns a result for every distance the run improves. The
// time credited for a distance shorter than the full run is the pro-rated
// split at the run's average pace.
func CheckForPR(workout models.CompletedWorkout, existing map[string]models.PersonalRecord) []PRResult {
	if workout.DistanceKm <= 0 || workout.Duration <= 0 {
		return nil
	}

	var results []PRResult
	for _, rd := range RecordDistances {
		if workout.DistanceKm < rd.Km*distanceTolerance {
			continue
		}

		credited := workout.Duration
		if workout.DistanceKm > rd.Km {
			credited = time.Duration(float64(workout.Duration) * rd.Km / workout.DistanceKm)
		}
		credited = credited.Round(time.Second)

		prev, has := existing[rd.Key]
		if has && credited >= prev.Time {
			continue
		}

		res := PRResult{
			Distance:      rd.Key,
			Time:          credited,
			Pace:          models.PaceFor(rd.Km, credited),
			IsFirstRecord: !has,
		}
		if has {
			res.Improvement = prev.Time - credited
			res.PreviousTime = prev.Time
		}
		results = append(results, res)
	}
	return results
}
