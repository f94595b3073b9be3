package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Pace is a running pace expressed as time per kilometer.
type Pace time.Duration

// PaceFromSeconds builds a Pace from seconds per kilometer.
func PaceFromSeconds(sec float64) Pace {
	return Pace(time.Duration(math.Round(sec)) * time.Second)
}

// PaceFromMinutes builds a Pace from decimal minutes per kilometer
// (e.g. 5.50 = 5:30/km), the unit the Daniels tables use.
func PaceFromMinutes(min float64) Pace {
	return PaceFromSeconds(min * 60)
}

// Seconds returns the pace in seconds per kilometer.
func (p Pace) Seconds() float64 {
	return time.Duration(p).Seconds()
}

// Minutes returns the pace in decimal minutes per kilometer.
func (p Pace) Minutes() float64 {
	return time.Duration(p).Minutes()
}

// Duration returns the underlying time per kilometer.
func (p Pace) Duration() time.Duration {
	return time.Duration(p)
}

// String formats the pace as "M:SS" per kilometer.
func (p Pace) String() string {
	total := int(time.Duration(p).Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ParsePace parses "M:SS" or "MM:SS" into a Pace.
func ParsePace(s string) (Pace, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid pace %q: want M:SS", s)
	}
	min, err := strconv.Atoi(parts[0])
	if err != nil || min < 0 {
		return 0, fmt.Errorf("invalid pace minutes %q", parts[0])
	}
	sec, err := strconv.Atoi(parts[1])
	if err != nil || sec < 0 || sec > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid pace seconds %q", parts[1])
	}
	return Pace(time.Duration(min*60+sec) * time.Second), nil
}

// MarshalJSON renders the pace as an "M:SS" string.
func (p Pace) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either an "M:SS" string or raw seconds per km.
func (p *Pace) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParsePace(s)
		if perr != nil {
			return perr
		}
		*p = parsed
		return nil
	}
	var sec float64
	if err := json.Unmarshal(data, &sec); err != nil {
		return fmt.Errorf("pace must be \"M:SS\" or seconds per km")
	}
	*p = PaceFromSeconds(sec)
	return nil
}

// PaceFor computes the average pace for a distance covered in a duration.
func PaceFor(distanceKm float64, d time.Duration) Pace {
	if distanceKm <= 0 {
		return 0
	}
	return PaceFromSeconds(d.Seconds() / distanceKm)
}
