package models

import "fmt"

// Validation reason codes. These are stable identifiers surfaced to API
// clients; human-readable wording lives in the Message field only.
const (
	ReasonNotPositive          = "not_positive"
	ReasonPaceTooFast          = "pace_too_fast"
	ReasonPaceTooSlow          = "pace_too_slow"
	ReasonUnknownDistance      = "unknown_distance"
	ReasonRaceDateNotFuture    = "race_date_not_future"
	ReasonBelowMinimumWeeks    = "below_minimum_weeks"
	ReasonUnsupportedPlanType  = "unsupported_plan_type"
	ReasonGoalTimeImplausible  = "goal_time_implausible"
	ReasonProgressionExceeded  = "progression_exceeded"
	ReasonMissingTaper         = "missing_taper"
	ReasonWeeksNotContiguous   = "weeks_not_contiguous"
	ReasonInvalidValue         = "invalid_value"
	ReasonRestWorkoutHasTarget = "rest_workout_has_target"
)

// ValidationError reports an input that violates a documented constraint.
// It carries a machine-readable reason code and the offending field so
// callers can map it to user-facing messages.
type ValidationError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(field, reason, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Message: fmt.Sprintf(format, args...)}
}
