package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/training"
)

type createWorkoutRequest struct {
	Date           string   `json:"date"` // "2006-01-02" or RFC 3339
	DistanceKm     float64  `json:"distance_km"`
	Duration       string   `json:"duration"` // "H:MM:SS" or "MM:SS"
	AvgHeartRate   *int     `json:"avg_heart_rate,omitempty"`
	MaxHeartRate   *int     `json:"max_heart_rate,omitempty"`
	ElevationGainM *float64 `json:"elevation_gain_m,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// workoutResult reports everything that happened on intake: the stored
// row, the auto-match outcome, any records broken, and how many days of
// load were recomputed.
type workoutResult struct {
	Workout  *models.CompletedWorkout `json:"workout"`
	Inserted bool                     `json:"inserted"`
	Match    *training.MatchCandidate `json:"match,omitempty"`
	Records  []training.PRResult      `json:"records,omitempty"`
	LoadDays int                      `json:"load_days_recalculated"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	workout, err := req.toWorkout()
	if err != nil {
		s.writeError(w, err)
		return
	}

	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	workout.UserID = userID

	result, err := s.intakeWorkout(r.Context(), userID, workout)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (req createWorkoutRequest) toWorkout() (*models.CompletedWorkout, error) {
	if req.DistanceKm <= 0 {
		return nil, models.Validationf("distance_km", models.ReasonNotPositive,
			"distance must be positive")
	}
	duration, err := parseFinishTime(req.Duration)
	if err != nil || duration <= 0 {
		return nil, models.Validationf("duration", models.ReasonInvalidValue,
			"invalid duration %q: want H:MM:SS", req.Duration)
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, models.Validationf("date", models.ReasonInvalidValue,
				"invalid date %q", req.Date)
		}
	}
	return &models.CompletedWorkout{
		Date:           date,
		DistanceKm:     req.DistanceKm,
		Duration:       duration,
		AvgPace:        models.PaceFor(req.DistanceKm, duration),
		AvgHeartRate:   req.AvgHeartRate,
		MaxHeartRate:   req.MaxHeartRate,
		ElevationGainM: req.ElevationGainM,
		Source:         models.SourceManual,
		Notes:          req.Notes,
	}, nil
}

// workoutStore is the storage surface of the intake pipeline, satisfied
// by *storage.DB.
type workoutStore interface {
	training.LoadStore
	InsertCompletedWorkout(ctx context.Context, w *models.CompletedWorkout) (bool, error)
	WorkoutByExternalID(ctx context.Context, userID int, externalID string) (*models.CompletedWorkout, error)
	ListPlansWithDetail(ctx context.Context, userID int) ([]models.TrainingPlan, error)
	MatchedScheduledIDs(ctx context.Context, userID int) (map[string]bool, error)
	LinkWorkout(ctx context.Context, id uuid.UUID, userID int, scheduledID *uuid.UUID) error
	ListRecords(ctx context.Context, userID int) ([]models.PersonalRecord, error)
	UpsertRecord(ctx context.Context, r *models.PersonalRecord) (bool, error)
	ActivePaceZones(ctx context.Context, userID int) ([]models.PaceZone, error)
}

func (s *Server) intakeWorkout(ctx context.Context, userID int, workout *models.CompletedWorkout) (*workoutResult, error) {
	return runIntake(ctx, s.db, userID, workout)
}

// runIntake is the full intake pipeline: store, auto-match against
// scheduled sessions, check for records, recompute training load from
// the workout's day forward.
func runIntake(ctx context.Context, store workoutStore, userID int, workout *models.CompletedWorkout) (*workoutResult, error) {
	inserted, err := store.InsertCompletedWorkout(ctx, workout)
	if err != nil {
		return nil, err
	}
	result := &workoutResult{Workout: workout, Inserted: inserted}
	if !inserted {
		// Duplicate import; hand back the row stored the first time.
		if workout.ExternalID != nil {
			existing, err := store.WorkoutByExternalID(ctx, userID, *workout.ExternalID)
			if err != nil {
				return nil, err
			}
			result.Workout = existing
		}
		return result, nil
	}

	plans, err := store.ListPlansWithDetail(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched, err := store.MatchedScheduledIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if best, ok := training.BestMatch(*workout, plans, matched); ok {
		if err := store.LinkWorkout(ctx, workout.ID, userID, &best.Scheduled.ID); err != nil {
			return nil, err
		}
		workout.ScheduledWorkoutID = &best.Scheduled.ID
		result.Match = &best
	}

	existing, err := recordsByDistance(ctx, store, userID)
	if err != nil {
		return nil, err
	}
	for _, pr := range training.CheckForPR(*workout, existing) {
		record := &models.PersonalRecord{
			UserID:     userID,
			Distance:   pr.Distance,
			Time:       pr.Time,
			Pace:       pr.Pace,
			WorkoutID:  &workout.ID,
			AchievedOn: workout.Date,
		}
		if _, err := store.UpsertRecord(ctx, record); err != nil {
			return nil, err
		}
		result.Records = append(result.Records, pr)
	}

	days, err := training.RecalculateLoad(ctx, store, userID,
		workout.Date, time.Now(), thresholdPace(ctx, store, userID))
	if err != nil {
		return nil, err
	}
	result.LoadDays = days
	return result, nil
}

func recordsByDistance(ctx context.Context, store workoutStore, userID int) (map[string]models.PersonalRecord, error) {
	records, err := store.ListRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	byDistance := make(map[string]models.PersonalRecord, len(records))
	for _, rec := range records {
		byDistance[rec.Distance] = rec
	}
	return byDistance, nil
}

// thresholdPace returns the user's current threshold zone pace, falling
// back to the population default when no zones are stored.
func thresholdPace(ctx context.Context, store workoutStore, userID int) models.Pace {
	zones, err := store.ActivePaceZones(ctx, userID)
	if err != nil {
		return training.DefaultThresholdPace
	}
	for _, z := range zones {
		if z.Name == models.ZoneThreshold {
			return z.MinPace
		}
	}
	return training.DefaultThresholdPace
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	workouts, err := s.db.ListCompletedWorkouts(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid workout ID")
		return
	}
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	workout, err := s.db.GetCompletedWorkout(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

type matchWorkoutRequest struct {
	ScheduledWorkoutID *uuid.UUID `json:"scheduled_workout_id"` // null unlinks
}

func (s *Server) handleMatchWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid workout ID")
		return
	}
	var req matchWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.ScheduledWorkoutID != nil {
		// Reject links to sessions the user does not own.
		if _, err := s.db.GetScheduledWorkout(r.Context(), *req.ScheduledWorkoutID, userID); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := s.db.LinkWorkout(r.Context(), id, userID, req.ScheduledWorkoutID); err != nil {
		s.writeError(w, err)
		return
	}
	workout, err := s.db.GetCompletedWorkout(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleMatchCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid workout ID")
		return
	}
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	workout, err := s.db.GetCompletedWorkout(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plans, err := s.db.ListPlansWithDetail(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	matched, err := s.db.MatchedScheduledIDs(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	candidates := training.FindCandidates(*workout, plans, matched, 5)
	writeJSON(w, http.StatusOK, candidates)
}
