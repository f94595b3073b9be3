package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
)

type fakeIntakeStore struct {
	insertOK   bool
	existing   *models.CompletedWorkout
	plans      []models.TrainingPlan
	records    []models.PersonalRecord
	zones      []models.PaceZone
	lookups    int
	links      int
	upserts    []models.PersonalRecord
	loadWrites int
}

func (f *fakeIntakeStore) InsertCompletedWorkout(_ context.Context, w *models.CompletedWorkout) (bool, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return f.insertOK, nil
}

func (f *fakeIntakeStore) WorkoutByExternalID(_ context.Context, _ int, _ string) (*models.CompletedWorkout, error) {
	f.lookups++
	return f.existing, nil
}

func (f *fakeIntakeStore) ListPlansWithDetail(_ context.Context, _ int) ([]models.TrainingPlan, error) {
	return f.plans, nil
}

func (f *fakeIntakeStore) MatchedScheduledIDs(_ context.Context, _ int) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeIntakeStore) LinkWorkout(_ context.Context, _ uuid.UUID, _ int, _ *uuid.UUID) error {
	f.links++
	return nil
}

func (f *fakeIntakeStore) ListRecords(_ context.Context, _ int) ([]models.PersonalRecord, error) {
	return f.records, nil
}

func (f *fakeIntakeStore) UpsertRecord(_ context.Context, r *models.PersonalRecord) (bool, error) {
	f.upserts = append(f.upserts, *r)
	return true, nil
}

func (f *fakeIntakeStore) ActivePaceZones(_ context.Context, _ int) ([]models.PaceZone, error) {
	return f.zones, nil
}

func (f *fakeIntakeStore) CompletedWorkoutsBetween(_ context.Context, _ int, _, _ time.Time) ([]models.CompletedWorkout, error) {
	return nil, nil
}

func (f *fakeIntakeStore) TrainingLoadOn(_ context.Context, _ int, _ time.Time) (*models.TrainingLoad, error) {
	return nil, nil
}

func (f *fakeIntakeStore) UpsertTrainingLoad(_ context.Context, _ models.TrainingLoad) error {
	f.loadWrites++
	return nil
}

// TestIntakeDuplicateReturnsStoredRow verifies that re-submitting a
// workout with a known external id hands back the row persisted the
// first time, not the fresh unsaved one, and skips the downstream steps.
func TestIntakeDuplicateReturnsStoredRow(t *testing.T) {
	ext := "gpx:1700000000"
	stored := &models.CompletedWorkout{
		ID:         uuid.New(),
		UserID:     1,
		Date:       time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		DistanceKm: 10,
		Duration:   50 * time.Minute,
		ExternalID: &ext,
	}
	store := &fakeIntakeStore{insertOK: false, existing: stored}

	resubmit := &models.CompletedWorkout{
		UserID:     1,
		Date:       stored.Date,
		DistanceKm: 10,
		Duration:   50 * time.Minute,
		ExternalID: &ext,
	}
	result, err := runIntake(context.Background(), store, 1, resubmit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Inserted {
		t.Error("duplicate should report inserted=false")
	}
	if result.Workout.ID != stored.ID {
		t.Errorf("workout ID = %s, want the persisted row %s", result.Workout.ID, stored.ID)
	}
	if store.lookups != 1 {
		t.Errorf("external id lookups = %d, want 1", store.lookups)
	}
	if store.links != 0 || len(store.upserts) != 0 || store.loadWrites != 0 {
		t.Error("duplicate intake must not match, upsert records or rewrite load")
	}
}

// TestIntakeInsertRunsPipeline verifies a fresh insert flows through
// record detection and load recalculation.
func TestIntakeInsertRunsPipeline(t *testing.T) {
	store := &fakeIntakeStore{insertOK: true}
	workout := &models.CompletedWorkout{
		UserID:     1,
		Date:       time.Now().UTC().AddDate(0, 0, -2),
		DistanceKm: 10.2,
		Duration:   45 * time.Minute,
		AvgPace:    models.PaceFor(10.2, 45*time.Minute),
		Source:     models.SourceManual,
	}

	result, err := runIntake(context.Background(), store, 1, workout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Inserted {
		t.Fatal("fresh workout should insert")
	}
	if len(result.Records) == 0 || len(store.upserts) != len(result.Records) {
		t.Errorf("expected first-run records to be set, got %d (upserts %d)",
			len(result.Records), len(store.upserts))
	}
	if result.LoadDays < 2 || store.loadWrites != result.LoadDays {
		t.Errorf("load days = %d (writes %d), want the workout day through today",
			result.LoadDays, store.loadWrites)
	}
}
