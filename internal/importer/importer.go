// Package importer bulk-imports GPX activity files from a directory into
// the workout store. A local SQLite state database makes repeat runs
// cheap: files whose path, size, and hash are unchanged are skipped
// without parsing.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/vught/pacekeeper/internal/gpx"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/storage"
	"github.com/vught/pacekeeper/internal/training"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	WorkoutsInserted   int
	WorkoutsDuplicated int
	RecordsSet         int
	LoadDays           int
}

// Importer reads .gpx files from a directory and inserts workouts into the DB.
type Importer struct {
	db     *storage.DB
	state  *StateDB
	log    *slog.Logger
	userID int
	dryRun bool
	stats  Stats
}

// New creates a new Importer. state may be nil, in which case every file
// is parsed.
func New(db *storage.DB, state *StateDB, userID int, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, state: state, userID: userID, log: log, dryRun: dryRun}
}

// Import processes all .gpx files under dir, then checks records and
// recomputes training load once for the whole batch.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.gpx"))
	if err != nil {
		return &imp.stats, err
	}

	var earliest time.Time
	var inserted []models.CompletedWorkout

	for _, f := range files {
		workout, ok := imp.importFile(ctx, f)
		if !ok {
			continue
		}
		if workout != nil {
			inserted = append(inserted, *workout)
			if earliest.IsZero() || workout.Date.Before(earliest) {
				earliest = workout.Date
			}
		}
	}

	if imp.dryRun || len(inserted) == 0 {
		return &imp.stats, nil
	}

	sort.Slice(inserted, func(i, j int) bool {
		return inserted[i].Date.Before(inserted[j].Date)
	})
	if err := imp.checkRecords(ctx, inserted); err != nil {
		return &imp.stats, fmt.Errorf("checking records: %w", err)
	}

	days, err := training.RecalculateLoad(ctx, imp.db, imp.userID,
		earliest, time.Now(), training.DefaultThresholdPace)
	if err != nil {
		return &imp.stats, fmt.Errorf("recalculating load: %w", err)
	}
	imp.stats.LoadDays = days

	return &imp.stats, nil
}

// importFile parses and stores one file. The second return reports
// whether the file was handled at all; the workout is nil for skips,
// duplicates, and dry runs.
func (imp *Importer) importFile(ctx context.Context, path string) (*models.CompletedWorkout, bool) {
	info, err := os.Stat(path)
	if err != nil {
		imp.log.Warn("stat failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil, false
	}

	var hash string
	if imp.state != nil {
		hash, err = HashFile(path)
		if err != nil {
			imp.log.Warn("hash failed", "file", path, "error", err)
			imp.stats.FilesErrored++
			return nil, false
		}
		done, err := imp.state.IsImported(filepath.Base(path), info.Size(), hash)
		if err != nil {
			imp.log.Warn("state lookup failed", "file", path, "error", err)
		} else if done {
			imp.stats.FilesSkipped++
			return nil, true
		}
	}

	f, err := os.Open(path)
	if err != nil {
		imp.log.Warn("open failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil, false
	}
	summary, err := gpx.Parse(f)
	f.Close()
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil, false
	}

	imp.stats.FilesProcessed++
	if imp.dryRun {
		imp.stats.WorkoutsInserted++
		return nil, true
	}

	workout := summary.ToCompletedWorkout(imp.userID)
	inserted, err := imp.db.InsertCompletedWorkout(ctx, &workout)
	if err != nil {
		imp.log.Warn("insert failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil, false
	}

	if imp.state != nil {
		if err := imp.state.MarkImported(filepath.Base(path), info.Size(), hash); err != nil {
			imp.log.Warn("state update failed", "file", path, "error", err)
		}
	}

	if !inserted {
		imp.stats.WorkoutsDuplicated++
		return nil, true
	}
	imp.stats.WorkoutsInserted++
	return &workout, true
}

// checkRecords runs the PR check for each inserted workout in date order
// so improvements chain correctly within one batch.
func (imp *Importer) checkRecords(ctx context.Context, workouts []models.CompletedWorkout) error {
	existing, err := imp.recordsByDistance(ctx)
	if err != nil {
		return err
	}

	for _, workout := range workouts {
		for _, pr := range training.CheckForPR(workout, existing) {
			record := models.PersonalRecord{
				UserID:     imp.userID,
				Distance:   pr.Distance,
				Time:       pr.Time,
				Pace:       pr.Pace,
				WorkoutID:  &workout.ID,
				AchievedOn: workout.Date,
			}
			improved, err := imp.db.UpsertRecord(ctx, &record)
			if err != nil {
				return err
			}
			if improved {
				imp.stats.RecordsSet++
			}
			existing[pr.Distance] = record
		}
	}
	return nil
}

func (imp *Importer) recordsByDistance(ctx context.Context) (map[string]models.PersonalRecord, error) {
	records, err := imp.db.ListRecords(ctx, imp.userID)
	if err != nil {
		return nil, err
	}
	byDistance := make(map[string]models.PersonalRecord, len(records))
	for _, rec := range records {
		byDistance[rec.Distance] = rec
	}
	return byDistance, nil
}
