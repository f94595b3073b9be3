package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vught/pacekeeper/internal/config"
	"github.com/vught/pacekeeper/internal/importer"
	"github.com/vught/pacekeeper/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	gpxPath := flag.String("path", "", "path to directory of .gpx files (required)")
	user := flag.String("user", "local", "login of the user to import for")
	stateDir := flag.String("state-dir", ".pacekeeper-import", "directory for the skip-state database")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *gpxPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: pacekeeper-import -config config.yaml -path /path/to/gpx [-user login] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*gpxPath)
	if err != nil || !info.IsDir() {
		log.Error("GPX path does not exist or is not a directory", "path", *gpxPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.GetOrCreateUser(ctx, *user, *user)
	if err != nil {
		log.Error("failed to resolve user", "login", *user, "error", err)
		os.Exit(1)
	}

	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Run import
	imp := importer.New(db, state, userID, log, *dryRun)
	stats, err := imp.Import(ctx, *gpxPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"records_set", stats.RecordsSet,
		"load_days_recalculated", stats.LoadDays,
	)
}
