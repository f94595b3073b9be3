package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk><trkseg>
    <trkpt lat="52.5200" lon="13.4050"><ele>34</ele><time>2026-04-01T08:00:00Z</time></trkpt>
    <trkpt lat="52.5245" lon="13.4050"><ele>36</ele><time>2026-04-01T08:02:30Z</time></trkpt>
    <trkpt lat="52.5290" lon="13.4050"><ele>40</ele><time>2026-04-01T08:05:00Z</time></trkpt>
  </trkseg></trk>
</gpx>`

func writeGPX(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestImportDryRun verifies that a dry run counts parseable files and
// flags broken ones without touching any database.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeGPX(t, dir, "run1.gpx", sampleGPX)
	writeGPX(t, dir, "broken.gpx", "not xml at all")
	writeGPX(t, dir, "notes.txt", "ignored, wrong extension")

	imp := New(nil, nil, 1, slog.Default(), true)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesProcessed != 1 {
		t.Errorf("processed = %d, want 1", stats.FilesProcessed)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("errored = %d, want 1", stats.FilesErrored)
	}
	if stats.WorkoutsInserted != 1 {
		t.Errorf("inserted = %d, want 1", stats.WorkoutsInserted)
	}
}

// TestStateDBRoundTrip verifies the skip bookkeeping: a file is unknown
// until marked, and a changed hash invalidates the skip.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("opening state db: %v", err)
	}
	defer state.Close()

	done, err := state.IsImported("run1.gpx", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("unknown file reported as imported")
	}

	if err := state.MarkImported("run1.gpx", 100, "abc"); err != nil {
		t.Fatal(err)
	}

	done, err = state.IsImported("run1.gpx", 100, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Error("marked file not reported as imported")
	}

	// Same path, different content
	done, err = state.IsImported("run1.gpx", 100, "def")
	if err != nil {
		t.Fatal(err)
	}
	if done {
		t.Error("changed file should not be skipped")
	}
}

// TestHashFileStable verifies identical content hashes identically and
// different content does not.
func TestHashFileStable(t *testing.T) {
	dir := t.TempDir()
	a := writeGPX(t, dir, "a.gpx", sampleGPX)
	b := writeGPX(t, dir, "b.gpx", sampleGPX)
	c := writeGPX(t, dir, "c.gpx", sampleGPX+" ")

	ha, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	hc, err := HashFile(c)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("identical content should hash identically")
	}
	if ha == hc {
		t.Error("different content should hash differently")
	}
}

// TestImportSkipsViaState verifies that a dry-run pass with state still
// skips files already recorded there.
func TestImportSkipsViaState(t *testing.T) {
	dir := t.TempDir()
	path := writeGPX(t, dir, "run1.gpx", sampleGPX)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := state.MarkImported("run1.gpx", info.Size(), hash); err != nil {
		t.Fatal(err)
	}

	imp := New(nil, state, 1, slog.Default(), true)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.FilesSkipped)
	}
	if stats.FilesProcessed != 0 {
		t.Errorf("processed = %d, want 0", stats.FilesProcessed)
	}
}
