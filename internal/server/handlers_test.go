package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vught/pacekeeper/internal/plangen"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	registry, err := plangen.Default()
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}
	return New(nil, registry, nil, "test-key", slog.Default())
}

// TestCalculateZonesInvalidJSON verifies that malformed request bodies get 400.
func TestCalculateZonesInvalidJSON(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/zones/calculate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestCalculateZonesMissingInput verifies that a request naming no race
// result or threshold pace gets 422 with a reason code.
func TestCalculateZonesMissingInput(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/zones/calculate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["reason"] == "" {
		t.Error("response should carry a reason code")
	}
	if body["field"] == "" {
		t.Error("response should name the offending field")
	}
}

// TestCalculateZonesImplausiblePace verifies the plausibility envelope
// surfaces as 422 with the pace_too_fast reason.
func TestCalculateZonesImplausiblePace(t *testing.T) {
	s := testServer(t)
	body := `{"race_distance":"5k","finish_time":"5:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/zones/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["reason"] != "pace_too_fast" {
		t.Errorf("reason = %q, want %q", resp["reason"], "pace_too_fast")
	}
}

// TestCalculateZonesFromThreshold verifies the happy path without
// persistence: six ordered zones and a VDOT estimate.
func TestCalculateZonesFromThreshold(t *testing.T) {
	s := testServer(t)
	body := `{"threshold_pace":"5:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/zones/calculate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp calculateZonesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Zones) != 6 {
		t.Fatalf("got %d zones, want 6", len(resp.Zones))
	}
	if resp.VDOT <= 0 {
		t.Errorf("VDOT = %v, want > 0", resp.VDOT)
	}
	if resp.Saved {
		t.Error("zones should not be saved without persist")
	}
	for _, z := range resp.Zones {
		if z.MinPace > z.MaxPace {
			t.Errorf("zone %s: min pace %s slower than max pace %s", z.Name, z.MinPace, z.MaxPace)
		}
	}
}

// TestListMethodologies verifies the registry listing includes the
// built-in methodology with its week bounds.
func TestListMethodologies(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/methodologies", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []struct {
		ID         string            `json:"id"`
		PlanTypes  []string          `json:"plan_types"`
		WeekBounds map[string][2]int `json:"week_bounds"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Fatal("expected at least one methodology")
	}
	if out[0].ID != "custom" {
		t.Errorf("id = %q, want %q", out[0].ID, "custom")
	}
	if len(out[0].PlanTypes) != 2 {
		t.Errorf("plan types = %v, want both distances", out[0].PlanTypes)
	}
}

// TestGeneratePlanPreview verifies preview generation end-to-end without
// touching storage.
func TestGeneratePlanPreview(t *testing.T) {
	s := testServer(t)
	raceDate := time.Now().AddDate(0, 0, 7*16+1).Format("2006-01-02")
	body := `{"plan_type":"half_marathon","race_date":"` + raceDate + `","goal_time":"1:45:00","preview":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var plan plangen.Plan
	if err := json.NewDecoder(rec.Body).Decode(&plan); err != nil {
		t.Fatal(err)
	}
	if plan.DurationWeeks != 16 {
		t.Errorf("duration = %d weeks, want 16", plan.DurationWeeks)
	}
	if len(plan.Weeks) != 16 {
		t.Errorf("got %d weeks, want 16", len(plan.Weeks))
	}
}

// TestGeneratePlanUnknownMethodology verifies unknown generators get 404.
func TestGeneratePlanUnknownMethodology(t *testing.T) {
	s := testServer(t)
	raceDate := time.Now().AddDate(0, 0, 7*16+1).Format("2006-01-02")
	body := `{"methodology":"pfitzinger","plan_type":"half_marathon","race_date":"` + raceDate + `","preview":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestGeneratePlanPastRaceDate verifies past race dates get 422 with the
// dedicated reason code.
func TestGeneratePlanPastRaceDate(t *testing.T) {
	s := testServer(t)
	body := `{"plan_type":"half_marathon","race_date":"2020-01-01","preview":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["reason"] != "race_date_not_future" {
		t.Errorf("reason = %q, want %q", resp["reason"], "race_date_not_future")
	}
}

// TestIngestRequiresAPIKey verifies the ingest route sits behind API key auth.
func TestIngestRequiresAPIKey(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/gpx", strings.NewReader("<gpx/>"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestParseFinishTime covers both accepted clock formats.
func TestParseFinishTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"22:00", 22 * time.Minute, true},
		{"1:45:00", time.Hour + 45*time.Minute, true},
		{"0:59", 59 * time.Second, true},
		{"90", 0, false},
		{"1:2:3:4", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, err := parseFinishTime(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("parseFinishTime(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("parseFinishTime(%q) should fail", tt.in)
		}
	}
}
