package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/vdot"
)

// calculateZonesRequest accepts exactly one of the three inputs: a named
// race result, an arbitrary-distance race result, or a threshold pace.
type calculateZonesRequest struct {
	RaceDistance  string      `json:"race_distance,omitempty"`
	RaceKm        float64     `json:"race_km,omitempty"`
	FinishTime    string      `json:"finish_time,omitempty"` // "H:MM:SS" or "MM:SS"
	ThresholdPace models.Pace `json:"threshold_pace,omitempty"`
	Persist       bool        `json:"persist"`
}

type calculateZonesResponse struct {
	VDOT   float64           `json:"vdot"`
	Source string            `json:"source"`
	Zones  []models.PaceZone `json:"zones"`
	Saved  bool              `json:"saved"`
}

func (s *Server) handleCalculateZones(w http.ResponseWriter, r *http.Request) {
	var req calculateZonesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	result, err := calculate(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := calculateZonesResponse{VDOT: result.VDOT, Source: result.Source}
	for _, z := range result.Zones {
		resp.Zones = append(resp.Zones, models.PaceZone{
			Name:        z.Name,
			MinPace:     z.MinPace,
			MaxPace:     z.MaxPace,
			Description: z.Description,
			ColorHex:    z.ColorHex,
		})
	}

	if req.Persist {
		userID, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		saved, err := s.db.ReplacePaceZones(r.Context(), userID, resp.Zones)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Zones = saved
		resp.Saved = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func calculate(req calculateZonesRequest) (*vdot.Result, error) {
	if req.ThresholdPace > 0 {
		return vdot.FromThresholdPace(req.ThresholdPace)
	}

	finish, err := parseFinishTime(req.FinishTime)
	if err != nil {
		return nil, models.Validationf("finish_time", models.ReasonInvalidValue,
			"invalid finish time %q: want H:MM:SS or MM:SS", req.FinishTime)
	}
	if req.RaceDistance != "" {
		return vdot.FromRaceResult(req.RaceDistance, finish)
	}
	if req.RaceKm > 0 {
		return vdot.FromRaceDistanceKm(req.RaceKm, finish)
	}
	return nil, models.Validationf("race_distance", models.ReasonInvalidValue,
		"one of race_distance, race_km or threshold_pace is required")
}

// parseFinishTime parses "H:MM:SS" or "MM:SS" into a duration.
func parseFinishTime(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid finish time %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid finish time component %q", p)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

func (s *Server) handleGetZones(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	zones, err := s.db.ActivePaceZones(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

func (s *Server) handleListMethodologies(w http.ResponseWriter, r *http.Request) {
	type methodology struct {
		ID         string            `json:"id"`
		Name       string            `json:"name"`
		PlanTypes  []models.PlanType `json:"plan_types"`
		WeekBounds map[string][2]int `json:"week_bounds"`
	}
	filter := models.PlanType(r.URL.Query().Get("plan_type"))
	if filter != "" && !filter.Valid() {
		s.writeError(w, models.Validationf("plan_type", models.ReasonInvalidValue,
			"unknown plan type %q", filter))
		return
	}
	var out []methodology
	for _, g := range s.registry.All() {
		if filter != "" && !g.Supports(filter) {
			continue
		}
		m := methodology{
			ID:         g.Methodology(),
			Name:       g.DisplayName(),
			WeekBounds: make(map[string][2]int),
		}
		for _, pt := range []models.PlanType{models.PlanHalfMarathon, models.PlanFullMarathon} {
			if g.Supports(pt) {
				m.PlanTypes = append(m.PlanTypes, pt)
				m.WeekBounds[string(pt)] = [2]int{g.MinWeeks(pt), g.MaxWeeks(pt)}
			}
		}
		out = append(out, m)
	}
	writeJSON(w, http.StatusOK, out)
}
