package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/plangen"
)

type generatePlanRequest struct {
	Methodology string                  `json:"methodology,omitempty"` // defaults to "custom"
	PlanType    models.PlanType         `json:"plan_type"`
	RaceDate    string                  `json:"race_date"`            // "2006-01-02"
	GoalTime    string                  `json:"goal_time,omitempty"`  // "H:MM:SS"
	Name        string                  `json:"name,omitempty"`
	Fitness     *plangen.FitnessProfile `json:"fitness,omitempty"`
	Skeleton    []plangen.WeekOutline   `json:"skeleton,omitempty"`
	Preview     bool                    `json:"preview,omitempty"` // generate without persisting
}

func (req generatePlanRequest) toConfig(userID int) (plangen.Config, error) {
	cfg := plangen.Config{
		UserID:   userID,
		PlanType: req.PlanType,
		Name:     req.Name,
		Fitness:  req.Fitness,
		Skeleton: req.Skeleton,
	}
	raceDate, err := time.Parse("2006-01-02", req.RaceDate)
	if err != nil {
		return cfg, models.Validationf("race_date", models.ReasonInvalidValue,
			"invalid race date %q: want YYYY-MM-DD", req.RaceDate)
	}
	cfg.RaceDate = raceDate
	if req.GoalTime != "" {
		goal, err := parseFinishTime(req.GoalTime)
		if err != nil {
			return cfg, models.Validationf("goal_time", models.ReasonInvalidValue,
				"invalid goal time %q: want H:MM:SS", req.GoalTime)
		}
		cfg.GoalTime = goal
	}
	return cfg, nil
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	methodology := req.Methodology
	if methodology == "" {
		methodology = "custom"
	}
	gen, err := s.registry.Resolve(methodology)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg, err := req.toConfig(0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := gen.Generate(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Preview {
		writeJSON(w, http.StatusOK, plan)
		return
	}

	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	stored, err := s.db.InsertPlan(r.Context(), userID, plan)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plans, err := s.db.ListPlans(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid plan ID")
		return
	}
	userID, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.db.GetPlan(r.Context(), planID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
