package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vught/pacekeeper/internal/models"
	"github.com/vught/pacekeeper/internal/plangen"
	"github.com/vught/pacekeeper/internal/training"
	"github.com/vught/pacekeeper/internal/vdot"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// parseClock parses "H:MM:SS" or "MM:SS" into a duration.
func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want H:MM:SS or MM:SS", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time component %q", p)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// --- Tool definitions ---

var toolCalculatePaceZones = mcp.NewTool("calculate_pace_zones",
	mcp.WithDescription("Calculate the six training pace zones (recovery through repetition) from a recent race result or a known lactate threshold pace. Provide either race_distance + finish_time, or threshold_pace."),
	mcp.WithString("race_distance", mcp.Description("Race distance"), mcp.Enum("5k", "10k", "half_marathon", "marathon")),
	mcp.WithString("finish_time", mcp.Description("Race finish time (H:MM:SS or MM:SS)")),
	mcp.WithString("threshold_pace", mcp.Description("Lactate threshold pace per km (M:SS)")),
)

var toolListMethodologies = mcp.NewTool("list_methodologies",
	mcp.WithDescription("List available training plan methodologies with the plan distances and week ranges each supports."),
)

var toolPreviewTrainingPlan = mcp.NewTool("preview_training_plan",
	mcp.WithDescription("Generate a week-by-week training plan preview without saving it. Duration is derived from the race date."),
	mcp.WithString("plan_type", mcp.Required(), mcp.Description("Race distance to train for"), mcp.Enum("half_marathon", "full_marathon")),
	mcp.WithString("race_date", mcp.Required(), mcp.Description("Race date (YYYY-MM-DD)")),
	mcp.WithString("goal_time", mcp.Description("Goal finish time (H:MM:SS)")),
	mcp.WithString("methodology", mcp.Description("Plan methodology. Defaults to 'custom'.")),
)

var toolGetTrainingPlan = mcp.NewTool("get_training_plan",
	mcp.WithDescription("Fetch a saved training plan with all weeks and scheduled workouts."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID")),
)

var toolGetCompletedWorkouts = mcp.NewTool("get_completed_workouts",
	mcp.WithDescription("Query completed runs in a date range. Returns distance, duration, average pace, heart rate, and elevation per run."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetTrainingLoad = mcp.NewTool("get_training_load",
	mcp.WithDescription("Daily training stress history with fitness (CTL), fatigue (ATL), and form (TSB), plus the current form status."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 42 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("The user's personal records over the standard distances (5k, 10k, half marathon, marathon)."),
)

// --- Tool handlers ---

func (h *handlers) calculatePaceZones(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result *vdot.Result
	var err error

	if tp := req.GetString("threshold_pace", ""); tp != "" {
		pace, perr := models.ParsePace(tp)
		if perr != nil {
			return mcp.NewToolResultError("invalid threshold_pace: " + perr.Error()), nil
		}
		result, err = vdot.FromThresholdPace(pace)
	} else {
		distance := req.GetString("race_distance", "")
		if distance == "" {
			return mcp.NewToolResultError("provide race_distance + finish_time or threshold_pace"), nil
		}
		finish, perr := parseClock(req.GetString("finish_time", ""))
		if perr != nil {
			return mcp.NewToolResultError("invalid finish_time: " + perr.Error()), nil
		}
		result, err = vdot.FromRaceResult(distance, finish)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) listMethodologies(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type methodology struct {
		ID         string            `json:"id"`
		Name       string            `json:"name"`
		PlanTypes  []models.PlanType `json:"plan_types"`
		WeekBounds map[string][2]int `json:"week_bounds"`
	}
	var out []methodology
	for _, g := range h.registry.All() {
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

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewTrainingPlan(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planType, err := req.RequireString("plan_type")
	if err != nil {
		return mcp.NewToolResultError("plan_type is required"), nil
	}
	raceDateStr, err := req.RequireString("race_date")
	if err != nil {
		return mcp.NewToolResultError("race_date is required"), nil
	}
	raceDate, err := time.Parse("2006-01-02", raceDateStr)
	if err != nil {
		return mcp.NewToolResultError("invalid race_date: want YYYY-MM-DD"), nil
	}

	cfg := plangen.Config{
		PlanType: models.PlanType(planType),
		RaceDate: raceDate,
	}
	if gt := req.GetString("goal_time", ""); gt != "" {
		goal, perr := parseClock(gt)
		if perr != nil {
			return mcp.NewToolResultError("invalid goal_time: " + perr.Error()), nil
		}
		cfg.GoalTime = goal
	}

	gen, err := h.registry.Resolve(req.GetString("methodology", "custom"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	plan, err := gen.Generate(cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id is required"), nil
	}
	planID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid plan_id"), nil
	}

	plan, err := h.db.GetPlan(ctx, planID, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCompletedWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.db.CompletedWorkoutsBetween(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		h.log.Error("mcp get_completed_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endStr := req.GetString("end", "")
	startStr := req.GetString("start", "")

	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
		}
	} else {
		start = end.AddDate(0, 0, -training.CTLDecayDays)
	}

	uid := UserIDFromContext(ctx)
	history, err := h.db.LoadHistory(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_training_load", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := map[string]any{"days": history}
	if len(history) > 0 {
		current := history[len(history)-1]
		status, advice := training.FormStatus(current.TSB)
		out["current"] = current
		out["form_status"] = status
		out["form_advice"] = advice
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.db.ListRecords(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
