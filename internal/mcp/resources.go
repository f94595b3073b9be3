package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vught/pacekeeper/internal/training"
)

func (h *handlers) paceZones(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	zones, err := h.db.ActivePaceZones(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(zones)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.db.CompletedWorkoutsBetween(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) trainingLoad(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -training.CTLDecayDays)

	history, err := h.db.LoadHistory(ctx, uid, start, end)
	if err != nil {
		return nil, err
	}

	out := map[string]any{"days": history}
	if len(history) > 0 {
		current := history[len(history)-1]
		status, advice := training.FormStatus(current.TSB)
		out["current"] = current
		out["form_status"] = status
		out["form_advice"] = advice
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
