// Package llmplan implements the LLM decision layer: prompt assembly, an
// ordered provider fallback chain, and heuristic fallback plan generation
// (spec.md §4.7). The core stream never consumes RNG so that determinism
// under heuristic fallback is preserved (spec.md §9); an adapter that needs
// its own randomness must own a separate child generator.
package llmplan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/environment"
)

// PlanRequest is the per-day query sent to the LLM decision core. Agents
// are fully detached snapshots (see agentstate.CloneAll).
type PlanRequest struct {
	ScenarioName string
	DisplayName  string
	Season       config.SeasonName
	Resources    environment.ResourceLevel
	Tasks        []config.TaskConfig
	Agents       []*agentstate.AgentState
	PlanTemplate string
}

// PlanItem is one ordering/allocation suggestion from the LLM or the
// heuristic fallback.
type PlanItem struct {
	Intent    string `json:"intent"`
	Rationale string `json:"rationale"`
	Provider  string `json:"provider"`
}

// PlanResponse is the per-day answer returned to the orchestrator.
type PlanResponse struct {
	Items []PlanItem `json:"items"`
}

// BuildPrompt assembles the prompt text from scenario name, season,
// resource summary (two decimals), and a joined task summary suffixed by
// the scenario's configured plan template.
func BuildPrompt(req PlanRequest) string {
	var taskLines []string
	for _, t := range req.Tasks {
		taskLines = append(taskLines, fmt.Sprintf("%s (%s, needs %d-%d)", t.ID, t.Category, t.MinParticipants, t.RecommendedParticipants))
	}

	return fmt.Sprintf(
		"Scenario: %s. Season: %s. Resources: plants=%.2f, smallGame=%.2f, largeGame=%.2f. Tasks: %s. %s",
		req.DisplayName, req.Season,
		req.Resources.Plants, req.Resources.SmallGame, req.Resources.LargeGame,
		strings.Join(taskLines, "; "),
		req.PlanTemplate,
	)
}

// Adapter is one LLM backend capability object: isEnabled + generatePlan,
// keyed by provider name. Modeled as an ordered collection rather than a
// singleton (spec.md §9) so new backends can be appended without touching
// call sites.
type Adapter interface {
	Provider() string
	Enabled() bool
	GeneratePlan(ctx context.Context, req PlanRequest) (PlanResponse, error)
}

// Core walks an ordered adapter list, falling back to a heuristic plan when
// every enabled adapter fails or none are enabled.
type Core struct {
	adapters []Adapter
}

// New builds a Core with the given adapters tried in order.
func New(adapters ...Adapter) *Core {
	return &Core{adapters: adapters}
}

// Plan tries each enabled adapter in order; on any failure the next enabled
// adapter is tried. Transport failures never propagate to the caller —
// they are swallowed and logged, and heuristic fallback always succeeds.
func (c *Core) Plan(ctx context.Context, req PlanRequest) PlanResponse {
	for _, a := range c.adapters {
		if !a.Enabled() {
			continue
		}
		slog.Debug("llm plan start", "provider", a.Provider())
		resp, err := a.GeneratePlan(ctx, req)
		if err != nil {
			slog.Debug("llm plan error", "provider", a.Provider(), "error", err)
			continue
		}
		slog.Debug("llm plan success", "provider", a.Provider())
		return resp
	}
	return heuristicFallback(req)
}

func heuristicFallback(req PlanRequest) PlanResponse {
	if len(req.Tasks) == 0 {
		return PlanResponse{Items: []PlanItem{
			{Intent: "idle_day", Rationale: "heuristic_allocation", Provider: "heuristic"},
		}}
	}

	items := make([]PlanItem, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		items = append(items, PlanItem{
			Intent:    fmt.Sprintf("allocate %d participants to %s", t.RecommendedParticipants, t.ID),
			Rationale: "heuristic_allocation",
			Provider:  "heuristic",
		})
	}
	return PlanResponse{Items: items}
}

// OrderTasksByPlan assigns each task its minimum plan-item index whose
// intent (lowercased) contains the task's lowercased id, sorting unmatched
// tasks after matched ones; ties keep their original relative order
// (spec.md §4.7). Ordering is advisory — the planner still enforces
// min/recommended participants.
func OrderTasksByPlan(tasks []config.TaskConfig, resp PlanResponse) []config.TaskConfig {
	rank := make([]int, len(tasks))
	for i, t := range tasks {
		rank[i] = len(resp.Items) // default: sorts after all matched tasks
		needle := strings.ToLower(t.ID)
		for idx, item := range resp.Items {
			if strings.Contains(strings.ToLower(item.Intent), needle) {
				if idx < rank[i] {
					rank[i] = idx
				}
			}
		}
	}

	ordered := make([]config.TaskConfig, len(tasks))
	copy(ordered, tasks)
	indices := make([]int, len(tasks))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return rank[indices[i]] < rank[indices[j]]
	})

	out := make([]config.TaskConfig, len(tasks))
	for i, idx := range indices {
		out[i] = ordered[idx]
	}
	return out
}
