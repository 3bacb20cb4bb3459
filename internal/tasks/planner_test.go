package tasks

import (
	"math"
	"testing"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/environment"
	"github.com/talgya/cooperationsim/internal/rng"
)

func agentWithSkill(id int, hunting float64) *agentstate.AgentState {
	return &agentstate.AgentState{
		ID:       id,
		Name:     "agent",
		Skillset: map[string]float64{"hunting": hunting, "gathering": 0.5, "crafting": 0.5},
	}
}

// TestEqualShare implements spec.md §8 end-to-end scenario 2.
func TestEqualShare(t *testing.T) {
	yield := 4.0
	task := config.TaskConfig{
		ID:                  "forage1",
		Category:            config.CategoryForaging,
		SuccessProbability:  1.0,
		YieldPerParticipant: &yield,
		Norm:                config.NormEqualShare,
		MinParticipants:     2,
		RecommendedParticipants: 2,
	}

	agents := []*agentstate.AgentState{agentWithSkill(1, 0), agentWithSkill(2, 0)}
	planner := New(config.HazardConfig{})
	r := rng.New(1)

	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{Plants: 5}, []config.TaskConfig{task})

	if len(executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(executions))
	}
	ex := executions[0]
	if !ex.Success {
		t.Fatalf("expected success with successProbability 1.0")
	}
	for _, id := range ex.Participants {
		if math.Abs(ex.Shares[id]-4.0) > 1e-9 {
			t.Fatalf("share for agent %d = %v, want 4.0", id, ex.Shares[id])
		}
	}

	byID := map[int]*agentstate.AgentState{1: agents[0], 2: agents[1]}
	metrics := EvaluateCooperation(executions, byID)
	if metrics.CooperationRate != 1.0 {
		t.Fatalf("CooperationRate = %v, want 1.0", metrics.CooperationRate)
	}
}

// TestHuntingSkillGate implements spec.md §8 end-to-end scenario 3.
func TestHuntingSkillGate(t *testing.T) {
	task := config.TaskConfig{
		ID:                      "hunt",
		Category:                config.CategoryHunting,
		SuccessProbability:      0.5,
		MinParticipants:         2,
		RecommendedParticipants: 3,
		Norm:                    config.NormEqualShare,
	}

	agents := []*agentstate.AgentState{
		agentWithSkill(1, 0.1),
		agentWithSkill(2, 0.5),
		agentWithSkill(3, 0.9),
	}

	planner := New(config.HazardConfig{})
	r := rng.New(2)
	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{SmallGame: 2, LargeGame: 1}, []config.TaskConfig{task})

	// The hunt proceeds with agents 2 and 3; the rejected agent 1 is left
	// over and falls into the idle fallback execution.
	if len(executions) != 2 {
		t.Fatalf("expected the hunt plus the idle fallback execution, got %d", len(executions))
	}
	ex := executions[0]
	if ex.TaskID != "hunt" {
		t.Fatalf("expected the hunt to proceed first, got %q", ex.TaskID)
	}
	if executions[1].TaskID != idleTaskID || len(executions[1].Participants) != 1 || executions[1].Participants[0] != 1 {
		t.Fatalf("expected agent 1 alone in the idle fallback, got %+v", executions[1])
	}
	for _, id := range ex.Participants {
		if id == 1 {
			t.Fatalf("agent 1 (hunting skill 0.1) should have been rejected")
		}
	}
	if len(ex.Participants) != 2 {
		t.Fatalf("expected 2 participants (agents 2 and 3), got %d", len(ex.Participants))
	}
}

func TestTaskSkippedBelowMinParticipants(t *testing.T) {
	task := config.TaskConfig{
		ID:                      "hunt",
		Category:                config.CategoryHunting,
		MinParticipants:         3,
		RecommendedParticipants: 3,
		Norm:                    config.NormEqualShare,
	}
	agents := []*agentstate.AgentState{agentWithSkill(1, 0.1), agentWithSkill(2, 0.1)}

	planner := New(config.HazardConfig{})
	r := rng.New(3)
	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{SmallGame: 1}, []config.TaskConfig{task})

	// Task is skipped (no hunters qualify); everyone falls into idle fallback.
	if len(executions) != 1 {
		t.Fatalf("expected only the idle fallback execution, got %d", len(executions))
	}
	if executions[0].TaskID != idleTaskID {
		t.Fatalf("expected idle fallback task, got %q", executions[0].TaskID)
	}
}

func TestCollectivePenaltyZeroesRewards(t *testing.T) {
	yield := 10.0
	task := config.TaskConfig{
		ID:                      "watch",
		Category:                config.CategoryPublicGood,
		SuccessProbability:      1.0,
		YieldPerParticipant:     &yield,
		Norm:                    config.NormCollectivePenalty,
		MinParticipants:         1,
		RecommendedParticipants: 2,
	}
	agents := []*agentstate.AgentState{agentWithSkill(1, 0), agentWithSkill(2, 0)}
	planner := New(config.HazardConfig{})
	r := rng.New(4)
	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{Plants: 1}, []config.TaskConfig{task})

	for _, id := range executions[0].Participants {
		if executions[0].Shares[id] != 0 {
			t.Fatalf("collective_penalty share for %d = %v, want 0", id, executions[0].Shares[id])
		}
	}
}

func TestFehrSchmidtUtilityEqualShares(t *testing.T) {
	u := FehrSchmidtUtility(5, []float64{5, 5, 5}, 0.7, 1.2)
	if u != 5 {
		t.Fatalf("FehrSchmidtUtility with equal shares = %v, want 5", u)
	}
}

func TestKeyContributorRewardSplitsBonusAndBase(t *testing.T) {
	yield := 30.0
	task := config.TaskConfig{
		ID:                      "craft",
		Category:                config.CategoryPublicGood,
		SuccessProbability:      1.0,
		YieldPerParticipant:     &yield,
		Norm:                    config.NormKeyContributor,
		MinParticipants:         1,
		RecommendedParticipants: 3,
	}
	agents := []*agentstate.AgentState{
		{ID: 1, Skillset: map[string]float64{"crafting": 0.9}},
		{ID: 2, Skillset: map[string]float64{"crafting": 0.5}},
		{ID: 3, Skillset: map[string]float64{"crafting": 0.2}},
	}
	planner := New(config.HazardConfig{})
	r := rng.New(5)
	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{Plants: 1}, []config.TaskConfig{task})

	ex := executions[0]
	total := 0.0
	for _, s := range ex.Shares {
		total += s
	}
	if math.Abs(total-ex.TotalReward) > 1e-6 {
		t.Fatalf("shares sum %v, want total reward %v", total, ex.TotalReward)
	}
	if ex.Shares[1] <= ex.Shares[2] {
		t.Fatalf("top contributor should receive more than a mid contributor")
	}
}

func TestIdleFallbackAssignsRemainingAgents(t *testing.T) {
	task := config.TaskConfig{
		ID:                      "forage1",
		Category:                config.CategoryForaging,
		MinParticipants:         1,
		RecommendedParticipants: 1,
		Norm:                    config.NormEqualShare,
	}
	agents := []*agentstate.AgentState{agentWithSkill(1, 0), agentWithSkill(2, 0), agentWithSkill(3, 0)}
	planner := New(config.HazardConfig{})
	r := rng.New(6)
	executions := planner.AssignTasks(r, agents, environment.ResourceLevel{Plants: 1}, []config.TaskConfig{task})

	foundIdle := false
	idleCount := 0
	for _, ex := range executions {
		if ex.TaskID == idleTaskID {
			foundIdle = true
			idleCount = len(ex.Participants)
		}
	}
	if !foundIdle {
		t.Fatalf("expected an idle-fallback execution for leftover agents")
	}
	if idleCount != 2 {
		t.Fatalf("expected 2 idle agents, got %d", idleCount)
	}
}
