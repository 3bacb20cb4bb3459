// Package orchestrator ties the environment, planner, cognition engine,
// social network, and LLM decision core together into the per-day
// simulation step, and owns the serialize/restore lifecycle of a run
// (spec.md §4.8).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/cognition"
	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/distributions"
	"github.com/talgya/cooperationsim/internal/environment"
	"github.com/talgya/cooperationsim/internal/llmplan"
	"github.com/talgya/cooperationsim/internal/network"
	"github.com/talgya/cooperationsim/internal/rng"
	"github.com/talgya/cooperationsim/internal/tasks"
)

var camps = [3]string{"Camp-A", "Camp-B", "Camp-C"}

// SimulationState is the single serializable snapshot a run resumes from.
//
// The main RNG stream drives the planner and agent initialization; a second, independently-seeded stream drives the
// environment exclusively. Both seeds are persisted and both are restored
// by FromState — resolving the "environmentRngSeed never read back"
// ambiguity by making the two-stream design symmetric rather than
// write-only.
type SimulationState struct {
	Environment        environment.State        `json:"environment"`
	Agents              []*agentstate.AgentState `json:"agents"`
	Network             network.State            `json:"network"`
	RNGSeed             uint32                   `json:"rngSeed"`
	EnvironmentRNGSeed  uint32                   `json:"environmentRngSeed"`
}

// TaskAssignment is one derived, non-persisted per-day output describing a
// single task's execution outcome.
type TaskAssignment struct {
	TaskID       string              `json:"taskId"`
	Category     config.TaskCategory `json:"category"`
	Participants []int               `json:"participants"`
	Success      bool                `json:"success"`
	Reward       float64             `json:"reward"`
	Shares       map[int]float64     `json:"shares"`
}

// DailyMetrics is the six aggregate scalars describing one simulated day.
type DailyMetrics struct {
	CooperationRate      float64 `json:"cooperationRate"`
	EnergyBalance        float64 `json:"energyBalance"`
	RiskIncidents        int     `json:"riskIncidents"`
	InequalityIndex      float64 `json:"inequalityIndex"`
	NetworkAssortativity float64 `json:"networkAssortativity"`
	NetworkReciprocity   float64 `json:"networkReciprocity"`
}

// SimulationLogEntry is one structured event surfaced to the caller for a
// given day.
type SimulationLogEntry struct {
	Day     int    `json:"day"`
	AgentID *int   `json:"agentId,omitempty"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
	Detail  string `json:"detail,omitempty"`
}

// CausalLink records one inferred cause→effect relationship surfaced for a
// day's narrative explanation (e.g. "low large-game yield" → "hunting
// task skipped").
type CausalLink struct {
	Day    int    `json:"day"`
	Cause  string `json:"cause"`
	Effect string `json:"effect"`
}

// SimulationStepResult is the full per-day answer returned by StepDay.
type SimulationStepResult struct {
	NewState     SimulationState        `json:"newState"`
	Assignments  []TaskAssignment       `json:"assignments"`
	Metrics      DailyMetrics           `json:"metrics"`
	Logs         []SimulationLogEntry   `json:"logs"`
	CausalGraph  []CausalLink           `json:"causalGraph"`
	NetworkStats network.Stats          `json:"networkStats"`
}

// Simulation is a single run instance. It owns its RNG streams exclusively;
// sharing one Simulation's state across goroutines is not supported — the
// core is single-threaded and cooperative (spec.md §5).
type Simulation struct {
	cfg    *config.ScenarioConfig
	rng    *rng.RNG
	envRNG *rng.RNG

	env       *environment.Environment
	net       *network.Network
	planner   *tasks.Planner
	cognition *cognition.Engine
	llm       *llmplan.Core

	agents     []*agentstate.AgentState
	agentIndex map[int]*agentstate.AgentState
}

// Initialize builds a new Simulation at day 0 from a scenario config and a
// single entry seed. The entry seed deterministically derives both the
// main and environment RNG streams.
func Initialize(cfg *config.ScenarioConfig, seed uint32, llmCore *llmplan.Core) *Simulation {
	main := rng.New(seed)
	envSeed := main.NextSeed()
	envRNG := rng.New(envSeed)

	sim := &Simulation{
		cfg:       cfg,
		rng:       main,
		envRNG:    envRNG,
		env:       environment.New(cfg),
		planner:   tasks.New(cfg.Hazards),
		cognition: cognition.New(cfg.Cognition),
		llm:       llmCore,
	}

	sim.agents = sim.initAgents()
	sim.agentIndex = indexAgents(sim.agents)

	campMembership := make(map[int]string, len(sim.agents))
	for _, a := range sim.agents {
		campMembership[a.ID] = a.CampID
	}
	sim.net = network.New(cfg.Network.Decay, campMembership)

	return sim
}

func (s *Simulation) initAgents() []*agentstate.AgentState {
	pop := s.cfg.AgentPopulation
	energy := s.cfg.Defaults.DailyEnergyNeed * 1.2
	emotion := agentstate.Emotion{
		Valence: s.cfg.Cognition.Emotion.BaselineValence,
		Arousal: s.cfg.Cognition.Emotion.BaselineArousal,
		Mood:    0,
	}

	skillNames := make([]string, 0, len(pop.SkillProfiles))
	for name := range pop.SkillProfiles {
		skillNames = append(skillNames, name)
	}
	sort.Strings(skillNames)

	out := make([]*agentstate.AgentState, 0, pop.Size)
	for i := 0; i < pop.Size; i++ {
		id := i + 1

		// Draw skills in sorted name order so the RNG call sequence does not
		// depend on map iteration order.
		skillset := make(map[string]float64, len(pop.SkillProfiles))
		for _, name := range skillNames {
			profile := pop.SkillProfiles[name]
			skillset[name] = distributions.Clamp(distributions.Normal(s.rng, profile.Mean, profile.Std), 0, 1.2)
		}

		var prefs agentstate.Preferences
		for p := range prefs {
			prefs[p] = distributions.Clamp01(distributions.Normal(s.rng, 0.5, 0.15))
		}

		alpha := distributions.Clamp(distributions.Normal(s.rng, pop.SocialPreferences.AlphaMean, pop.SocialPreferences.AlphaStd), 0, 10)
		beta := distributions.Clamp(distributions.Normal(s.rng, pop.SocialPreferences.BetaMean, pop.SocialPreferences.BetaStd), 0, 10)

		out = append(out, &agentstate.AgentState{
			ID:     id,
			Name:   fmt.Sprintf("agent-%d", id),
			CampID: camps[i%len(camps)],

			Energy:     energy,
			HungerDebt: 0,

			Emotion: emotion,
			FehrSchmidt: agentstate.FehrSchmidt{
				Alpha:            alpha,
				Beta:             beta,
				ReputationWeight: pop.SocialPreferences.ReputationWeight,
				NormPenalty:      pop.SocialPreferences.NormPenalty,
			},
			Reputation: 0.5,

			Skillset:    skillset,
			Preferences: prefs,

			SemanticMemory:    agentstate.SemanticMemory{ResourceExpectations: map[string]float64{}},
			SocialMemory:      nil,
			EpisodicMemory:    nil,
			LastReflectionDay: -1,
			LastActions:       nil,
		})
	}
	return out
}

func indexAgents(agents []*agentstate.AgentState) map[int]*agentstate.AgentState {
	idx := make(map[int]*agentstate.AgentState, len(agents))
	for _, a := range agents {
		idx[a.ID] = a
	}
	return idx
}

func (s *Simulation) seasonName() config.SeasonName {
	state := s.env.State()
	if len(s.cfg.Seasons) == 0 {
		return config.Spring
	}
	return s.cfg.Seasons[state.SeasonIndex%len(s.cfg.Seasons)].Name
}

// StepDay advances the run by one day: it calls the LLM decision core (the
// run's sole suspension point), then performs all other state mutation
// synchronously (spec.md §5).
func (s *Simulation) StepDay(ctx context.Context) SimulationStepResult {
	req := llmplan.PlanRequest{
		ScenarioName: s.cfg.Name,
		DisplayName:  s.cfg.DisplayName,
		Season:       s.seasonName(),
		Resources:    s.env.State().ResourceLevel,
		Tasks:        s.cfg.Tasks,
		Agents:       agentstate.CloneAll(s.agents),
		PlanTemplate: s.cfg.LLM.PlanTemplate,
	}
	planResponse := s.llm.Plan(ctx, req)
	orderedTasks := llmplan.OrderTasksByPlan(s.cfg.Tasks, planResponse)

	s.env.Tick(s.envRNG)
	nextDay := s.env.State().Day

	executions := s.planner.AssignTasks(s.rng, s.agents, s.env.State().ResourceLevel, orderedTasks)

	logs := s.applyExecutions(executions, nextDay)

	metrics := tasks.EvaluateCooperation(executions, s.agentIndex)
	netStats := s.net.ComputeStats()

	dailyMetrics := DailyMetrics{
		CooperationRate:      metrics.CooperationRate,
		EnergyBalance:        metrics.EnergyBalance,
		RiskIncidents:        metrics.RiskIncidents,
		InequalityIndex:      metrics.InequalityIndex,
		NetworkAssortativity: netStats.Assortativity,
		NetworkReciprocity:   netStats.Reciprocity,
	}

	assignments := make([]TaskAssignment, len(executions))
	for i, ex := range executions {
		assignments[i] = TaskAssignment{
			TaskID:       ex.TaskID,
			Category:     ex.Category,
			Participants: ex.Participants,
			Success:      ex.Success,
			Reward:       ex.TotalReward,
			Shares:       ex.Shares,
		}
	}

	slog.Debug("step completed", "day", nextDay, "executions", len(executions), "cooperationRate", dailyMetrics.CooperationRate)

	// Draw the resume seed and restart the main stream from it, so the
	// serialized rngSeed is exactly the state the next step starts from.
	s.rng = rng.New(s.rng.NextSeed())

	return SimulationStepResult{
		NewState:     s.Serialize(),
		Assignments:  assignments,
		Metrics:      dailyMetrics,
		Logs:         logs,
		CausalGraph:  nil,
		NetworkStats: netStats,
	}
}

// applyExecutions applies one day's executions to agent energy, cognition,
// reputation, pairwise interactions, and network reinforcement, then runs
// reflection for every agent (spec.md §4.8 step 5).
func (s *Simulation) applyExecutions(executions []tasks.Execution, day int) []SimulationLogEntry {
	s.net.ApplyDecay()

	var logs []SimulationLogEntry

	for _, ex := range executions {
		baseShare := ex.BaseSharePerAgent
		injured := make(map[int]bool, len(ex.Injuries))
		for _, id := range ex.Injuries {
			injured[id] = true
		}

		for _, id := range ex.Participants {
			agent, ok := s.agentIndex[id]
			if !ok {
				continue
			}
			share := ex.Shares[id]
			cost := ex.EnergyCosts[id]
			dailyNeed := s.cfg.Defaults.DailyEnergyNeed

			agent.Energy = max(0, agent.Energy+share-cost-dailyNeed)
			if agent.Energy < 0.5*dailyNeed {
				agent.HungerDebt += 0.5*dailyNeed - agent.Energy
			}

			if injured[id] {
				agent.Energy = max(0, agent.Energy-0.2)
			}
		}

		for _, id := range ex.Participants {
			agent, ok := s.agentIndex[id]
			if !ok {
				continue
			}

			if injured[id] {
				s.cognition.ApplyStimulus(agent, day, cognition.Stimulus{
					Goal:    -0.5,
					Arousal: 0.6,
					Label:   "injured",
				})
			}

			normDeviation := (ex.Shares[id] - baseShare) / max(baseShare, 0.001)
			normAlignment := distributions.Clamp(normDeviation+agent.FehrSchmidt.NormPenalty, -1, 1)

			goalComponent := -1.0
			if ex.Success {
				goalComponent = 1.0
			}
			s.cognition.ApplyStimulus(agent, day, cognition.Stimulus{
				Goal:    goalComponent,
				Norm:    normAlignment,
				Arousal: 0.3,
				Label:   ex.TaskID,
			})

			if ex.Success {
				agent.Reputation = distributions.Clamp01(agent.Reputation + 0.05)
			} else {
				agent.Reputation = distributions.Clamp01(agent.Reputation - 0.03)
			}

			reciprocityDelta := -0.1
			if ex.Success {
				reciprocityDelta = 0.1
			}
			for _, partnerID := range ex.Participants {
				if partnerID == id {
					continue
				}
				s.cognition.RegisterInteraction(agent, partnerID, day, reciprocityDelta, ex.Shares[id], baseShare, normAlignment)
				s.net.ReinforceInteraction(id, partnerID, 0.2+ex.Shares[id]*0.05)
			}
		}
	}

	for _, agent := range s.agents {
		if reflection := s.cognition.Reflect(agent, day); reflection != "" {
			id := agent.ID
			logs = append(logs, SimulationLogEntry{
				Day:     day,
				AgentID: &id,
				Type:    "reflection",
				Summary: reflection,
			})
		}
	}

	return logs
}

// Serialize returns a fully detached snapshot of the current run state.
func (s *Simulation) Serialize() SimulationState {
	return SimulationState{
		Environment:        s.env.State(),
		Agents:             agentstate.CloneAll(s.agents),
		Network:            s.net.State(),
		RNGSeed:            s.rng.State(),
		EnvironmentRNGSeed: s.envRNG.State(),
	}
}

// FromState reconstructs a Simulation from a previously serialized
// SimulationState, restoring both RNG streams.
func FromState(cfg *config.ScenarioConfig, state SimulationState, llmCore *llmplan.Core) *Simulation {
	main := rng.New(0)
	main.Restore(state.RNGSeed)
	envRNG := rng.New(0)
	envRNG.Restore(state.EnvironmentRNGSeed)

	agents := agentstate.CloneAll(state.Agents)

	sim := &Simulation{
		cfg:        cfg,
		rng:        main,
		envRNG:     envRNG,
		env:        environment.FromState(cfg, state.Environment),
		net:        network.FromState(state.Network),
		planner:    tasks.New(cfg.Hazards),
		cognition:  cognition.New(cfg.Cognition),
		llm:        llmCore,
		agents:     agents,
		agentIndex: indexAgents(agents),
	}
	return sim
}
