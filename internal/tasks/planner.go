// Package tasks implements the per-day task planner: role assignment,
// success sampling, fairness-based reward distribution, injury sampling,
// idle fallback, and cooperation-metric aggregation (spec.md §4.4).
package tasks

import (
	"math"
	"sort"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/distributions"
	"github.com/talgya/cooperationsim/internal/environment"
	"github.com/talgya/cooperationsim/internal/rng"
)

const huntingSkillGate = 0.3
const idleTaskID = "camp_maintenance"

// Execution is the outcome of one assigned task on one day.
type Execution struct {
	TaskID                string             `json:"taskId"`
	Category              config.TaskCategory `json:"category"`
	Participants          []int              `json:"participants"`
	Success               bool               `json:"success"`
	TotalReward           float64            `json:"totalReward"`
	Shares                map[int]float64    `json:"shares"`
	EnergyCosts           map[int]float64    `json:"energyCosts"`
	Injuries              []int              `json:"injuries"`
	BaseSharePerAgent     float64            `json:"baseSharePerAgent"`
}

// Planner assigns and executes tasks for one day.
type Planner struct {
	hazards config.HazardConfig
}

// New builds a Planner from a scenario's hazard configuration.
func New(hazards config.HazardConfig) *Planner {
	return &Planner{hazards: hazards}
}

// AssignTasks walks tasks in the given order (possibly LLM-reordered),
// assigning participants, sampling success/injury, and distributing
// rewards, then bulk-assigns any still-idle agents to camp_maintenance.
func (p *Planner) AssignTasks(r *rng.RNG, agents []*agentstate.AgentState, resources environment.ResourceLevel, orderedTasks []config.TaskConfig) []Execution {
	shuffled := make([]*agentstate.AgentState, len(agents))
	copy(shuffled, agents)
	rng.Shuffle(r, shuffled)

	available := make(map[int]*agentstate.AgentState, len(shuffled))
	for _, a := range shuffled {
		available[a.ID] = a
	}

	var executions []Execution

	for _, task := range orderedTasks {
		need := task.RecommendedParticipants
		if len(available) < need {
			need = len(available)
		}
		if need < task.MinParticipants {
			continue
		}

		var participants []*agentstate.AgentState
		for _, a := range shuffled {
			if len(participants) >= need {
				break
			}
			if _, ok := available[a.ID]; !ok {
				continue
			}
			if task.Category == config.CategoryHunting && a.SkillOrDefault("hunting") < huntingSkillGate {
				continue
			}
			participants = append(participants, a)
			delete(available, a.ID)
		}

		if len(participants) < task.MinParticipants {
			for _, a := range participants {
				available[a.ID] = a
			}
			continue
		}

		executions = append(executions, p.execute(r, task, participants, resources))
	}

	if len(available) > 0 {
		var idle []*agentstate.AgentState
		for _, a := range shuffled {
			if _, ok := available[a.ID]; ok {
				idle = append(idle, a)
			}
		}
		if len(idle) > 0 {
			executions = append(executions, idleExecution(idle))
		}
	}

	return executions
}

func idleExecution(idle []*agentstate.AgentState) Execution {
	ids := make([]int, len(idle))
	shares := make(map[int]float64, len(idle))
	costs := make(map[int]float64, len(idle))
	for i, a := range idle {
		ids[i] = a.ID
		shares[a.ID] = 0
		costs[a.ID] = 0
	}
	return Execution{
		TaskID:       idleTaskID,
		Category:     config.CategoryPublicGood,
		Participants: ids,
		Success:      true,
		TotalReward:  0,
		Shares:       shares,
		EnergyCosts:  costs,
	}
}

func resourceLevelForCategory(category config.TaskCategory, resources environment.ResourceLevel) float64 {
	switch category {
	case config.CategoryHunting:
		return resources.SmallGame + resources.LargeGame
	default:
		return resources.Plants
	}
}

func averageSkill(participants []*agentstate.AgentState, key string) float64 {
	if len(participants) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, a := range participants {
		sum += a.SkillOrDefault(key)
	}
	return sum / float64(len(participants))
}

func (p *Planner) execute(r *rng.RNG, task config.TaskConfig, participants []*agentstate.AgentState, resources environment.ResourceLevel) Execution {
	resourceLevel := resourceLevelForCategory(task.Category, resources)
	avgSkill := averageSkill(participants, task.Category.SkillKey())

	resourceTerm := -0.1
	if resourceLevel > 0 {
		resourceTerm = 0.05 * math.Log(1+resourceLevel)
	}

	successProbability := distributions.Clamp01(
		task.SuccessProbability +
			0.05*math.Max(0, float64(len(participants)-task.MinParticipants)) +
			0.1*(avgSkill-0.5) +
			resourceTerm,
	)

	success := r.Next() < successProbability

	totalReward := computeTotalReward(task, len(participants), success)
	shares := distributeShares(task, participants, totalReward)

	baseShare := 0.0
	if len(participants) > 0 {
		baseShare = totalReward / float64(len(participants))
	}

	energyCosts := make(map[int]float64, len(participants))
	injuries := []int{}
	for _, a := range participants {
		huntingSkill := a.SkillOrDefault("hunting")
		cost := task.EnergyCost
		if task.Category == config.CategoryHunting {
			cost *= 1 + (1-huntingSkill)*0.2
		}
		energyCosts[a.ID] = cost

		risk := distributions.Clamp01(task.InjuryRiskMultiplier * p.hazards.Base.Injury)
		multiplier := 1.1
		if success {
			multiplier = 0.7
		}
		if r.Next() < risk*multiplier {
			injuries = append(injuries, a.ID)
		}
	}

	ids := make([]int, len(participants))
	for i, a := range participants {
		ids[i] = a.ID
	}

	return Execution{
		TaskID:            task.ID,
		Category:          task.Category,
		Participants:      ids,
		Success:           success,
		TotalReward:        totalReward,
		Shares:            shares,
		EnergyCosts:       energyCosts,
		Injuries:          injuries,
		BaseSharePerAgent: baseShare,
	}
}

func computeTotalReward(task config.TaskConfig, participantCount int, success bool) float64 {
	if task.YieldPerParticipant != nil {
		if success {
			return *task.YieldPerParticipant * float64(participantCount)
		}
		return 0
	}
	if task.YieldPerParticipantOnSuccess != nil && success {
		return *task.YieldPerParticipantOnSuccess
	}
	return 0
}

func distributeShares(task config.TaskConfig, participants []*agentstate.AgentState, totalReward float64) map[int]float64 {
	shares := make(map[int]float64, len(participants))
	n := len(participants)
	if n == 0 {
		return shares
	}

	switch task.Norm {
	case config.NormCollectivePenalty:
		for _, a := range participants {
			shares[a.ID] = 0
		}

	case config.NormProportionalSkill:
		key := task.Category.SkillKey()
		denom := 0.0
		for _, a := range participants {
			denom += a.SkillOrDefault(key)
		}
		if denom <= 0 {
			denom = float64(n) * 0.5
		}
		for _, a := range participants {
			shares[a.ID] = totalReward * a.SkillOrDefault(key) / denom
		}

	case config.NormKeyContributor:
		key := task.Category.SkillKey()
		bonusPool := 0.25 * totalReward
		basePool := 0.75 * totalReward
		baseShare := basePool / float64(n)

		ranked := make([]*agentstate.AgentState, n)
		copy(ranked, participants)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].SkillOrDefault(key) > ranked[j].SkillOrDefault(key)
		})

		topCount := n / 3
		if topCount < 1 {
			topCount = 1
		}
		bonusShare := bonusPool / float64(topCount)

		for _, a := range participants {
			shares[a.ID] = baseShare
		}
		for i := 0; i < topCount; i++ {
			shares[ranked[i].ID] += bonusShare
		}

	default: // equal_share
		equal := totalReward / float64(n)
		for _, a := range participants {
			shares[a.ID] = equal
		}
	}

	return shares
}

// CooperationMetrics holds the four per-day aggregate scalars derived from
// a day's executions (spec.md §4.4).
type CooperationMetrics struct {
	CooperationRate  float64 `json:"cooperationRate"`
	EnergyBalance    float64 `json:"energyBalance"`
	RiskIncidents    int     `json:"riskIncidents"`
	InequalityIndex  float64 `json:"inequalityIndex"`
}

// EvaluateCooperation aggregates a day's executions into cooperation
// metrics. agentsByID is used to look up each participant's Fehr-Schmidt
// parameters for the inequality index.
func EvaluateCooperation(executions []Execution, agentsByID map[int]*agentstate.AgentState) CooperationMetrics {
	if len(executions) == 0 {
		return CooperationMetrics{}
	}

	cooperative := 0
	energyBalance := 0.0
	riskIncidents := 0

	var utilitySum float64
	var utilityCount int

	for _, ex := range executions {
		if len(ex.Participants) > 1 {
			cooperative++
		}
		riskIncidents += len(ex.Injuries)

		for _, id := range ex.Participants {
			energyBalance += ex.Shares[id] - ex.EnergyCosts[id]
		}

		for _, id := range ex.Participants {
			agent, ok := agentsByID[id]
			if !ok {
				continue
			}
			x := ex.Shares[id]
			utilitySum += FehrSchmidtUtility(x, othersExcluding(ex.Participants, ex.Shares, id), agent.FehrSchmidt.Alpha, agent.FehrSchmidt.Beta)
			utilityCount++
		}
	}

	inequality := 0.0
	if utilityCount > 0 {
		inequality = utilitySum / float64(utilityCount)
	}

	return CooperationMetrics{
		CooperationRate: float64(cooperative) / float64(len(executions)),
		EnergyBalance:   energyBalance,
		RiskIncidents:   riskIncidents,
		InequalityIndex: inequality,
	}
}

func othersExcluding(participants []int, shares map[int]float64, self int) []float64 {
	others := make([]float64, 0, len(participants)-1)
	for _, id := range participants {
		if id == self {
			continue
		}
		others = append(others, shares[id])
	}
	return others
}

// FehrSchmidtUtility computes x - alpha*E[max(o-x,0)] - beta*E[max(x-o,0)]
// over the given peer shares.
func FehrSchmidtUtility(x float64, others []float64, alpha, beta float64) float64 {
	if len(others) == 0 {
		return x
	}
	var envy, guilt float64
	for _, o := range others {
		envy += math.Max(o-x, 0)
		guilt += math.Max(x-o, 0)
	}
	envy /= float64(len(others))
	guilt /= float64(len(others))
	return x - alpha*envy - beta*guilt
}
