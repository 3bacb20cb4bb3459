// Package agentstate defines the per-agent mutable state carried across a
// run, and the deep-clone discipline required to keep PlanRequest snapshots
// and persisted SimulationState snapshots fully detached from live state.
package agentstate

// Emotion is an agent's current affective state.
type Emotion struct {
	Valence float64 `json:"valence"` // [-1, 1]
	Arousal float64 `json:"arousal"` // [0, 1.5]
	Mood    float64 `json:"mood"`    // [-1, 1]
}

// FehrSchmidt holds an agent's inequality-aversion parameters.
type FehrSchmidt struct {
	Alpha            float64 `json:"alpha"`            // envy weight, >= 0
	Beta             float64 `json:"beta"`              // guilt weight, >= 0
	ReputationWeight float64 `json:"reputationWeight"`  // [0,1]
	NormPenalty      float64 `json:"normPenalty"`       // [0,1]
}

// SemanticMemory holds an agent's general, non-episodic beliefs.
type SemanticMemory struct {
	ResourceExpectations map[string]float64 `json:"resourceExpectations"`
	NormExpectation      float64            `json:"normExpectation"`
}

func (s SemanticMemory) clone() SemanticMemory {
	out := SemanticMemory{NormExpectation: s.NormExpectation}
	if s.ResourceExpectations != nil {
		out.ResourceExpectations = make(map[string]float64, len(s.ResourceExpectations))
		for k, v := range s.ResourceExpectations {
			out.ResourceExpectations[k] = v
		}
	}
	return out
}

// SocialMemoryEntry records an agent's running impression of one partner.
// Invariant: at most one entry per PartnerID per agent (enforced by the
// cognition package, not by this type).
type SocialMemoryEntry struct {
	PartnerID           int     `json:"partnerId"`
	LastInteractionDay  int     `json:"lastInteractionDay"`
	Reciprocity         float64 `json:"reciprocity"`         // [-1,1]
	ResourcesGiven      float64 `json:"resourcesGiven"`
	ResourcesReceived   float64 `json:"resourcesReceived"`
	Sentiment           float64 `json:"sentiment"`           // [-1,1]
}

// EpisodicEntry is one remembered stimulus, evicted once it falls outside
// the configured episodic window.
type EpisodicEntry struct {
	Day     int     `json:"day"`
	Valence float64 `json:"valence"`
	Arousal float64 `json:"arousal"`
	Label   string  `json:"label"`
}

// Preferences holds five agent-level sliders in [0,1]. Spec.md does not
// name them individually beyond "five preference values" sampled per
// scenario configuration, so they are carried as a fixed-size array.
type Preferences [5]float64

// AgentState is the full mutable, serializable state of one agent.
type AgentState struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	CampID string `json:"campId"`

	Energy     float64 `json:"energy"`
	HungerDebt float64 `json:"hungerDebt"`

	Emotion     Emotion     `json:"emotion"`
	FehrSchmidt FehrSchmidt `json:"fehrSchmidt"`
	Reputation  float64     `json:"reputation"` // [0,1]

	Skillset    map[string]float64 `json:"skillset"`    // values in [0, 1.2]
	Preferences Preferences        `json:"preferences"`

	SemanticMemory SemanticMemory      `json:"semanticMemory"`
	SocialMemory   []SocialMemoryEntry `json:"socialMemory"`
	EpisodicMemory []EpisodicEntry     `json:"episodicMemory"`

	LastReflectionDay int      `json:"lastReflectionDay"`
	LastActions       []string `json:"lastActions"`
}

// Clone returns a fully detached deep copy of the agent: skillset map,
// preferences array, memories, and lastActions are all independently
// allocated so that mutating the clone can never alias the original. This
// is the hand-written clone spec.md §9 requires of languages without
// structured clone.
func (a *AgentState) Clone() *AgentState {
	if a == nil {
		return nil
	}
	out := *a

	if a.Skillset != nil {
		out.Skillset = make(map[string]float64, len(a.Skillset))
		for k, v := range a.Skillset {
			out.Skillset[k] = v
		}
	}

	out.SemanticMemory = a.SemanticMemory.clone()

	if a.SocialMemory != nil {
		out.SocialMemory = make([]SocialMemoryEntry, len(a.SocialMemory))
		copy(out.SocialMemory, a.SocialMemory)
	}

	if a.EpisodicMemory != nil {
		out.EpisodicMemory = make([]EpisodicEntry, len(a.EpisodicMemory))
		copy(out.EpisodicMemory, a.EpisodicMemory)
	}

	if a.LastActions != nil {
		out.LastActions = make([]string, len(a.LastActions))
		copy(out.LastActions, a.LastActions)
	}

	// Preferences is a fixed-size array, already copied by value via `out := *a`.
	return &out
}

// CloneAll deep-clones a slice of agent pointers, preserving order.
func CloneAll(agents []*AgentState) []*AgentState {
	out := make([]*AgentState, len(agents))
	for i, a := range agents {
		out[i] = a.Clone()
	}
	return out
}

// SkillOrDefault returns the named skill, defaulting to 0.5 when absent —
// the default used by proportional_skill reward splits (spec.md §4.4 step 8).
func (a *AgentState) SkillOrDefault(key string) float64 {
	if a.Skillset == nil {
		return 0.5
	}
	if v, ok := a.Skillset[key]; ok {
		return v
	}
	return 0.5
}
