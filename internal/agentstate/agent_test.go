package agentstate

import "testing"

func sampleAgent() *AgentState {
	return &AgentState{
		ID:     1,
		Name:   "Ona",
		CampID: "Camp-A",
		Energy: 10,
		Skillset: map[string]float64{
			"hunting": 0.6,
		},
		SemanticMemory: SemanticMemory{
			ResourceExpectations: map[string]float64{"plants": 3.0},
		},
		SocialMemory: []SocialMemoryEntry{
			{PartnerID: 2, Sentiment: 0.3},
		},
		EpisodicMemory: []EpisodicEntry{
			{Day: 1, Valence: 0.2, Label: "foraged successfully"},
		},
		LastActions: []string{"forage"},
	}
}

func TestCloneDetachesMaps(t *testing.T) {
	a := sampleAgent()
	b := a.Clone()

	b.Skillset["hunting"] = 0.9
	if a.Skillset["hunting"] != 0.6 {
		t.Fatalf("mutating clone's skillset leaked into original: %v", a.Skillset["hunting"])
	}

	b.SemanticMemory.ResourceExpectations["plants"] = 99
	if a.SemanticMemory.ResourceExpectations["plants"] != 3.0 {
		t.Fatalf("mutating clone's semantic memory leaked into original")
	}

	b.SocialMemory[0].Sentiment = -1
	if a.SocialMemory[0].Sentiment != 0.3 {
		t.Fatalf("mutating clone's social memory leaked into original")
	}

	b.EpisodicMemory[0].Label = "changed"
	if a.EpisodicMemory[0].Label != "foraged successfully" {
		t.Fatalf("mutating clone's episodic memory leaked into original")
	}

	b.LastActions[0] = "hunt"
	if a.LastActions[0] != "forage" {
		t.Fatalf("mutating clone's lastActions leaked into original")
	}
}

func TestCloneAllPreservesOrder(t *testing.T) {
	agents := []*AgentState{{ID: 1}, {ID: 2}, {ID: 3}}
	clones := CloneAll(agents)
	for i, c := range clones {
		if c.ID != agents[i].ID {
			t.Fatalf("order not preserved at %d", i)
		}
		if c == agents[i] {
			t.Fatalf("clone aliases original at %d", i)
		}
	}
}

func TestSkillOrDefault(t *testing.T) {
	a := sampleAgent()
	if a.SkillOrDefault("hunting") != 0.6 {
		t.Fatalf("expected 0.6")
	}
	if a.SkillOrDefault("crafting") != 0.5 {
		t.Fatalf("expected default 0.5")
	}
	empty := &AgentState{}
	if empty.SkillOrDefault("anything") != 0.5 {
		t.Fatalf("expected default 0.5 for nil skillset")
	}
}
