package cognition

import (
	"strings"
	"testing"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/config"
)

func testEngine() *Engine {
	return New(config.CognitionConfig{
		Emotion: config.EmotionConfig{
			Decay:           0.2,
			BaselineValence: 0,
			BaselineArousal: 0.2,
		},
		EpisodicWindowDays:      5,
		SocialMemoryHorizonDays: 10,
		ReflectionIntervalDays:  3,
	})
}

func TestApplyStimulusUpdatesEmotionAndClamps(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{Name: "Ona", LastReflectionDay: -1}

	for i := 0; i < 50; i++ {
		e.ApplyStimulus(a, i, Stimulus{Goal: 1, Norm: 1, Preference: 1, Arousal: 2, Label: "big win"})
	}

	if a.Emotion.Valence < -1 || a.Emotion.Valence > 1 {
		t.Fatalf("valence out of range: %v", a.Emotion.Valence)
	}
	if a.Emotion.Arousal < 0 || a.Emotion.Arousal > 1.5 {
		t.Fatalf("arousal out of range: %v", a.Emotion.Arousal)
	}
	if a.Emotion.Mood < -1 || a.Emotion.Mood > 1 {
		t.Fatalf("mood out of range: %v", a.Emotion.Mood)
	}
}

func TestEpisodicMemoryEvictsOutsideWindow(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{LastReflectionDay: -1}

	e.ApplyStimulus(a, 0, Stimulus{Label: "day0"})
	e.ApplyStimulus(a, 10, Stimulus{Label: "day10"})

	for _, entry := range a.EpisodicMemory {
		if 10-entry.Day > 5 {
			t.Fatalf("stale episodic entry survived eviction: %+v", entry)
		}
	}
	if len(a.EpisodicMemory) != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", len(a.EpisodicMemory))
	}
}

func TestRegisterInteractionSingleEntryPerPartner(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{}

	e.RegisterInteraction(a, 2, 1, 0.5, 1, 0, 0.3)
	e.RegisterInteraction(a, 2, 2, 0.5, 1, 0, 0.3)

	count := 0
	for _, entry := range a.SocialMemory {
		if entry.PartnerID == 2 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for partner 2, got %d", count)
	}
}

func TestRegisterInteractionAccumulatesResources(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{}

	e.RegisterInteraction(a, 5, 1, 0.1, 2, 1, 0.2)
	e.RegisterInteraction(a, 5, 2, 0.1, 3, 0, 0.2)

	entry := a.SocialMemory[0]
	if entry.ResourcesGiven != 5 {
		t.Fatalf("ResourcesGiven = %v, want 5", entry.ResourcesGiven)
	}
	if entry.ResourcesReceived != 1 {
		t.Fatalf("ResourcesReceived = %v, want 1", entry.ResourcesReceived)
	}
}

func TestRegisterInteractionPrunesOutsideHorizon(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{}

	e.RegisterInteraction(a, 1, 1, 0.1, 1, 0, 0.1)
	e.RegisterInteraction(a, 2, 50, 0.1, 1, 0, 0.1)

	for _, entry := range a.SocialMemory {
		if entry.PartnerID == 1 {
			t.Fatalf("stale partner-1 entry survived pruning")
		}
	}
}

func TestReflectRespectsInterval(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{Name: "Ona", LastReflectionDay: -1}
	e.ApplyStimulus(a, 0, Stimulus{Goal: 1, Label: "good day"})

	// With LastReflectionDay -1 and an interval of 3, day 2 is the first
	// eligible day.
	if early := e.Reflect(a, 1); early != "" {
		t.Fatalf("expected no reflection before the first eligible day, got %q", early)
	}
	first := e.Reflect(a, 2)
	if first == "" {
		t.Fatalf("expected a reflection on first eligible day")
	}
	second := e.Reflect(a, 3)
	if second != "" {
		t.Fatalf("expected no reflection before interval elapses, got %q", second)
	}
	third := e.Reflect(a, 5)
	if third == "" {
		t.Fatalf("expected a reflection once interval elapses")
	}
}

func TestReflectToneFromEpisodicBalance(t *testing.T) {
	e := testEngine()
	a := &agentstate.AgentState{Name: "Ona", LastReflectionDay: -1}
	e.ApplyStimulus(a, 0, Stimulus{Goal: -1, Label: "bad"})
	e.ApplyStimulus(a, 0, Stimulus{Goal: -1, Label: "bad2"})

	msg := e.Reflect(a, 2)
	if msg == "" {
		t.Fatalf("expected non-empty reflection")
	}
	if !strings.Contains(msg, "concerned") {
		t.Fatalf("expected a concerned tone after two negative entries, got %q", msg)
	}
}
