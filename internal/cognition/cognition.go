// Package cognition implements the per-agent emotion update, episodic and
// social memory maintenance, and periodic reflection described in
// spec.md §4.5.
package cognition

import (
	"fmt"

	"github.com/talgya/cooperationsim/internal/agentstate"
	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/distributions"
)

// Stimulus is one emotionally salient event applied to an agent.
type Stimulus struct {
	Goal       float64 // goal-alignment component, typically [-1,1]
	Norm       float64 // norm-alignment component, typically [-1,1]
	Preference float64 // preference-alignment component, typically [-1,1]
	Arousal    float64 // raw arousal contribution, >= 0
	Label      string  // short description stored in the episodic entry
}

// Engine applies cognition updates using a scenario's cognition parameters.
type Engine struct {
	cfg config.CognitionConfig
}

// New builds a cognition Engine from a scenario's cognition parameters.
func New(cfg config.CognitionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// ApplyStimulus updates an agent's emotion state and prepends (then prunes)
// an episodic memory entry, per spec.md §4.5.
func (e *Engine) ApplyStimulus(a *agentstate.AgentState, day int, s Stimulus) {
	valenceDelta := 0.6*s.Goal + 0.3*s.Norm + 0.1*s.Preference
	arousalDelta := s.Arousal
	moodDelta := 0.5*valenceDelta + 0.2*arousalDelta

	lambda := e.cfg.Emotion.Decay

	a.Emotion.Valence = distributions.Clamp(a.Emotion.Valence*(1-lambda)+valenceDelta, -1, 1)
	a.Emotion.Arousal = distributions.Clamp(a.Emotion.Arousal*(1-lambda)+arousalDelta, 0, 1.5)
	a.Emotion.Mood = distributions.Clamp(a.Emotion.Mood*(1-lambda/2)+moodDelta, -1, 1)

	entry := agentstate.EpisodicEntry{
		Day:     day,
		Valence: valenceDelta,
		Arousal: arousalDelta,
		Label:   s.Label,
	}
	a.EpisodicMemory = append([]agentstate.EpisodicEntry{entry}, a.EpisodicMemory...)
	a.EpisodicMemory = evictEpisodic(a.EpisodicMemory, day, e.cfg.EpisodicWindowDays)
}

func evictEpisodic(entries []agentstate.EpisodicEntry, day, windowDays int) []agentstate.EpisodicEntry {
	kept := entries[:0:0]
	for _, entry := range entries {
		if day-entry.Day <= windowDays {
			kept = append(kept, entry)
		}
	}
	return kept
}

// RegisterInteraction records or refreshes an agent's impression of one
// partner, keeping at most one entry per partner and pruning entries that
// fall outside the social-memory horizon, per spec.md §4.5.
func (e *Engine) RegisterInteraction(a *agentstate.AgentState, partnerID, day int, reciprocityDelta, given, received, sentimentDelta float64) {
	horizon := e.cfg.SocialMemoryHorizonDays

	var prev *agentstate.SocialMemoryEntry
	kept := a.SocialMemory[:0:0]
	for i := range a.SocialMemory {
		entry := a.SocialMemory[i]
		if entry.PartnerID == partnerID {
			e := entry
			prev = &e
			continue
		}
		if day-entry.LastInteractionDay <= horizon {
			kept = append(kept, entry)
		}
	}

	var prevReciprocity, prevGiven, prevReceived, prevSentiment float64
	if prev != nil {
		prevReciprocity = prev.Reciprocity
		prevGiven = prev.ResourcesGiven
		prevReceived = prev.ResourcesReceived
		prevSentiment = prev.Sentiment
	}

	fresh := agentstate.SocialMemoryEntry{
		PartnerID:          partnerID,
		LastInteractionDay: day,
		Reciprocity:        distributions.Clamp(prevReciprocity*0.6+reciprocityDelta, -1, 1),
		ResourcesGiven:     prevGiven + given,
		ResourcesReceived:  prevReceived + received,
		Sentiment:          distributions.Clamp(prevSentiment*0.5+sentimentDelta, -1, 1),
	}

	a.SocialMemory = append([]agentstate.SocialMemoryEntry{fresh}, kept...)
}

// Reflect returns a short reflection string at most once every
// reflectionIntervalDays. It returns "" when a reflection is not yet due or
// there is no episodic memory to reflect on.
func (e *Engine) Reflect(a *agentstate.AgentState, day int) string {
	interval := e.cfg.ReflectionIntervalDays
	if interval <= 0 {
		interval = 1
	}
	if day-a.LastReflectionDay < interval {
		return ""
	}
	if len(a.EpisodicMemory) == 0 {
		return ""
	}

	n := 3
	if n > len(a.EpisodicMemory) {
		n = len(a.EpisodicMemory)
	}

	positive, negative := 0, 0
	for _, entry := range a.EpisodicMemory[:n] {
		if entry.Valence >= 0 {
			positive++
		} else {
			negative++
		}
	}

	tone := "concerned"
	if positive >= negative {
		tone = "optimistic"
	}

	a.LastReflectionDay = day
	return fmt.Sprintf("%s reflects: feeling %s after recent days.", a.Name, tone)
}
