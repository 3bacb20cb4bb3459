// Package environment implements the seasonal environment model: per-tick
// resource draws and hazard composition.
package environment

import (
	"math"

	"github.com/talgya/cooperationsim/internal/config"
	"github.com/talgya/cooperationsim/internal/distributions"
	"github.com/talgya/cooperationsim/internal/rng"
)

// ResourceLevel is the {plants, smallGame, largeGame} triple available on a
// given day.
type ResourceLevel struct {
	Plants    float64 `json:"plants"`
	SmallGame float64 `json:"smallGame"`
	LargeGame float64 `json:"largeGame"`
}

// RiskModifier is the composed {injury, hypothermia, predator} hazard
// triple for a given day, each clamped to [0,1].
type RiskModifier struct {
	Injury      float64 `json:"injury"`
	Hypothermia float64 `json:"hypothermia"`
	Predator    float64 `json:"predator"`
}

// State is the mutable, serializable environment snapshot.
type State struct {
	Day           int           `json:"day"`
	SeasonIndex   int           `json:"seasonIndex"`
	SeasonDay     int           `json:"seasonDay"`
	ResourceLevel ResourceLevel `json:"resourceLevel"`
	ClimateShock  float64       `json:"climateShock"`
	RiskModifier  RiskModifier  `json:"riskModifier"`
}

// Environment ticks a State forward using a dedicated RNG stream and the
// season/resource/hazard parameters of a ScenarioConfig.
type Environment struct {
	cfg   *config.ScenarioConfig
	state State
}

// New builds an Environment at day 0, season 0, with base resource levels
// and the composed risk modifier for the first season.
func New(cfg *config.ScenarioConfig) *Environment {
	e := &Environment{cfg: cfg}
	e.state = State{
		Day:         0,
		SeasonIndex: 0,
		SeasonDay:   0,
		ResourceLevel: ResourceLevel{
			Plants:    cfg.Resources.BasePlantRate,
			SmallGame: cfg.Resources.BaseSmallGameRate,
			LargeGame: cfg.Resources.BaseLargeGameRate,
		},
		RiskModifier: e.composeRisk(0),
	}
	return e
}

// FromState reconstructs an Environment from a previously serialized State.
func FromState(cfg *config.ScenarioConfig, s State) *Environment {
	return &Environment{cfg: cfg, state: s}
}

// State returns a copy of the current environment snapshot.
func (e *Environment) State() State {
	return e.state
}

func (e *Environment) seasonAt(index int) config.SeasonConfig {
	if len(e.cfg.Seasons) == 0 {
		return config.SeasonConfig{Name: config.Spring, ResourceMultiplier: 1, ClimateNoise: 0}
	}
	return e.cfg.Seasons[index%len(e.cfg.Seasons)]
}

func (e *Environment) composeRisk(seasonIndex int) RiskModifier {
	base := e.cfg.Hazards.Base
	season := e.seasonAt(seasonIndex)
	over, hasOverride := e.cfg.Hazards.Seasonal[string(season.Name)]

	injury, hypothermia, predator := base.Injury, base.Hypothermia, base.Predator
	if hasOverride {
		injury += over.Injury
		hypothermia += over.Hypothermia
		predator += over.Predator
	}

	return RiskModifier{
		Injury:      distributions.Clamp01(injury),
		Hypothermia: distributions.Clamp01(hypothermia),
		Predator:    distributions.Clamp01(predator),
	}
}

// Tick advances the environment by one day: computes the new calendar
// position, draws fresh resource levels and hazard composition, per
// spec.md §4.3.
func (e *Environment) Tick(r *rng.RNG) {
	e.state.Day++

	seasonLength := e.cfg.Timeline.SeasonLengthDays
	if seasonLength <= 0 {
		seasonLength = 1
	}
	numSeasons := len(e.cfg.Seasons)
	if numSeasons == 0 {
		numSeasons = 1
	}

	e.state.SeasonIndex = (e.state.Day / seasonLength) % numSeasons
	e.state.SeasonDay = e.state.Day % seasonLength

	season := e.seasonAt(e.state.SeasonIndex)

	gamma := distributions.Gamma(r, e.cfg.Resources.PoissonGamma.Shape, e.cfg.Resources.PoissonGamma.Scale)
	climateShock := (r.Next()*2 - 1) * season.ClimateNoise

	logGaussianMul := 1.0
	if e.cfg.Resources.LogGaussian != nil {
		logGaussianMul = distributions.LogGaussian(r, e.cfg.Resources.LogGaussian.Mean, e.cfg.Resources.LogGaussian.Variance)
	}

	baseMultiplier := season.ResourceMultiplier * math.Max(0.1, gamma+climateShock)

	seasonalBonus := 0.0
	if e.cfg.Resources.LargeGameBonus != nil {
		seasonalBonus = e.cfg.Resources.LargeGameBonus[string(season.Name)]
	}

	e.state.ClimateShock = climateShock
	e.state.ResourceLevel = ResourceLevel{
		Plants:    e.cfg.Resources.BasePlantRate * baseMultiplier * logGaussianMul,
		SmallGame: e.cfg.Resources.BaseSmallGameRate * baseMultiplier * 0.8,
		LargeGame: e.cfg.Resources.BaseLargeGameRate*baseMultiplier + seasonalBonus,
	}
	e.state.RiskModifier = e.composeRisk(e.state.SeasonIndex)
}
