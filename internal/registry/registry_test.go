package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validScenarioTOML = `
name = "winter-camp"
display_name = "Winter Camp"

[[seasons]]
name = "winter"
resource_multiplier = 0.6
climate_noise = 0.2

[resources]
base_plant_rate = 10
base_small_game_rate = 4
base_large_game_rate = 1

[resources.poisson_gamma]
shape = 2
scale = 1

[hazards.base]
injury = 0.05
hypothermia = 0.02
predator = 0.01

[[tasks]]
id = "forage1"
category = "foraging"
success_probability = 0.8
energy_cost = 1
injury_risk_multiplier = 1
min_participants = 1
recommended_participants = 2
norm = "equal_share"

[agent_population]
size = 5

[agent_population.skill_profiles.gathering]
mean = 0.6
std = 0.1

[agent_population.social_preferences]
alpha_mean = 0.7
alpha_std = 0.1
beta_mean = 1.2
beta_std = 0.1
reputation_weight = 0.3
norm_penalty = 0.2

[cognition]
episodic_window_days = 7
social_memory_horizon_days = 14
reflection_interval_days = 3

[cognition.emotion]
decay = 0.2
baseline_valence = 0
baseline_arousal = 0.2

[timeline]
season_length_days = 10
daily_micro_interactions = ["greet"]

[defaults]
daily_energy_need = 2

[network]
decay = 0.1

[llm]
plan_template = "Prioritize the task with the best success odds."
`

const invalidScenarioTOML = `
name = "no-tasks"
display_name = "Missing Tasks"

[timeline]
daily_micro_interactions = ["greet"]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadFileRegistersValidScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "winter-camp.toml", validScenarioTOML)

	r := New()
	if err := r.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}

	cfg, ok := r.Get("winter-camp")
	if !ok {
		t.Fatalf("expected winter-camp to be registered")
	}
	if cfg.DisplayName != "Winter Camp" {
		t.Fatalf("display name = %q", cfg.DisplayName)
	}
	if len(cfg.Tasks) != 1 || cfg.Tasks[0].ID != "forage1" {
		t.Fatalf("unexpected tasks: %+v", cfg.Tasks)
	}
}

func TestLoadFileRejectsInvalidScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "no-tasks.toml", invalidScenarioTOML)

	r := New()
	if err := r.LoadFile(path); err == nil {
		t.Fatalf("expected validation error for scenario with no tasks")
	}
	if _, ok := r.Get("no-tasks"); ok {
		t.Fatalf("invalid scenario should not be registered")
	}
}

func TestLoadDirSkipsNonTomlFilesAndSortsNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "winter-camp.toml", validScenarioTOML)
	writeFile(t, dir, "z-alpha-camp.toml", strings.Replace(validScenarioTOML, `name = "winter-camp"`, `name = "alpha-camp"`, 1))
	writeFile(t, dir, "README.md", "not a scenario")

	r, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha-camp" || names[1] != "winter-camp" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestLoadDirFailsFastOnMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.toml", invalidScenarioTOML)

	if _, err := LoadDir(dir); err == nil {
		t.Fatalf("expected error loading directory containing an invalid scenario")
	}
}
