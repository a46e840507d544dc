package neat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigINI(t *testing.T) {
	path := writeFile(t, "neat.ini", `
[Setup]
population_size = 50
input_nodes = 2
output_nodes = 2
connect_bias = true
bias_input = 1
seed = 99

[Species]
compatibility_threshold = 1.5
excess_coefficient = 0.5

[Mutate]
weight_scheme = gaussian ; step size set by weight_divisor
weight_divisor = 4
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Setup.PopulationSize)
	assert.Equal(t, 2, cfg.Setup.InputNodes)
	assert.Equal(t, 2, cfg.Setup.OutputNodes)
	assert.True(t, cfg.Setup.ConnectBias)
	assert.Equal(t, 1, cfg.Setup.BiasInput)
	assert.Equal(t, int64(99), cfg.Setup.Seed)
	assert.Equal(t, 1.5, cfg.Species.CompatibilityThreshold)
	assert.Equal(t, 0.5, cfg.Species.ExcessCoefficient)
	assert.Equal(t, WeightSchemeGaussian, cfg.Mutate.WeightScheme)
	assert.Equal(t, 4.0, cfg.Mutate.WeightDivisor)

	def := DefaultConfig()
	assert.Equal(t, def.Setup.InitialConnectionRate, cfg.Setup.InitialConnectionRate, "missing keys keep defaults")
	assert.Equal(t, def.Crossover, cfg.Crossover, "missing sections keep defaults")
	assert.Equal(t, def.Species.MaximumStaleness, cfg.Species.MaximumStaleness)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "neat.yaml", `
setup:
  population_size: 30
  initial_connection_rate: 1.0
crossover:
  elite_size: 2
  use_adjusted_fitness: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Setup.PopulationSize)
	assert.Equal(t, 1.0, cfg.Setup.InitialConnectionRate)
	assert.Equal(t, 2, cfg.Crossover.EliteSize)
	assert.False(t, cfg.Crossover.UseAdjustedFitness)
	assert.Equal(t, DefaultConfig().Mutate, cfg.Mutate)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "setup: [1, 2"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "zero.ini", "[Setup]\npopulation_size = 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(writeFile(t, "scheme.ini", "[Mutate]\nweight_scheme = cauchy\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"population", func(c *Config) { c.Setup.PopulationSize = -1 }},
		{"inputs", func(c *Config) { c.Setup.InputNodes = 0 }},
		{"outputs", func(c *Config) { c.Setup.OutputNodes = 0 }},
		{"bias input", func(c *Config) { c.Setup.ConnectBias = true; c.Setup.BiasInput = 3 }},
		{"connection rate", func(c *Config) { c.Setup.InitialConnectionRate = 1.5 }},
		{"staleness", func(c *Config) { c.Species.MaximumStaleness = 0 }},
		{"threshold", func(c *Config) { c.Species.CompatibilityThreshold = -0.1 }},
		{"coefficient", func(c *Config) { c.Species.WeightCoefficient = -1 }},
		{"modifier", func(c *Config) { c.Species.CompatibilityModifier = -1 }},
		{"count target", func(c *Config) { c.Species.CountTarget = 0 }},
		{"elitism", func(c *Config) { c.Species.Elitism = -1 }},
		{"minimum size", func(c *Config) { c.Species.MinimumSize = -1 }},
		{"elite size", func(c *Config) { c.Crossover.EliteSize = -1 }},
		{"clone rate", func(c *Config) { c.Crossover.CloneRate = 1.25 }},
		{"selection", func(c *Config) { c.Crossover.Selection = "tournament" }},
		{"selection strength", func(c *Config) { c.Crossover.Selection = SelectionSkewed; c.Crossover.SelectionStrength = 0 }},
		{"node rate", func(c *Config) { c.Mutate.NewNodeRate = 2 }},
		{"weight range", func(c *Config) { c.Mutate.WeightMin = 5; c.Mutate.WeightMax = 1 }},
		{"divisor", func(c *Config) { c.Mutate.WeightScheme = WeightSchemeGaussian; c.Mutate.WeightDivisor = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigValidateReportsFirstBadRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mutate.WeightRate = -1
	cfg.Mutate.RedrawWeight = 2
	cfg.Mutate.DisableNodeRate = 3

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "weight_rate must be between 0 and 1")
	}
}

func TestLoadConfigSelection(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "skewed.ini", `
[Species]
minimum_size = 3

[Crossover]
clone_rate = 0.25
selection = skewed ; rank based
selection_strength = 6
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Species.MinimumSize)
	assert.Equal(t, 0.25, cfg.Crossover.CloneRate)
	assert.Equal(t, SelectionSkewed, cfg.Crossover.Selection)
	assert.Equal(t, 6.0, cfg.Crossover.SelectionStrength)

	cfg, err = LoadConfig(writeFile(t, "blank.ini", `[Crossover]
selection =
`))
	require.NoError(t, err)
	assert.Equal(t, SelectionRoulette, cfg.Crossover.Selection)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Setup.Seed = 1234
	cfg.Setup.ConnectBias = true
	cfg.Species.AbsoluteDifference = true
	cfg.Mutate.WeightScheme = WeightSchemeGaussian
	cfg.Species.MinimumSize = 2
	cfg.Crossover.CloneRate = 0.25
	cfg.Crossover.Selection = SelectionSkewed

	dir := t.TempDir()
	iniPath := filepath.Join(dir, "neat.ini")
	require.NoError(t, cfg.SaveINI(iniPath))
	loaded, err := LoadConfig(iniPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	yamlPath := filepath.Join(dir, "neat.yml")
	require.NoError(t, cfg.WriteYAML(yamlPath))
	loaded, err = LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Setup.PopulationSize = 1
	assert.Equal(t, 100, cfg.Setup.PopulationSize)
}
