package neat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Weight mutation schemes.
const (
	WeightSchemeUniform  = "uniform"  // bounded uniform step, clamped to [weight_min, weight_max]
	WeightSchemeGaussian = "gaussian" // unclamped gaussian step divided by weight_divisor
)

// Parent selection schemes.
const (
	SelectionRoulette = "roulette" // fitness-proportionate
	SelectionSkewed   = "skewed"   // rank based, biased towards the fittest members
)

// Config stores the configuration parameters for a NEAT run.
type Config struct {
	Setup     SetupConfig     `ini:"Setup" yaml:"setup"`
	Species   SpeciesConfig   `ini:"Species" yaml:"species"`
	Crossover CrossoverConfig `ini:"Crossover" yaml:"crossover"`
	Mutate    MutateConfig    `ini:"Mutate" yaml:"mutate"`
}

// SetupConfig holds parameters used when building genomes from scratch.
type SetupConfig struct {
	PopulationSize        int     `ini:"population_size" yaml:"population_size"`
	InputNodes            int     `ini:"input_nodes" yaml:"input_nodes"`
	OutputNodes           int     `ini:"output_nodes" yaml:"output_nodes"`
	ConnectBias           bool    `ini:"connect_bias" yaml:"connect_bias"`
	BiasInput             int     `ini:"bias_input" yaml:"bias_input"`
	InitialConnectionRate float64 `ini:"initial_connection_rate" yaml:"initial_connection_rate"`
	Seed                  int64   `ini:"seed" yaml:"seed"`   // 0 seeds from the clock
	Debug                 bool    `ini:"debug" yaml:"debug"` // validate every brain at generation boundaries
}

// SpeciesConfig holds speciation and compatibility-distance parameters.
type SpeciesConfig struct {
	MaximumStaleness       int     `ini:"maximum_staleness" yaml:"maximum_staleness"`
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	// ExcessCoefficient weights excess genes separately when positive. At zero
	// excess genes are counted as disjoint.
	ExcessCoefficient     float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	WeightCoefficient     float64 `ini:"weight_coefficient" yaml:"weight_coefficient"`
	AbsoluteDifference    bool    `ini:"absolute_difference" yaml:"absolute_difference"` // do not divide by genome size
	CompatibilityModifier float64 `ini:"compatibility_modifier" yaml:"compatibility_modifier"`
	CountTarget           int     `ini:"count_target" yaml:"count_target"`
	Elitism               int     `ini:"elitism" yaml:"elitism"` // best species protected from staleness removal
	UpdateRepresentative  bool    `ini:"update_representative" yaml:"update_representative"`
	MinimumSize           int     `ini:"minimum_size" yaml:"minimum_size"` // floor on each species' offspring quota
}

// CrossoverConfig holds reproduction parameters.
type CrossoverConfig struct {
	EliteSize          int     `ini:"elite_size" yaml:"elite_size"`
	UseAdjustedFitness bool    `ini:"use_adjusted_fitness" yaml:"use_adjusted_fitness"`
	CloneRate          float64 `ini:"clone_rate" yaml:"clone_rate"` // chance a child is an unmutated copy of one parent
	Selection          string  `ini:"selection" yaml:"selection"`
	// SelectionStrength is the skew exponent of the skewed scheme. Higher
	// values favour the fittest members more strongly.
	SelectionStrength float64 `ini:"selection_strength" yaml:"selection_strength"`
}

// MutateConfig holds structural and weight mutation parameters.
type MutateConfig struct {
	WeightRate        float64 `ini:"weight_rate" yaml:"weight_rate"`
	WeightAmount      float64 `ini:"weight_amount" yaml:"weight_amount"`
	WeightMin         float64 `ini:"weight_min" yaml:"weight_min"`
	WeightMax         float64 `ini:"weight_max" yaml:"weight_max"`
	WeightScheme      string  `ini:"weight_scheme" yaml:"weight_scheme"`
	WeightDivisor     float64 `ini:"weight_divisor" yaml:"weight_divisor"`
	RedrawWeight      float64 `ini:"redraw_weight" yaml:"redraw_weight"`
	NewConnectionRate float64 `ini:"new_connection_rate" yaml:"new_connection_rate"`
	NewNodeRate       float64 `ini:"new_node_rate" yaml:"new_node_rate"`
	DisableNodeRate   float64 `ini:"disable_node_rate" yaml:"disable_node_rate"`
}

// DefaultConfig returns a configuration with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		Setup: SetupConfig{
			PopulationSize:        100,
			InputNodes:            3,
			OutputNodes:           1,
			ConnectBias:           false,
			BiasInput:             0,
			InitialConnectionRate: 0.8,
		},
		Species: SpeciesConfig{
			MaximumStaleness:       15,
			CompatibilityThreshold: 0.5,
			DisjointCoefficient:    1.0,
			ExcessCoefficient:      0.0,
			WeightCoefficient:      1.0,
			CompatibilityModifier:  0.3,
			CountTarget:            5,
			Elitism:                1,
			MinimumSize:            0,
		},
		Crossover: CrossoverConfig{
			EliteSize:          5,
			UseAdjustedFitness: true,
			CloneRate:          0,
			Selection:          SelectionRoulette,
			SelectionStrength:  4,
		},
		Mutate: MutateConfig{
			WeightRate:        0.8,
			WeightAmount:      0.5,
			WeightMin:         -20.0,
			WeightMax:         20.0,
			WeightScheme:      WeightSchemeUniform,
			WeightDivisor:     10.0,
			RedrawWeight:      0.1,
			NewConnectionRate: 0.5,
			NewNodeRate:       0.1,
			DisableNodeRate:   0.75,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file, or from YAML
// when the file ends in .yaml or .yml. Keys absent from the file keep their
// defaults.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := cfg.Section("Setup").MapTo(&config.Setup); err != nil {
			return nil, fmt.Errorf("failed to map [Setup] section: %w", err)
		}
		if err := cfg.Section("Species").MapTo(&config.Species); err != nil {
			return nil, fmt.Errorf("failed to map [Species] section: %w", err)
		}
		if err := cfg.Section("Crossover").MapTo(&config.Crossover); err != nil {
			return nil, fmt.Errorf("failed to map [Crossover] section: %w", err)
		}
		if err := cfg.Section("Mutate").MapTo(&config.Mutate); err != nil {
			return nil, fmt.Errorf("failed to map [Mutate] section: %w", err)
		}
	}

	config.Mutate.WeightScheme = cleanIniString(config.Mutate.WeightScheme)
	if config.Mutate.WeightScheme == "" {
		config.Mutate.WeightScheme = WeightSchemeUniform
	}
	config.Crossover.Selection = cleanIniString(config.Crossover.Selection)
	if config.Crossover.Selection == "" {
		config.Crossover.Selection = SelectionRoulette
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveINI writes the configuration as an INI file readable by LoadConfig.
func (c *Config) SaveINI(filePath string) error {
	file := ini.Empty()
	if err := ini.ReflectFrom(file, c); err != nil {
		return fmt.Errorf("failed to reflect config: %w", err)
	}
	if err := file.SaveTo(filePath); err != nil {
		return fmt.Errorf("failed to write config file '%s': %w", filePath, err)
	}
	return nil
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(filePath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file '%s': %w", filePath, err)
	}
	return nil
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks that every parameter is in range.
func (c *Config) Validate() error {
	s := c.Setup
	if s.PopulationSize <= 0 {
		return invalid("population_size must be positive")
	}
	if s.InputNodes <= 0 {
		return invalid("input_nodes must be positive")
	}
	if s.OutputNodes <= 0 {
		return invalid("output_nodes must be positive")
	}
	if s.ConnectBias && (s.BiasInput < 0 || s.BiasInput >= s.InputNodes) {
		return invalid("bias_input %d is not an input node", s.BiasInput)
	}
	if err := checkRate("initial_connection_rate", s.InitialConnectionRate); err != nil {
		return err
	}

	sp := c.Species
	if sp.MaximumStaleness <= 0 {
		return invalid("maximum_staleness must be positive")
	}
	if sp.CompatibilityThreshold < 0 {
		return invalid("compatibility_threshold cannot be negative")
	}
	if sp.DisjointCoefficient < 0 || sp.ExcessCoefficient < 0 || sp.WeightCoefficient < 0 {
		return invalid("distance coefficients cannot be negative")
	}
	if sp.CompatibilityModifier < 0 {
		return invalid("compatibility_modifier cannot be negative")
	}
	if sp.CountTarget <= 0 {
		return invalid("count_target must be positive")
	}
	if sp.Elitism < 0 {
		return invalid("elitism cannot be negative")
	}
	if sp.MinimumSize < 0 {
		return invalid("minimum_size cannot be negative")
	}

	x := c.Crossover
	if x.EliteSize < 0 {
		return invalid("elite_size cannot be negative")
	}
	switch x.Selection {
	case SelectionRoulette:
	case SelectionSkewed:
		if x.SelectionStrength <= 0 {
			return invalid("selection_strength must be positive for the skewed scheme")
		}
	default:
		return invalid("unknown selection '%s'", x.Selection)
	}

	m := c.Mutate
	rates := []struct {
		name string
		rate float64
	}{
		{"clone_rate", x.CloneRate},
		{"weight_rate", m.WeightRate},
		{"redraw_weight", m.RedrawWeight},
		{"new_connection_rate", m.NewConnectionRate},
		{"new_node_rate", m.NewNodeRate},
		{"disable_node_rate", m.DisableNodeRate},
	}
	for _, r := range rates {
		if err := checkRate(r.name, r.rate); err != nil {
			return err
		}
	}
	if m.WeightAmount < 0 {
		return invalid("weight_amount cannot be negative")
	}
	if m.WeightMax < m.WeightMin {
		return invalid("weight_max cannot be less than weight_min")
	}
	switch m.WeightScheme {
	case WeightSchemeUniform:
	case WeightSchemeGaussian:
		if m.WeightDivisor <= 0 {
			return invalid("weight_divisor must be positive for the gaussian scheme")
		}
	default:
		return invalid("unknown weight_scheme '%s'", m.WeightScheme)
	}
	return nil
}

func checkRate(name string, rate float64) error {
	if rate < 0 || rate > 1 {
		return invalid("%s must be between 0 and 1", name)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
