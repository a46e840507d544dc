package neat

import (
	"fmt"
	"strings"
)

// SpeciesStats is one species' row in the generation statistics.
type SpeciesStats struct {
	ID              int     `csv:"species_id"`
	Size            int     `csv:"members"`
	Staleness       int     `csv:"staleness"`
	Age             int     `csv:"age"`
	AverageFitness  float64 `csv:"avg_fitness"`
	AdjustedFitness float64 `csv:"adjusted_fitness"`
	MaxFitness      float64 `csv:"max_fitness"`
	Neurons         int     `csv:"rep_neurons"`
	Synapses        int     `csv:"rep_synapses"`
}

// GenerationStats summarizes a population right after speciation.
type GenerationStats struct {
	RunID          string
	Generation     int
	PopulationSize int
	MaxFitness     float64 // Best fitness ever seen by the population.
	BestFitness    float64 // Best fitness of this generation.
	MinFitness     float64
	MeanFitness    float64
	StdevFitness   float64
	MedianFitness  float64
	Threshold      float64
	DistanceMean   float64
	DistanceStdev  float64
	Species        []SpeciesStats
}

// Reporter receives statistics at every generation transition.
type Reporter interface {
	ReportGeneration(stats *GenerationStats) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(stats *GenerationStats) error

// ReportGeneration calls f(stats).
func (f ReporterFunc) ReportGeneration(stats *GenerationStats) error {
	return f(stats)
}

// String renders the statistics as a table, one line per species.
func (s *GenerationStats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Statistics | Generation %6d | Population %6d | Max Fitness %10.4f | SCT: %6.3f\n",
		s.Generation, s.PopulationSize, s.MaxFitness, s.Threshold)
	sb.WriteString("----------------------------------------------------------------------------------------\n")
	sb.WriteString("Species | Members | Staleness | Age   | Avg Fitness | Max Fitness | CNodes | CConns\n")
	for _, sp := range s.Species {
		fmt.Fprintf(&sb, "%7d | %7d | %9d | %5d | %11.4f | %11.4f | %6d | %6d\n",
			sp.ID, sp.Size, sp.Staleness, sp.Age, sp.AverageFitness, sp.MaxFitness, sp.Neurons, sp.Synapses)
	}
	return sb.String()
}
