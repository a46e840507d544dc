package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/baldhumanity/layered-neat/neat"
	"github.com/gocarina/gocsv"
)

// SpeciesRecord is one CSV row: a species at the end of a generation.
type SpeciesRecord struct {
	RunID           string  `csv:"run_id"`
	Generation      int     `csv:"generation"`
	Threshold       float64 `csv:"threshold"`
	PopMaxFitness   float64 `csv:"pop_max_fitness"`
	SpeciesID       int     `csv:"species_id"`
	Members         int     `csv:"members"`
	Staleness       int     `csv:"staleness"`
	Age             int     `csv:"age"`
	AvgFitness      float64 `csv:"avg_fitness"`
	AdjustedFitness float64 `csv:"adjusted_fitness"`
	MaxFitness      float64 `csv:"max_fitness"`
	RepNeurons      int     `csv:"rep_neurons"`
	RepSynapses     int     `csv:"rep_synapses"`
}

// CSVReporter writes one row per species per generation.
type CSVReporter struct {
	w             io.Writer
	file          *os.File
	headerWritten bool
}

// NewCSVReporter writes CSV rows to w.
func NewCSVReporter(w io.Writer) *CSVReporter {
	return &CSVReporter{w: w}
}

// CreateCSVReporter creates (or truncates) the file at path, including
// missing parent directories, and writes CSV rows to it.
func CreateCSVReporter(path string) (*CSVReporter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &CSVReporter{w: f, file: f}, nil
}

// Records flattens generation statistics into CSV rows.
func Records(stats *neat.GenerationStats) []SpeciesRecord {
	records := make([]SpeciesRecord, 0, len(stats.Species))
	for _, sp := range stats.Species {
		records = append(records, SpeciesRecord{
			RunID:           stats.RunID,
			Generation:      stats.Generation,
			Threshold:       stats.Threshold,
			PopMaxFitness:   stats.MaxFitness,
			SpeciesID:       sp.ID,
			Members:         sp.Size,
			Staleness:       sp.Staleness,
			Age:             sp.Age,
			AvgFitness:      sp.AverageFitness,
			AdjustedFitness: sp.AdjustedFitness,
			MaxFitness:      sp.MaxFitness,
			RepNeurons:      sp.Neurons,
			RepSynapses:     sp.Synapses,
		})
	}
	return records
}

// ReportGeneration implements neat.Reporter.
func (r *CSVReporter) ReportGeneration(stats *neat.GenerationStats) error {
	records := Records(stats)
	if len(records) == 0 {
		return nil
	}

	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing species stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("writing species stats: %w", err)
	}
	return nil
}

// Close closes the underlying file when the reporter created it.
func (r *CSVReporter) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
