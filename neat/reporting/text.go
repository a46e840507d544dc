package reporting

import (
	"fmt"
	"io"

	"github.com/baldhumanity/layered-neat/neat"
	"github.com/sirupsen/logrus"
)

// TextReporter writes the statistics table of every generation to a writer.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a reporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// ReportGeneration implements neat.Reporter.
func (r *TextReporter) ReportGeneration(stats *neat.GenerationStats) error {
	if _, err := fmt.Fprintln(r.w, stats.String()); err != nil {
		return fmt.Errorf("writing statistics: %w", err)
	}
	return nil
}

// LogReporter logs one structured entry per species.
type LogReporter struct {
	logger *logrus.Logger
	level  logrus.Level
}

// NewLogReporter creates a reporter logging at level.
func NewLogReporter(logger *logrus.Logger, level logrus.Level) *LogReporter {
	return &LogReporter{logger: logger, level: level}
}

// ReportGeneration implements neat.Reporter.
func (r *LogReporter) ReportGeneration(stats *neat.GenerationStats) error {
	entry := r.logger.WithFields(logrus.Fields{
		"run_id":     stats.RunID,
		"generation": stats.Generation,
	})
	entry.WithFields(logrus.Fields{
		"population":     stats.PopulationSize,
		"max_fitness":    stats.MaxFitness,
		"best_fitness":   stats.BestFitness,
		"min_fitness":    stats.MinFitness,
		"mean_fitness":   stats.MeanFitness,
		"stdev_fitness":  stats.StdevFitness,
		"median_fitness": stats.MedianFitness,
		"threshold":      stats.Threshold,
		"species":        len(stats.Species),
	}).Log(r.level, "Generation statistics")

	for _, sp := range stats.Species {
		entry.WithFields(logrus.Fields{
			"species":     sp.ID,
			"members":     sp.Size,
			"staleness":   sp.Staleness,
			"age":         sp.Age,
			"avg_fitness": sp.AverageFitness,
			"max_fitness": sp.MaxFitness,
			"neurons":     sp.Neurons,
			"synapses":    sp.Synapses,
		}).Log(r.level, "Species statistics")
	}
	return nil
}
