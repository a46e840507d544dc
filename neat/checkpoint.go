package neat

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CheckpointVersion is the snapshot layout written by SaveCheckpoint.
const CheckpointVersion = 1

// ErrCheckpointVersion is returned when a checkpoint has an unsupported layout.
var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// GenomeSnapshot is the persisted part of a Genome. Simulations are not saved.
type GenomeSnapshot struct {
	ID              int
	Brain           *Brain
	SpeciesID       int
	Fitness         float64
	AdjustedFitness float64
	Done            bool
	Perfect         bool
}

// Snapshot holds everything needed to resume a population.
// The random generator is restarted from Seed rather than resumed.
type Snapshot struct {
	Version        int
	RunID          string
	Config         Config
	Seed           int64
	Genomes        []GenomeSnapshot
	Species        []*Species
	SpeciesIndexer int
	Generation     int
	Champion       *Brain
	ChampionID     int
	MaxFitness     float64
	Threshold      float64
	GenerationDone bool
	Finished       bool
	NextGenomeID   int
	Innovations    InnovationSnapshot
}

// Snapshot copies the state of the population.
func (p *Population[U]) Snapshot() *Snapshot {
	snap := &Snapshot{
		Version:        CheckpointVersion,
		RunID:          p.RunID.String(),
		Config:         *p.config,
		Seed:           p.run.Rand.Seed(),
		Genomes:        make([]GenomeSnapshot, 0, len(p.genomes)),
		Species:        make([]*Species, 0, p.species.Len()),
		SpeciesIndexer: p.species.Indexer,
		Generation:     p.generation,
		Champion:       p.champion.Clone(),
		ChampionID:     p.championID,
		MaxFitness:     p.maxFitness,
		Threshold:      p.threshold,
		GenerationDone: p.generationDone,
		Finished:       p.finished,
		NextGenomeID:   p.nextGenomeID,
		Innovations:    p.run.Innovations.Snapshot(),
	}
	for _, g := range p.genomes {
		snap.Genomes = append(snap.Genomes, GenomeSnapshot{
			ID:              g.ID,
			Brain:           g.Brain.Clone(),
			SpeciesID:       g.SpeciesID,
			Fitness:         g.info.Fitness,
			AdjustedFitness: g.AdjustedFitness,
			Done:            g.info.Done,
			Perfect:         g.info.Perfect,
		})
	}
	for _, s := range p.species.Species {
		clone := *s
		clone.Representative = s.Representative.Clone()
		clone.best = nil
		snap.Species = append(snap.Species, &clone)
	}
	return snap
}

// RestorePopulation rebuilds a population from a snapshot. Every genome gets
// a new simulation from factory.
func RestorePopulation[U any](snap *Snapshot, factory SimulationFactory[U], opts ...Option) (*Population[U], error) {
	if snap.Version != CheckpointVersion {
		return nil, fmt.Errorf("%w: %d", ErrCheckpointVersion, snap.Version)
	}
	config := snap.Config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint config: %w", err)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: nil simulation factory", ErrInvalidConfig)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.New()
	}
	if o.run == nil {
		o.run = &Run{
			Config:      &config,
			Innovations: NewInnovationHistory(),
			Rand:        NewRandom(snap.Seed),
		}
	}
	o.run.Innovations.Restore(snap.Innovations)

	runID, err := uuid.Parse(snap.RunID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint run id: %w", err)
	}

	p := newPopulation(&config, factory, o)
	p.RunID = runID
	p.generation = snap.Generation
	p.championID = snap.ChampionID
	p.maxFitness = snap.MaxFitness
	p.threshold = snap.Threshold
	p.generationDone = snap.GenerationDone
	p.finished = snap.Finished
	p.nextGenomeID = snap.NextGenomeID
	p.species.Indexer = snap.SpeciesIndexer

	if snap.Champion == nil {
		return nil, fmt.Errorf("%w: checkpoint has no champion", ErrInvalidBrain)
	}
	if err := snap.Champion.Validate(); err != nil {
		return nil, fmt.Errorf("checkpoint champion: %w", err)
	}
	p.champion = snap.Champion.Clone()

	for _, s := range snap.Species {
		if err := s.Representative.Validate(); err != nil {
			return nil, fmt.Errorf("checkpoint species %d: %w", s.ID, err)
		}
		clone := *s
		clone.Representative = s.Representative.Clone()
		p.species.Species = append(p.species.Species, &clone)
	}

	p.genomes = make([]*Genome[U], 0, len(snap.Genomes))
	for _, gs := range snap.Genomes {
		if gs.Brain == nil {
			return nil, fmt.Errorf("%w: checkpoint genome %d has no brain", ErrInvalidBrain, gs.ID)
		}
		if err := gs.Brain.Validate(); err != nil {
			return nil, fmt.Errorf("checkpoint genome %d: %w", gs.ID, err)
		}
		g := NewGenome(gs.ID, gs.Brain.Clone(), factory())
		g.SpeciesID = gs.SpeciesID
		g.AdjustedFitness = gs.AdjustedFitness
		g.info.Fitness = gs.Fitness
		g.info.Done = gs.Done
		g.info.Perfect = gs.Perfect
		p.genomes = append(p.genomes, g)
	}
	return p, nil
}

// SaveCheckpoint saves the current state of the Population to a file.
// Uses gzip compression for smaller file size.
func (p *Population[U]) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(p.Snapshot()); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}

	p.logger.WithFields(logrus.Fields{
		"path":       filePath,
		"generation": p.generation,
	}).Info("Checkpoint saved")
	return nil
}

// ReadSnapshot decodes a checkpoint file without building a population.
func ReadSnapshot(checkpointPath string) (*Snapshot, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	snap := &Snapshot{}
	if err := gob.NewDecoder(gzReader).Decode(snap); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	return snap, nil
}

// LoadCheckpoint loads a Population from a checkpoint file. Simulations are
// not persisted, so the caller supplies the factory for the restored genomes.
func LoadCheckpoint[U any](checkpointPath string, factory SimulationFactory[U], opts ...Option) (*Population[U], error) {
	snap, err := ReadSnapshot(checkpointPath)
	if err != nil {
		return nil, err
	}
	p, err := RestorePopulation(snap, factory, opts...)
	if err != nil {
		return nil, err
	}
	p.logger.WithFields(logrus.Fields{
		"path":       checkpointPath,
		"generation": p.generation,
	}).Info("Checkpoint loaded")
	return p, nil
}
