package neat

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Option configures optional collaborators of a Population.
type Option func(*options)

type options struct {
	logger    *logrus.Logger
	reporters []Reporter
	run       *Run
}

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithReporter adds a reporter notified at every generation transition.
func WithReporter(r Reporter) Option {
	return func(o *options) { o.reporters = append(o.reporters, r) }
}

// WithRun makes the population draw randomness and innovation numbers from
// an existing run, so several populations can share one innovation history.
func WithRun(run *Run) Option {
	return func(o *options) { o.run = run }
}

// Population holds the state of the NEAT evolutionary process and drives its
// genomes through their simulations.
type Population[U any] struct {
	RunID uuid.UUID

	config       *Config
	run          *Run
	logger       *logrus.Logger
	reporters    []Reporter
	factory      SimulationFactory[U]
	reproduction *Reproduction
	stagnation   *Stagnation

	genomes        []*Genome[U]
	species        *SpeciesSet
	generation     int
	champion       *Brain
	championID     int
	maxFitness     float64
	threshold      float64
	generationDone bool
	finished       bool
	nextGenomeID   int
}

// NewPopulation creates a population of config.Setup.PopulationSize random
// genomes, each driven by a simulation obtained from factory. The population
// keeps its own copy of config.
func NewPopulation[U any](config *Config, factory SimulationFactory[U], opts ...Option) (*Population[U], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.Clone()
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
		o.run = NewRun(config)
	}

	p := newPopulation(config, factory, o)
	p.RunID = uuid.New()
	p.champion = NewBrain(p.run, true)
	p.threshold = config.Species.CompatibilityThreshold
	p.installBrains(p.reproduction.CreateNewPopulation(config.Setup.PopulationSize))

	p.logger.WithFields(logrus.Fields{
		"run_id":     p.RunID,
		"population": len(p.genomes),
		"seed":       p.run.Rand.Seed(),
	}).Info("Population created")
	return p, nil
}

func newPopulation[U any](config *Config, factory SimulationFactory[U], o options) *Population[U] {
	return &Population[U]{
		config:       config,
		run:          o.run,
		logger:       o.logger,
		reporters:    o.reporters,
		factory:      factory,
		reproduction: NewReproduction(o.run, o.logger),
		stagnation:   NewStagnation(&config.Species),
		species:      NewSpeciesSet(),
	}
}

// installBrains replaces the genome collection with fresh genomes wrapping brains.
func (p *Population[U]) installBrains(brains []*Brain) {
	genomes := make([]*Genome[U], 0, len(brains))
	for _, b := range brains {
		genomes = append(genomes, NewGenome(p.nextGenomeID, b, p.factory()))
		p.nextGenomeID++
	}
	p.genomes = genomes
}

// Step advances every genome by one simulation tick and updates the champion.
// Genomes that are already done are skipped. The generation is done once
// every genome is done.
func (p *Population[U]) Step(userData U) error {
	doneCount := 0
	for _, g := range p.genomes {
		if err := g.Step(userData); err != nil {
			return fmt.Errorf("genome %d step failed in generation %d: %w", g.ID, p.generation, err)
		}
		if g.Done() {
			doneCount++
		}
		if g.Fitness() > p.maxFitness {
			p.maxFitness = g.Fitness()
			p.champion = g.Brain.Clone()
			p.championID++
			p.logger.WithFields(logrus.Fields{
				"generation": p.generation,
				"genome":     g.ID,
				"fitness":    p.maxFitness,
			}).Debug("New champion")
		}
		if g.Perfect() && !p.finished {
			p.finished = true
			p.logger.WithFields(logrus.Fields{
				"generation": p.generation,
				"genome":     g.ID,
			}).Info("Perfect genome found")
		}
	}
	p.generationDone = doneCount == len(p.genomes)
	return nil
}

// NewGeneration speciates the finished generation, removes stale and empty
// species, and replaces the genomes with the offspring of the survivors.
func (p *Population[U]) NewGeneration() error {
	p.generationDone = false
	cfg := p.config

	// Speciate.
	sort.SliceStable(p.genomes, func(i, j int) bool {
		return p.genomes[i].Fitness() > p.genomes[j].Fitness()
	})
	p.species.NewGeneration()
	for _, g := range p.genomes {
		s := p.species.Assign(g.Brain, g.Fitness(), cfg, p.threshold, p.generation)
		g.SpeciesID = s.ID
	}
	if cfg.Species.UpdateRepresentative {
		p.species.UpdateRepresentatives()
	}

	// Age and reap.
	var stale []int
	for _, info := range p.stagnation.Update(p.species) {
		if info.IsStagnant {
			stale = append(stale, info.SpeciesID)
			p.logger.WithFields(logrus.Fields{
				"generation": p.generation,
				"species":    info.SpeciesID,
				"staleness":  info.Species.Staleness,
			}).Debug("Species removed due to stagnation")
		}
	}
	p.species.Remove(stale...)
	if empty := p.species.RemoveEmpty(); len(empty) > 0 {
		p.logger.WithFields(logrus.Fields{
			"generation": p.generation,
			"species":    empty,
		}).Debug("Empty species removed")
	}
	if p.species.Len() == 0 {
		p.logger.WithField("generation", p.generation).Warn("All species went extinct, repopulating at random")
	}

	// Adjusted fitness.
	members := make(map[int][]Member, p.species.Len())
	total := 0.0
	count := 0
	for _, g := range p.genomes {
		s := p.species.Get(g.SpeciesID)
		if s == nil {
			g.AdjustedFitness = 0
			continue
		}
		adjusted := g.Fitness() / float64(s.Size)
		s.TotalAdjustedFitness += adjusted
		g.AdjustedFitness = adjusted
		if cfg.Crossover.UseAdjustedFitness {
			total += adjusted
		} else {
			total += g.Fitness()
		}
		count++
		members[s.ID] = append(members[s.ID], Member{Brain: g.Brain, Fitness: g.Fitness()})
	}
	average := 0.0
	if count > 0 {
		average = total / float64(count)
	}

	stats := p.Stats()
	p.report(stats)

	// Reproduce.
	children := p.reproduction.Reproduce(p.species.Species, members, average, cfg.Setup.PopulationSize)
	if cfg.Setup.Debug {
		for i, child := range children {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("child %d of generation %d: %w", i, p.generation, err)
			}
		}
	}

	p.adjustThreshold()
	p.installBrains(children)
	p.generation++

	p.logger.WithFields(logrus.Fields{
		"generation":  p.generation,
		"species":     p.species.Len(),
		"threshold":   p.threshold,
		"max_fitness": p.maxFitness,
		"distance":    fmt.Sprintf("%.3f±%.3f", stats.DistanceMean, stats.DistanceStdev),
		"innovations": p.run.Innovations.Len(),
	}).Info("Generation complete")
	return nil
}

// adjustThreshold moves the compatibility threshold one step towards the
// configured species count. It never drops below zero.
func (p *Population[U]) adjustThreshold() {
	sp := p.config.Species
	switch n := p.species.Len(); {
	case n > sp.CountTarget:
		p.threshold += sp.CompatibilityModifier
	case n < sp.CountTarget:
		p.threshold = max(0, p.threshold-sp.CompatibilityModifier)
	}
}

func (p *Population[U]) report(stats *GenerationStats) {
	for _, r := range p.reporters {
		if err := r.ReportGeneration(stats); err != nil {
			p.logger.WithError(err).WithField("generation", p.generation).Warn("Reporter failed")
		}
	}
}

// Stats summarizes the current generation and its species.
func (p *Population[U]) Stats() *GenerationStats {
	fitnesses := make([]float64, len(p.genomes))
	for i, g := range p.genomes {
		fitnesses[i] = g.Fitness()
	}
	distMean, distStdev := p.species.DistanceStats()

	stats := &GenerationStats{
		RunID:          p.RunID.String(),
		Generation:     p.generation,
		PopulationSize: len(p.genomes),
		MaxFitness:     p.maxFitness,
		BestFitness:    MaxFloat(fitnesses),
		MinFitness:     MinFloat(fitnesses),
		MeanFitness:    Mean(fitnesses),
		StdevFitness:   Stdev(fitnesses),
		MedianFitness:  Median(fitnesses),
		Threshold:      p.threshold,
		DistanceMean:   distMean,
		DistanceStdev:  distStdev,
		Species:        make([]SpeciesStats, 0, p.species.Len()),
	}
	for _, s := range p.species.Species {
		stats.Species = append(stats.Species, SpeciesStats{
			ID:              s.ID,
			Size:            s.Size,
			Staleness:       s.Staleness,
			Age:             s.Age,
			AverageFitness:  s.AverageFitness(),
			AdjustedFitness: s.AdjustedFitness(),
			MaxFitness:      s.MaxFitness,
			Neurons:         len(s.Representative.Neurons),
			Synapses:        len(s.Representative.Synapses),
		})
	}
	return stats
}

// RunGeneration steps the population until every genome is done, then
// performs the generation transition. The simulation must eventually mark
// every genome done.
func (p *Population[U]) RunGeneration(userData U) error {
	for !p.generationDone {
		if err := p.Step(userData); err != nil {
			return err
		}
	}
	return p.NewGeneration()
}

// Evolve runs generations until a genome is perfect, maxGenerations
// generations have been evaluated (0 means no limit) or ctx is cancelled.
// The context is checked between ticks. It returns the champion.
func (p *Population[U]) Evolve(ctx context.Context, userData U, maxGenerations int) (*Brain, error) {
	for evaluated := 0; maxGenerations <= 0 || evaluated < maxGenerations; evaluated++ {
		for !p.generationDone {
			if err := ctx.Err(); err != nil {
				return p.Champion(), err
			}
			if err := p.Step(userData); err != nil {
				return p.Champion(), err
			}
		}
		if p.finished {
			break
		}
		if err := p.NewGeneration(); err != nil {
			return p.Champion(), err
		}
	}
	return p.Champion(), nil
}

// Generation returns the number of completed generation transitions.
func (p *Population[U]) Generation() int { return p.generation }

// GenerationIsDone reports whether every genome of the current generation is done.
func (p *Population[U]) GenerationIsDone() bool { return p.generationDone }

// Finished reports whether any genome has been judged perfect.
func (p *Population[U]) Finished() bool { return p.finished }

// MaxFitness returns the best fitness seen so far.
func (p *Population[U]) MaxFitness() float64 { return p.maxFitness }

// Champion returns a copy of the best brain seen so far.
func (p *Population[U]) Champion() *Brain { return p.champion.Clone() }

// ChampionID changes every time the champion improves.
func (p *Population[U]) ChampionID() int { return p.championID }

// Threshold returns the current compatibility threshold.
func (p *Population[U]) Threshold() float64 { return p.threshold }

// SpeciesCount returns the number of living species.
func (p *Population[U]) SpeciesCount() int { return p.species.Len() }

// Species returns the living species. Callers must not modify them.
func (p *Population[U]) Species() []*Species { return p.species.Species }

// PopulationCount returns the number of genomes in the current generation.
func (p *Population[U]) PopulationCount() int { return len(p.genomes) }

// Genomes returns the genomes of the current generation.
func (p *Population[U]) Genomes() []*Genome[U] { return p.genomes }

// Config returns the configuration of the population.
func (p *Population[U]) Config() *Config { return p.config }

// Run returns the run state shared by the population's genomes.
func (p *Population[U]) Run() *Run { return p.run }
