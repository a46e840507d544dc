package neat

// Genome represents an individual organism in the population: a Brain plus
// the bookkeeping of its current evaluation. Genomes live for a single
// generation; only their brains are carried forward.
type Genome[U any] struct {
	ID              int // Unique identifier within the population.
	Brain           *Brain
	SpeciesID       int
	AdjustedFitness float64

	info        SimulationInfo[U]
	sim         Simulation[U]
	initialized bool
}

// NewGenome wraps brain with a fresh evaluation state driven by sim.
func NewGenome[U any](id int, brain *Brain, sim Simulation[U]) *Genome[U] {
	g := &Genome[U]{
		ID:    id,
		Brain: brain,
		sim:   sim,
	}
	g.info.genome = g
	g.info.Inputs = make([]float64, len(brain.InputIDs()))
	return g
}

// Fitness returns the fitness accumulated by the simulation so far.
func (g *Genome[U]) Fitness() float64 {
	return g.info.Fitness
}

// Done reports whether the simulation has finished evaluating the genome.
func (g *Genome[U]) Done() bool {
	return g.info.Done
}

// Perfect reports whether the simulation judged the genome a perfect solution.
func (g *Genome[U]) Perfect() bool {
	return g.info.Perfect
}

// Info exposes the simulation state of the genome.
func (g *Genome[U]) Info() *SimulationInfo[U] {
	return &g.info
}

// Step advances the genome's simulation by one tick. Done genomes are passed
// to Skip instead when the simulation implements it.
func (g *Genome[U]) Step(userData U) error {
	g.info.UserData = userData

	if g.info.Done {
		if skipper, ok := g.sim.(SimulationSkipper[U]); ok {
			return skipper.Skip(&g.info)
		}
		return nil
	}

	if !g.initialized {
		g.initialized = true
		if initializer, ok := g.sim.(SimulationInitializer[U]); ok {
			if err := initializer.Init(&g.info); err != nil {
				return err
			}
		}
	}
	return g.sim.Step(&g.info)
}
