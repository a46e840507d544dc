package neat

// Species represents a group of genetically similar genomes. It does not own
// its members; it keeps a snapshot of a representative brain and statistics
// accumulated from the live population each generation.
type Species struct {
	ID                   int
	Created              int    // Generation number when the species was created.
	Representative       *Brain // Snapshot, never shared with a live genome.
	Size                 int
	TotalFitness         float64
	TotalAdjustedFitness float64
	MaxFitness           float64 // Best fitness seen in any member so far.
	MaxFitnessRecord     float64 // MaxFitness as of the last improvement.
	Staleness            int     // Generations since MaxFitnessRecord last improved.
	Age                  int

	best *Brain // First (fittest) member assigned this generation.
}

// NewSpecies creates a species with a single member.
func NewSpecies(id, generation int, representative *Brain) *Species {
	return &Species{
		ID:             id,
		Created:        generation,
		Representative: representative.Clone(),
		Size:           1,
	}
}

// NewGeneration resets the per-generation accumulators.
func (s *Species) NewGeneration() {
	s.Size = 0
	s.TotalFitness = 0
	s.TotalAdjustedFitness = 0
	s.best = nil
}

// AgeGracefully records an improvement or increments staleness, then ages the species.
func (s *Species) AgeGracefully() {
	if s.MaxFitness > s.MaxFitnessRecord {
		s.MaxFitnessRecord = s.MaxFitness
		s.Staleness = 0
	} else {
		s.Staleness++
	}
	s.Age++
}

// AverageFitness returns the mean raw fitness of the current members.
func (s *Species) AverageFitness() float64 {
	if s.Size == 0 {
		return 0
	}
	return s.TotalFitness / float64(s.Size)
}

// AdjustedFitness returns the mean adjusted fitness of the current members.
func (s *Species) AdjustedFitness() float64 {
	if s.Size == 0 {
		return 0
	}
	return s.TotalAdjustedFitness / float64(s.Size)
}

func (s *Species) add(brain *Brain, fitness float64) {
	if s.best == nil {
		s.best = brain
	}
	s.Size++
	s.TotalFitness += fitness
	if fitness > s.MaxFitness {
		s.MaxFitness = fitness
	}
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the ordered collection of species of a population.
// Assignment is first-match, so the order is significant.
type SpeciesSet struct {
	Species []*Species
	Indexer int // Next species ID (starts at 1)

	distances []float64 // Distances computed during the current speciation.
}

// NewSpeciesSet creates an empty species set.
func NewSpeciesSet() *SpeciesSet {
	return &SpeciesSet{Indexer: 1}
}

// Len returns the number of species.
func (ss *SpeciesSet) Len() int {
	return len(ss.Species)
}

// Get returns the species with the given ID, or nil.
func (ss *SpeciesSet) Get(id int) *Species {
	for _, s := range ss.Species {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// NewGeneration resets every species ahead of speciation.
func (ss *SpeciesSet) NewGeneration() {
	for _, s := range ss.Species {
		s.NewGeneration()
	}
	ss.distances = ss.distances[:0]
}

// Assign places a genome into the first species whose representative is
// closer than threshold and accumulates its fitness there. If no species is
// compatible a new one is founded with the brain as representative.
func (ss *SpeciesSet) Assign(brain *Brain, fitness float64, config *Config, threshold float64, generation int) *Species {
	for _, s := range ss.Species {
		d := brain.Distance(s.Representative, config)
		ss.distances = append(ss.distances, d)
		if d < threshold {
			s.add(brain, fitness)
			return s
		}
	}

	s := NewSpecies(ss.Indexer, generation, brain)
	ss.Indexer++
	s.best = brain
	s.TotalFitness = fitness
	s.MaxFitness = fitness
	ss.Species = append(ss.Species, s)
	return s
}

// UpdateRepresentatives replaces each species' representative with its
// fittest member of the current generation.
func (ss *SpeciesSet) UpdateRepresentatives() {
	for _, s := range ss.Species {
		if s.best != nil {
			s.Representative = s.best.Clone()
		}
	}
}

// Remove deletes the species with the given IDs, keeping the order of the rest.
func (ss *SpeciesSet) Remove(ids ...int) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := ss.Species[:0]
	for _, s := range ss.Species {
		if !drop[s.ID] {
			kept = append(kept, s)
		}
	}
	ss.Species = kept
}

// RemoveEmpty deletes species without members and returns their IDs.
func (ss *SpeciesSet) RemoveEmpty() []int {
	var empty []int
	for _, s := range ss.Species {
		if s.Size == 0 {
			empty = append(empty, s.ID)
		}
	}
	ss.Remove(empty...)
	return empty
}

// DistanceStats returns the mean and standard deviation of the genetic
// distances computed during the last speciation.
func (ss *SpeciesSet) DistanceStats() (mean, stdev float64) {
	return Mean(ss.distances), Stdev(ss.distances)
}
