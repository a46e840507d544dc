package neat

import "sort"

// Stagnation manages the detection of stale species.
type Stagnation struct {
	Config *SpeciesConfig
}

// NewStagnation creates a new stagnation manager.
func NewStagnation(config *SpeciesConfig) *Stagnation {
	return &Stagnation{Config: config}
}

// StagnationInfo holds the results of the stagnation update for a single species.
type StagnationInfo struct {
	SpeciesID  int
	Species    *Species
	IsStagnant bool
}

// Update ages every species and marks those whose staleness exceeds
// maximum_staleness. The top `elitism` species by MaxFitness among those with
// members this generation are never marked. Results follow the order of the
// species set.
func (s *Stagnation) Update(speciesSet *SpeciesSet) []StagnationInfo {
	for _, sp := range speciesSet.Species {
		sp.AgeGracefully()
	}

	// Rank live species by fitness, best first; ties keep species set order.
	ranked := make([]*Species, 0, len(speciesSet.Species))
	for _, sp := range speciesSet.Species {
		if sp.Size > 0 {
			ranked = append(ranked, sp)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MaxFitness > ranked[j].MaxFitness
	})
	elite := make(map[int]bool, s.Config.Elitism)
	for i := 0; i < s.Config.Elitism && i < len(ranked); i++ {
		elite[ranked[i].ID] = true
	}

	result := make([]StagnationInfo, len(speciesSet.Species))
	for i, sp := range speciesSet.Species {
		result[i] = StagnationInfo{
			SpeciesID:  sp.ID,
			Species:    sp,
			IsStagnant: !elite[sp.ID] && sp.Staleness > s.Config.MaximumStaleness,
		}
	}
	return result
}
