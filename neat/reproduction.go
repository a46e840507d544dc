package neat

import (
	"github.com/sirupsen/logrus"
)

// Member is a genome as seen by reproduction: its brain and raw fitness.
type Member struct {
	Brain   *Brain
	Fitness float64
}

// Reproduction handles the creation of new brains, either from scratch or
// through crossover and mutation.
type Reproduction struct {
	Run    *Run
	Logger *logrus.Logger
}

// NewReproduction creates a new reproduction manager.
func NewReproduction(run *Run, logger *logrus.Logger) *Reproduction {
	return &Reproduction{Run: run, Logger: logger}
}

// CreateNewPopulation creates popSize brains with random initial topology.
func (r *Reproduction) CreateNewPopulation(popSize int) []*Brain {
	brains := make([]*Brain, 0, popSize)
	for i := 0; i < popSize; i++ {
		brains = append(brains, NewBrain(r.Run, true))
	}
	return brains
}

// Reproduce creates the brains of the next generation. members holds each
// species' members sorted by descending fitness and average is the
// population-wide mean of the fitness measure selected by use_adjusted_fitness.
// The result always has exactly popSize brains: short falls are padded with
// random brains.
//
// Each species' quota is floored at minimum_size before the elite copy is
// subtracted. A child is a plain copy of one parent with probability
// clone_rate and otherwise a mutated crossover of two parents.
func (r *Reproduction) Reproduce(species []*Species, members map[int][]Member, average float64, popSize int) []*Brain {
	cfg := r.Run.Config
	children := make([]*Brain, 0, popSize)

	for _, sp := range species {
		ms := members[sp.ID]
		if len(ms) == 0 {
			continue
		}

		eliteCopied := 0
		if sp.Size > cfg.Crossover.EliteSize && len(children) < popSize {
			children = append(children, ms[0].Brain.Clone())
			eliteCopied = 1
		}

		spawn := max(computeSpawnAmount(sp, average, cfg.Crossover.UseAdjustedFitness), cfg.Species.MinimumSize) - eliteCopied
		r.Logger.WithFields(logrus.Fields{
			"species": sp.ID,
			"size":    sp.Size,
			"elite":   eliteCopied,
			"spawn":   spawn,
		}).Debug("Species offspring quota")

		for i := 0; i < spawn && len(children) < popSize; i++ {
			children = append(children, r.offspring(sp, ms))
		}
	}

	if padding := popSize - len(children); padding > 0 {
		r.Logger.WithField("count", padding).Debug("Padding population with random brains")
		children = append(children, r.CreateNewPopulation(padding)...)
	}
	return children
}

// offspring creates one child from the members of a species.
func (r *Reproduction) offspring(sp *Species, ms []Member) *Brain {
	if rate := r.Run.Config.Crossover.CloneRate; rate > 0 && r.Run.Rand.Canonical() < rate {
		return r.selectParent(sp, ms).Brain.Clone()
	}

	best := r.selectParent(sp, ms)
	worst := r.selectParent(sp, ms)
	if worst.Fitness > best.Fitness {
		best, worst = worst, best
	}
	child := Crossover(r.Run, best.Brain, worst.Brain)
	child.Mutate(r.Run)
	return child
}

// selectParent picks a member using the configured selection scheme.
func (r *Reproduction) selectParent(sp *Species, ms []Member) Member {
	if r.Run.Config.Crossover.Selection == SelectionSkewed {
		return r.skewed(ms)
	}
	return r.roulette(sp, ms)
}

// skewed selects by rank: members are sorted best first and the draw is
// pushed towards index 0 by selection_strength.
func (r *Reproduction) skewed(members []Member) Member {
	idx := int(r.Run.Rand.CanonicalSkewedLow(r.Run.Config.Crossover.SelectionStrength) * float64(len(members)))
	return members[min(idx, len(members)-1)]
}

// computeSpawnAmount returns the offspring quota of a species before the
// elite copy is subtracted: (species fitness / average) * species size. A
// non-positive average leaves the quota at the species size.
func computeSpawnAmount(sp *Species, average float64, useAdjusted bool) int {
	if average <= 0 {
		return sp.Size
	}
	fitness := sp.AverageFitness()
	if useAdjusted {
		fitness = sp.AdjustedFitness()
	}
	spawn := int((fitness / average) * float64(sp.Size))
	return max(spawn, 0)
}

// roulette selects a member with probability proportional to its fitness.
// A species without positive total fitness falls back to a uniform pick, and
// a draw that is never exceeded because of rounding returns the last member.
func (r *Reproduction) roulette(sp *Species, members []Member) Member {
	if sp.TotalFitness <= 0 {
		return members[r.Run.Rand.Intn(len(members))]
	}

	target := r.Run.Rand.Range(0, sp.TotalFitness)
	runningSum := 0.0
	for _, m := range members {
		runningSum += m.Fitness
		if runningSum > target {
			return m
		}
	}

	r.Logger.WithFields(logrus.Fields{
		"species": sp.ID,
		"target":  target,
		"sum":     runningSum,
	}).Debug("Roulette selection fell through, using last member")
	return members[len(members)-1]
}
