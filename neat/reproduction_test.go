package neat

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestComputeSpawnAmount(t *testing.T) {
	sp := &Species{Size: 4, TotalFitness: 8, TotalAdjustedFitness: 2}

	tests := []struct {
		name        string
		average     float64
		useAdjusted bool
		want        int
	}{
		{"raw at average", 2, false, 4},
		{"raw above average", 1, false, 8},
		{"adjusted", 0.25, true, 8},
		{"adjusted below average", 1, true, 2},
		{"zero average", 0, true, 4},
		{"negative average", -1, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeSpawnAmount(sp, tt.average, tt.useAdjusted))
		})
	}

	negative := &Species{Size: 2, TotalFitness: -4}
	assert.Zero(t, computeSpawnAmount(negative, 1, false))
}

func TestRouletteZeroFitness(t *testing.T) {
	run := newTestRun(t, nil)
	r := NewReproduction(run, quietLogger())
	members := []Member{{Brain: brainWithGenes(), Fitness: 0}, {Brain: brainWithGenes(), Fitness: 0}}
	sp := &Species{Size: 2}

	seen := map[*Brain]bool{}
	for i := 0; i < 100; i++ {
		seen[r.roulette(sp, members).Brain] = true
	}
	assert.Len(t, seen, 2)
}

func TestRouletteFavoursFitMembers(t *testing.T) {
	run := newTestRun(t, nil)
	r := NewReproduction(run, quietLogger())
	fit, unfit := brainWithGenes(), brainWithGenes()
	members := []Member{{Brain: fit, Fitness: 9}, {Brain: unfit, Fitness: 1}}
	sp := &Species{Size: 2, TotalFitness: 10}

	picks := 0
	for i := 0; i < 1000; i++ {
		if r.roulette(sp, members).Brain == fit {
			picks++
		}
	}
	assert.Greater(t, picks, 800)
	assert.Less(t, picks, 980)
}

func TestRouletteFallsThroughToLast(t *testing.T) {
	run := newTestRun(t, nil)
	r := NewReproduction(run, quietLogger())
	last := brainWithGenes()
	// A stale total larger than the members' sum can exhaust the wheel.
	members := []Member{{Brain: brainWithGenes(), Fitness: 0}, {Brain: last, Fitness: 0}}
	sp := &Species{Size: 2, TotalFitness: 10}

	assert.Same(t, last, r.roulette(sp, members).Brain)
}

func speciateForTest(t *testing.T, run *Run, brains []*Brain, fitness []float64) ([]*Species, map[int][]Member, float64) {
	t.Helper()
	ss := NewSpeciesSet()
	ids := make([]int, len(brains))
	for i, b := range brains {
		ids[i] = ss.Assign(b, fitness[i], run.Config, run.Config.Species.CompatibilityThreshold, 0).ID
	}
	members := map[int][]Member{}
	total := 0.0
	for i, b := range brains {
		s := ss.Get(ids[i])
		adjusted := fitness[i] / float64(s.Size)
		s.TotalAdjustedFitness += adjusted
		total += adjusted
		members[s.ID] = append(members[s.ID], Member{Brain: b, Fitness: fitness[i]})
	}
	return ss.Species, members, total / float64(len(brains))
}

func TestReproduceKeepsPopulationSize(t *testing.T) {
	for _, popSize := range []int{1, 7, 30} {
		run := newTestRun(t, func(c *Config) {
			c.Setup.PopulationSize = popSize
			c.Crossover.EliteSize = 2
		})
		r := NewReproduction(run, quietLogger())
		brains := r.CreateNewPopulation(popSize)
		fitness := make([]float64, popSize)
		for i := range fitness {
			fitness[i] = float64(popSize - i)
		}

		species, members, average := speciateForTest(t, run, brains, fitness)
		children := r.Reproduce(species, members, average, popSize)

		require.Len(t, children, popSize)
		for _, c := range children {
			require.NoError(t, c.Validate())
		}
	}
}

func TestReproduceCopiesElite(t *testing.T) {
	run := newTestRun(t, func(c *Config) {
		fullyConnected(c)
		c.Crossover.EliteSize = 1
		c.Species.CompatibilityThreshold = 100
	})
	r := NewReproduction(run, quietLogger())
	brains := r.CreateNewPopulation(4)
	fitness := []float64{4, 3, 2, 1}

	species, members, average := speciateForTest(t, run, brains, fitness)
	require.Len(t, species, 1)
	children := r.Reproduce(species, members, average, 4)

	require.Len(t, children, 4)
	assert.Equal(t, brains[0], children[0])
	assert.NotSame(t, brains[0], children[0])
}

func TestReproduceEmptySpeciesPadsRandomly(t *testing.T) {
	run := newTestRun(t, nil)
	r := NewReproduction(run, quietLogger())

	children := r.Reproduce(nil, nil, 0, 5)
	require.Len(t, children, 5)
	for _, c := range children {
		assert.NoError(t, c.Validate())
	}
}

func TestSkewedSelectionFavoursTopRank(t *testing.T) {
	run := newTestRun(t, func(c *Config) {
		c.Crossover.Selection = SelectionSkewed
		c.Crossover.SelectionStrength = 4
	})
	r := NewReproduction(run, quietLogger())
	members := make([]Member, 4)
	for i := range members {
		members[i] = Member{Brain: brainWithGenes(), Fitness: float64(4 - i)}
	}
	// Fitness is ignored by rank selection, so a zero total must not matter.
	sp := &Species{Size: 4}

	picks := make([]int, len(members))
	for i := 0; i < 2000; i++ {
		chosen := r.selectParent(sp, members)
		for j, m := range members {
			if m.Brain == chosen.Brain {
				picks[j]++
			}
		}
	}
	assert.Equal(t, 2000, picks[0]+picks[1]+picks[2]+picks[3])
	assert.Greater(t, picks[0], 1200)
	assert.Positive(t, picks[3])
	assert.Less(t, picks[3], 300)
	assert.Greater(t, picks[1], picks[3])
}

func TestReproduceCloneRate(t *testing.T) {
	run := newTestRun(t, func(c *Config) {
		fullyConnected(c)
		c.Crossover.EliteSize = 10
		c.Crossover.CloneRate = 1
		c.Species.CompatibilityThreshold = 100
	})
	r := NewReproduction(run, quietLogger())
	brains := r.CreateNewPopulation(6)
	fitness := []float64{6, 5, 4, 3, 2, 1}

	species, members, average := speciateForTest(t, run, brains, fitness)
	require.Len(t, species, 1)
	children := r.Reproduce(species, members, average, 6)

	require.Len(t, children, 6)
	for _, c := range children {
		assert.Contains(t, brains, c, "every child is an unmutated parent copy")
		for _, b := range brains {
			assert.NotSame(t, b, c)
		}
	}
}

func TestReproduceMinimumSpeciesSize(t *testing.T) {
	run := newTestRun(t, func(c *Config) {
		c.Crossover.EliteSize = 10
		c.Crossover.UseAdjustedFitness = false
		c.Species.MinimumSize = 3
	})
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := NewReproduction(run, logger)

	brains := r.CreateNewPopulation(4)
	strong := &Species{ID: 1, Size: 2, TotalFitness: 20}
	weak := &Species{ID: 2, Size: 2}
	members := map[int][]Member{
		1: {{Brain: brains[0], Fitness: 12}, {Brain: brains[1], Fitness: 8}},
		2: {{Brain: brains[2], Fitness: 0}, {Brain: brains[3], Fitness: 0}},
	}

	children := r.Reproduce([]*Species{strong, weak}, members, 5, 10)
	require.Len(t, children, 10)

	spawn := map[any]any{}
	for _, e := range hook.AllEntries() {
		if e.Message == "Species offspring quota" {
			spawn[e.Data["species"]] = e.Data["spawn"]
		}
	}
	assert.Equal(t, 4, spawn[1], "quota above the floor is unchanged")
	assert.Equal(t, 3, spawn[2], "zero quota is raised to minimum_size")
}
