package neat

// SimulationInfo is the per-genome state shared with a Simulation. The
// simulation fills Inputs, calls Run, reads Outputs, and reports progress
// through Fitness, Done and Perfect. UserData carries caller state the
// population passes through untouched.
type SimulationInfo[U any] struct {
	Inputs   []float64
	Outputs  []float64
	Fitness  float64
	Done     bool
	Perfect  bool
	UserData U

	genome *Genome[U]
}

// Genome returns the genome being simulated. Callers must not modify it.
func (info *SimulationInfo[U]) Genome() *Genome[U] {
	return info.genome
}

// AssignInputs copies values into the inputs buffer.
func (info *SimulationInfo[U]) AssignInputs(values ...float64) {
	info.Inputs = append(info.Inputs[:0], values...)
}

// Run evaluates the genome's brain on Inputs and stores the result in Outputs.
func (info *SimulationInfo[U]) Run(act ActivationFunc) error {
	outputs, err := info.genome.Brain.RunNetwork(info.Inputs, act)
	if err != nil {
		return err
	}
	info.Outputs = outputs
	return nil
}

// Simulation is the task a genome is evaluated on. Step is called once per
// population tick until the simulation sets info.Done.
type Simulation[U any] interface {
	Step(info *SimulationInfo[U]) error
}

// SimulationInitializer is implemented by simulations that need setup. Init
// is called once, before the first Step.
type SimulationInitializer[U any] interface {
	Init(info *SimulationInfo[U]) error
}

// SimulationSkipper is implemented by simulations that want to be notified
// on ticks where their genome is already done. Skip replaces Step.
type SimulationSkipper[U any] interface {
	Skip(info *SimulationInfo[U]) error
}

// SimulationFactory creates the simulation for a new genome.
type SimulationFactory[U any] func() Simulation[U]

// Singleton returns a factory that hands the same simulation to every
// genome. It suits stateless simulations that keep all per-genome state in
// SimulationInfo.
func Singleton[U any](sim Simulation[U]) SimulationFactory[U] {
	return func() Simulation[U] { return sim }
}
