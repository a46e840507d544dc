package neat

// Run bundles the state shared by every genome of one evolutionary run.
// Brain operations that allocate innovations or draw randomness take it
// explicitly; nothing in this package keeps run state in globals.
type Run struct {
	Config      *Config
	Innovations *InnovationHistory
	Rand        *Random
}

// NewRun creates a run with an empty innovation history and a generator
// seeded from config.Setup.Seed.
func NewRun(config *Config) *Run {
	return &Run{
		Config:      config,
		Innovations: NewInnovationHistory(),
		Rand:        NewRandom(config.Setup.Seed),
	}
}
