package neat

import "fmt"

// NeuronRole defines the role a neuron plays in the network.
type NeuronRole int

const (
	InputNeuron NeuronRole = iota
	OutputNeuron
	HiddenNeuron
)

// String returns the role name.
func (r NeuronRole) String() string {
	switch r {
	case InputNeuron:
		return "input"
	case OutputNeuron:
		return "output"
	case HiddenNeuron:
		return "hidden"
	default:
		return fmt.Sprintf("NeuronRole(%d)", int(r))
	}
}

// --------------------------- Neuron ---------------------------

// Neuron represents a node gene. ID equals the neuron's index in Brain.Neurons
// and never changes for the lifetime of the genome.
type Neuron struct {
	ID         int
	Role       NeuronRole
	Layer      int     // Recomputed by Brain.RebuildLayers, never set directly by callers
	Activation float64 // Value computed by the last RunNetwork call
}

// String returns a string representation of the Neuron.
func (n Neuron) String() string {
	return fmt.Sprintf("Neuron(ID: %d, Role: %s, Layer: %d)", n.ID, n.Role, n.Layer)
}

// --------------------------- Synapse ---------------------------

// Synapse represents a connection gene between two neurons of the same brain.
type Synapse struct {
	Source     int // Neuron ID
	Target     int // Neuron ID
	Weight     float64
	Enabled    bool
	Innovation int // Historical marking from the run's InnovationHistory
}

// Key returns the (source, target) pair of the synapse.
func (s Synapse) Key() ConnectionKey {
	return ConnectionKey{Source: s.Source, Target: s.Target}
}

// String returns a string representation of the Synapse.
func (s Synapse) String() string {
	return fmt.Sprintf("Synapse(%d->%d, Weight: %.3f, Enabled: %t, Innovation: %d)",
		s.Source, s.Target, s.Weight, s.Enabled, s.Innovation)
}

// mutateWeight applies the configured weight mutation scheme to the synapse.
func (s *Synapse) mutateWeight(run *Run) {
	m := run.Config.Mutate
	if run.Rand.Canonical() < m.RedrawWeight {
		s.Weight = run.Rand.Weight()
		return
	}
	if run.Rand.Canonical() >= m.WeightRate {
		return
	}

	switch m.WeightScheme {
	case WeightSchemeGaussian:
		s.Weight += run.Rand.Gaussian() / m.WeightDivisor
	default:
		s.Weight += run.Rand.Range(-m.WeightAmount, m.WeightAmount)
		s.Weight = clamp(s.Weight, m.WeightMin, m.WeightMax)
	}
}
