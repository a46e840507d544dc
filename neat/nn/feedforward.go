package nn

import (
	"fmt"

	"github.com/baldhumanity/layered-neat/neat"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// link is an enabled incoming synapse of a neuron.
type link struct {
	Source int
	Weight float64
}

// FeedForwardNetwork is a read-only phenotype compiled from a Brain. Unlike
// Brain.RunNetwork it keeps no state between activations, so one network can
// be activated from several goroutines at once.
type FeedForwardNetwork struct {
	InputIDs   []int // Input neuron IDs in declaration order
	OutputIDs  []int // Output neuron IDs in declaration order
	EvalOrder  []int // Non-input neuron IDs in topological order
	Activation neat.ActivationFunc

	incoming [][]link // Indexed by neuron ID
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a brain.
// Only enabled synapses take part. The evaluation order comes from a
// topological sort of the synapse graph, which also rejects cycles.
func CreateFeedForwardNetwork(b *neat.Brain, act neat.ActivationFunc) (*FeedForwardNetwork, error) {
	if act == nil {
		return nil, fmt.Errorf("nil activation function")
	}

	g := simple.NewDirectedGraph()
	for i, n := range b.Neurons {
		if n.ID != i {
			return nil, fmt.Errorf("%w: neuron at index %d has ID %d", neat.ErrInvalidBrain, i, n.ID)
		}
		g.AddNode(simple.Node(n.ID))
	}

	incoming := make([][]link, len(b.Neurons))
	for _, s := range b.Synapses {
		if !s.Enabled {
			continue
		}
		if s.Source < 0 || s.Source >= len(b.Neurons) || s.Target < 0 || s.Target >= len(b.Neurons) {
			return nil, fmt.Errorf("synapse %d -> %d: %w", s.Source, s.Target, neat.ErrUnknownNeuron)
		}
		if s.Source == s.Target {
			return nil, fmt.Errorf("synapse %d -> %d: %w", s.Source, s.Target, neat.ErrSelfLoop)
		}
		g.SetEdge(g.NewEdge(simple.Node(s.Source), simple.Node(s.Target)))
		incoming[s.Target] = append(incoming[s.Target], link{Source: s.Source, Weight: s.Weight})
	}

	sorted, err := topo.SortStabilized(g, nil)
	if err != nil {
		return nil, fmt.Errorf("failed topological sort: %w", err)
	}

	inputIDs := b.InputIDs()
	isInput := make(map[int]bool, len(inputIDs))
	for _, id := range inputIDs {
		isInput[id] = true
	}

	net := &FeedForwardNetwork{
		InputIDs:   inputIDs,
		OutputIDs:  b.OutputIDs(),
		EvalOrder:  make([]int, 0, len(sorted)),
		Activation: act,
		incoming:   incoming,
	}
	for _, node := range sorted {
		id := nodeID(node)
		if !isInput[id] {
			net.EvalOrder = append(net.EvalOrder, id)
		}
	}
	return net, nil
}

func nodeID(n graph.Node) int {
	return int(n.ID())
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input neurons.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputIDs) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", neat.ErrInputMismatch, len(net.InputIDs), len(inputs))
	}

	values := make([]float64, len(net.incoming))
	for i, id := range net.InputIDs {
		values[id] = inputs[i]
	}

	for _, id := range net.EvalOrder {
		sum := 0.0
		for _, l := range net.incoming[id] {
			sum += values[l.Source] * l.Weight
		}
		values[id] = net.Activation(sum)
	}

	outputs := make([]float64, len(net.OutputIDs))
	for i, id := range net.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}
