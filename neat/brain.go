package neat

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Brain is a layered feed-forward genome. Neurons are stored by ID (the
// neuron's index) and every synapse satisfies layer(Source) < layer(Target),
// so the network can be evaluated one layer at a time.
//
// Neuron layers are derived from the synapses. Code outside this package must
// not assign Neuron.Layer directly; after editing Neurons or Synapses by hand
// call RebuildLayers to recompute them.
type Brain struct {
	Neurons    []Neuron
	Synapses   []Synapse
	LayerCount int // Always 1 + the highest neuron layer
}

// NewBrain creates a brain with the configured input and output neurons.
// When withTopology is set the initial synapses are rolled as well.
func NewBrain(run *Run, withTopology bool) *Brain {
	b := &Brain{}
	b.Init(run, withTopology)
	return b
}

// Init clears the brain and rebuilds its initial state. Inputs get IDs
// [0, input_nodes) on layer 0 and outputs the following IDs on layer 1.
func (b *Brain) Init(run *Run, withTopology bool) {
	setup := run.Config.Setup
	b.Neurons = make([]Neuron, 0, setup.InputNodes+setup.OutputNodes)
	b.Synapses = nil
	b.LayerCount = 2

	for i := 0; i < setup.InputNodes; i++ {
		b.Neurons = append(b.Neurons, Neuron{ID: len(b.Neurons), Role: InputNeuron, Layer: 0})
	}
	for i := 0; i < setup.OutputNodes; i++ {
		b.Neurons = append(b.Neurons, Neuron{ID: len(b.Neurons), Role: OutputNeuron, Layer: 1})
	}

	if !withTopology {
		return
	}

	outputs := b.OutputIDs()
	if setup.ConnectBias {
		for _, out := range outputs {
			b.addInitialConnection(run, setup.BiasInput, out)
		}
	}
	for _, in := range b.InputIDs() {
		for _, out := range outputs {
			if run.Rand.Canonical() < setup.InitialConnectionRate {
				b.addInitialConnection(run, in, out)
			}
		}
	}
}

// addInitialConnection tolerates a duplicate created by the bias wiring.
func (b *Brain) addInitialConnection(run *Run, source, target int) {
	err := b.AddConnectionBetween(run, source, target)
	if err != nil && !errors.Is(err, ErrDuplicateSynapse) {
		panic(fmt.Sprintf("initial topology: %v", err))
	}
}

// Clone returns a deep copy of the brain.
func (b *Brain) Clone() *Brain {
	clone := &Brain{
		Neurons:    make([]Neuron, len(b.Neurons)),
		Synapses:   make([]Synapse, len(b.Synapses)),
		LayerCount: b.LayerCount,
	}
	copy(clone.Neurons, b.Neurons)
	copy(clone.Synapses, b.Synapses)
	return clone
}

// InputIDs returns the IDs of the input neurons in declaration order.
func (b *Brain) InputIDs() []int {
	return b.idsWithRole(InputNeuron)
}

// OutputIDs returns the IDs of the output neurons in declaration order.
func (b *Brain) OutputIDs() []int {
	return b.idsWithRole(OutputNeuron)
}

func (b *Brain) idsWithRole(role NeuronRole) []int {
	ids := make([]int, 0)
	for _, n := range b.Neurons {
		if n.Role == role {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// HiddenCount returns the number of hidden neurons.
func (b *Brain) HiddenCount() int {
	return len(b.idsWithRole(HiddenNeuron))
}

// EnabledCount returns the number of enabled synapses.
func (b *Brain) EnabledCount() int {
	count := 0
	for _, s := range b.Synapses {
		if s.Enabled {
			count++
		}
	}
	return count
}

// HasSynapse reports whether a synapse source -> target exists, enabled or not.
func (b *Brain) HasSynapse(source, target int) bool {
	for _, s := range b.Synapses {
		if s.Source == source && s.Target == target {
			return true
		}
	}
	return false
}

// AddConnectionBetween adds an enabled synapse source -> target with a fresh
// random weight. It fails if either neuron is unknown, if the edge would not
// point to a later layer, or if the edge already exists.
func (b *Brain) AddConnectionBetween(run *Run, source, target int) error {
	if source < 0 || source >= len(b.Neurons) {
		return fmt.Errorf("source %d: %w", source, ErrUnknownNeuron)
	}
	if target < 0 || target >= len(b.Neurons) {
		return fmt.Errorf("target %d: %w", target, ErrUnknownNeuron)
	}
	if source == target {
		return fmt.Errorf("neuron %d: %w", source, ErrSelfLoop)
	}
	if b.Neurons[source].Layer >= b.Neurons[target].Layer {
		return fmt.Errorf("%d (layer %d) -> %d (layer %d): %w",
			source, b.Neurons[source].Layer, target, b.Neurons[target].Layer, ErrLayerOrder)
	}
	if b.HasSynapse(source, target) {
		return fmt.Errorf("%d -> %d: %w", source, target, ErrDuplicateSynapse)
	}

	b.Synapses = append(b.Synapses, Synapse{
		Source:     source,
		Target:     target,
		Weight:     run.Rand.Weight(),
		Enabled:    true,
		Innovation: run.Innovations.GetInnovationNumber(source, target),
	})
	return nil
}

// AddConnection adds one synapse chosen uniformly among every legal edge not
// yet present. It returns false when the brain is already fully connected, or
// when the picked edge is rejected because neuron IDs no longer match their
// indices (the brain is left unchanged).
func (b *Brain) AddConnection(run *Run) bool {
	existing := make(map[ConnectionKey]bool, len(b.Synapses))
	for _, s := range b.Synapses {
		existing[s.Key()] = true
	}

	var candidates []ConnectionKey
	for _, src := range b.Neurons {
		for _, dst := range b.Neurons {
			if src.Layer >= dst.Layer {
				continue
			}
			key := ConnectionKey{Source: src.ID, Target: dst.ID}
			if !existing[key] {
				candidates = append(candidates, key)
			}
		}
	}
	if len(candidates) == 0 {
		return false
	}

	pick := candidates[run.Rand.Intn(len(candidates))]
	if err := b.AddConnectionBetween(run, pick.Source, pick.Target); err != nil {
		logrus.WithError(err).Warn("Skipping connection mutation on inconsistent brain")
		return false
	}
	return true
}

// AddNode splits a random synapse. The synapse is disabled and replaced by
// source -> new (weight 1) and new -> target (old weight). The new neuron sits
// one layer above the source; if that is the target's layer, every neuron from
// that layer upwards moves up one layer. A brain without synapses gets a new
// connection instead.
func (b *Brain) AddNode(run *Run) {
	if len(b.Synapses) == 0 {
		b.AddConnection(run)
		return
	}

	idx := run.Rand.Intn(len(b.Synapses))
	b.Synapses[idx].Enabled = false
	old := b.Synapses[idx]

	layer := b.Neurons[old.Source].Layer + 1
	if layer == b.Neurons[old.Target].Layer {
		for i := range b.Neurons {
			if b.Neurons[i].Layer >= layer {
				b.Neurons[i].Layer++
			}
		}
		b.LayerCount++
	}

	id := len(b.Neurons)
	b.Neurons = append(b.Neurons, Neuron{ID: id, Role: HiddenNeuron, Layer: layer})

	b.Synapses = append(b.Synapses,
		Synapse{
			Source:     old.Source,
			Target:     id,
			Weight:     1.0,
			Enabled:    true,
			Innovation: run.Innovations.GetInnovationNumber(old.Source, id),
		},
		Synapse{
			Source:     id,
			Target:     old.Target,
			Weight:     old.Weight,
			Enabled:    true,
			Innovation: run.Innovations.GetInnovationNumber(id, old.Target),
		},
	)
}

// Mutate applies at most one structural mutation, then mutates the weight of
// every synapse.
func (b *Brain) Mutate(run *Run) {
	if len(b.Synapses) == 0 {
		b.AddConnection(run)
		return
	}

	m := run.Config.Mutate
	nodeRate, connRate := m.NewNodeRate, m.NewConnectionRate
	if total := nodeRate + connRate; total > 1 {
		nodeRate /= total
		connRate /= total
	}

	r := run.Rand.Canonical()
	switch {
	case r < nodeRate:
		b.AddNode(run)
	case r < nodeRate+connRate:
		b.AddConnection(run)
	}

	for i := range b.Synapses {
		b.Synapses[i].mutateWeight(run)
	}
}

// layerSizes returns the number of neurons on each layer.
func (b *Brain) layerSizes() []int {
	sizes := make([]int, b.LayerCount)
	for _, n := range b.Neurons {
		sizes[n.Layer]++
	}
	return sizes
}

// IsFullyConnected reports whether every strictly forward edge exists.
func (b *Brain) IsFullyConnected() bool {
	sizes := b.layerSizes()
	maxEdges := 0
	later := len(b.Neurons)
	for _, size := range sizes {
		later -= size
		maxEdges += size * later
	}
	return len(b.Synapses) >= maxEdges
}

// enabledByInnovation returns the enabled synapses sorted by innovation number.
func (b *Brain) enabledByInnovation() []Synapse {
	enabled := make([]Synapse, 0, len(b.Synapses))
	for _, s := range b.Synapses {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Innovation < enabled[j].Innovation })
	return enabled
}

// Distance computes the genetic distance between two brains using only
// enabled synapses. Genes are aligned by innovation number: unmatched genes
// count as disjoint (or excess, when an excess coefficient is configured) and
// matched genes contribute their mean absolute weight difference.
func (b *Brain) Distance(other *Brain, config *Config) float64 {
	a := b.enabledByInnovation()
	c := other.enabledByInnovation()
	if len(a) == 0 && len(c) == 0 {
		return 0.0
	}

	var disjoint, excess, matching int
	weightDiff := 0.0
	i, j := 0, 0
	for i < len(a) && j < len(c) {
		switch {
		case a[i].Innovation == c[j].Innovation:
			weightDiff += math.Abs(a[i].Weight - c[j].Weight)
			matching++
			i++
			j++
		case a[i].Innovation < c[j].Innovation:
			disjoint++
			i++
		default:
			disjoint++
			j++
		}
	}
	excess = (len(a) - i) + (len(c) - j)

	sp := config.Species
	if sp.ExcessCoefficient <= 0 {
		disjoint += excess
		excess = 0
	}

	divisor := float64(max(len(a), len(c)))
	if sp.AbsoluteDifference {
		divisor = 1.0
	}

	weightAverage := 0.0
	if matching > 0 {
		weightAverage = weightDiff / float64(matching)
	}

	structural := (sp.DisjointCoefficient*float64(disjoint) + sp.ExcessCoefficient*float64(excess)) / divisor
	return structural + sp.WeightCoefficient*weightAverage
}

// Crossover creates a child from two parents. The child inherits the neurons
// and layering of best. Matching genes are taken from either parent with equal
// probability; if either parent's copy is disabled the child's copy is
// disabled with probability disable_node_rate.
func Crossover(run *Run, best, worst *Brain) *Brain {
	child := &Brain{
		Neurons:    make([]Neuron, len(best.Neurons)),
		Synapses:   make([]Synapse, 0, len(best.Synapses)),
		LayerCount: best.LayerCount,
	}
	copy(child.Neurons, best.Neurons)

	matches := make(map[int]Synapse, len(worst.Synapses))
	for _, s := range worst.Synapses {
		matches[s.Innovation] = s
	}

	for _, s := range best.Synapses {
		other, ok := matches[s.Innovation]
		if !ok {
			child.Synapses = append(child.Synapses, s)
			continue
		}

		gene := s
		if run.Rand.Canonical() < 0.5 {
			gene.Weight = other.Weight
			gene.Enabled = other.Enabled
		}
		if !s.Enabled || !other.Enabled {
			gene.Enabled = run.Rand.Canonical() >= run.Config.Mutate.DisableNodeRate
		}
		child.Synapses = append(child.Synapses, gene)
	}
	return child
}

// neuronsByLayer returns neuron IDs grouped by layer.
func (b *Brain) neuronsByLayer() [][]int {
	layers := make([][]int, b.LayerCount)
	for _, n := range b.Neurons {
		layers[n.Layer] = append(layers[n.Layer], n.ID)
	}
	return layers
}

// RunNetwork evaluates the network on inputs and returns the output values.
// Inputs are assigned to the input neurons in ID order; each later layer sums
// its enabled incoming synapses and applies act.
func (b *Brain) RunNetwork(inputs []float64, act ActivationFunc) ([]float64, error) {
	inputIDs := b.InputIDs()
	if len(inputs) != len(inputIDs) {
		return nil, fmt.Errorf("%w: expected %d inputs, got %d", ErrInputMismatch, len(inputIDs), len(inputs))
	}

	incoming := make([][]int, len(b.Neurons))
	for i, s := range b.Synapses {
		if s.Enabled {
			incoming[s.Target] = append(incoming[s.Target], i)
		}
	}

	for i := range b.Neurons {
		b.Neurons[i].Activation = 0.0
	}
	for i, id := range inputIDs {
		b.Neurons[id].Activation = inputs[i]
	}

	layers := b.neuronsByLayer()
	for layer := 1; layer < len(layers); layer++ {
		for _, id := range layers[layer] {
			sum := 0.0
			for _, si := range incoming[id] {
				s := b.Synapses[si]
				sum += b.Neurons[s.Source].Activation * s.Weight
			}
			b.Neurons[id].Activation = act(sum)
		}
	}

	outputIDs := b.OutputIDs()
	outputs := make([]float64, len(outputIDs))
	for i, id := range outputIDs {
		outputs[i] = b.Neurons[id].Activation
	}
	return outputs, nil
}

// RebuildLayers recomputes every layer from scratch as the longest path from
// an input, counting disabled synapses too. Outputs share the topmost layer.
func (b *Brain) RebuildLayers() error {
	outgoing := make([][]int, len(b.Neurons))
	indegree := make([]int, len(b.Neurons))
	for _, s := range b.Synapses {
		if s.Source < 0 || s.Source >= len(b.Neurons) || s.Target < 0 || s.Target >= len(b.Neurons) {
			return fmt.Errorf("%w: synapse %d -> %d: %w", ErrInvalidBrain, s.Source, s.Target, ErrUnknownNeuron)
		}
		outgoing[s.Source] = append(outgoing[s.Source], s.Target)
		indegree[s.Target]++
	}

	depth := make([]int, len(b.Neurons))
	queue := make([]int, 0, len(b.Neurons))
	for id := range b.Neurons {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range outgoing[id] {
			depth[next] = max(depth[next], depth[id]+1)
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited != len(b.Neurons) {
		return fmt.Errorf("%w: synapses form a cycle", ErrInvalidBrain)
	}

	outputLayer := 1
	for id, n := range b.Neurons {
		if n.Role != OutputNeuron {
			outputLayer = max(outputLayer, depth[id]+1)
		}
	}

	highest := 0
	for id := range b.Neurons {
		switch b.Neurons[id].Role {
		case InputNeuron:
			b.Neurons[id].Layer = 0
		case OutputNeuron:
			b.Neurons[id].Layer = outputLayer
		default:
			b.Neurons[id].Layer = depth[id]
		}
		highest = max(highest, b.Neurons[id].Layer)
	}
	b.LayerCount = highest + 1
	return nil
}

// Validate checks every structural invariant of the brain.
func (b *Brain) Validate() error {
	highest := 0
	for i, n := range b.Neurons {
		if n.ID != i {
			return fmt.Errorf("%w: neuron at index %d has ID %d", ErrInvalidBrain, i, n.ID)
		}
		if n.Role == InputNeuron && n.Layer != 0 {
			return fmt.Errorf("%w: input neuron %d on layer %d", ErrInvalidBrain, n.ID, n.Layer)
		}
		if n.Layer < 0 {
			return fmt.Errorf("%w: neuron %d on negative layer %d", ErrInvalidBrain, n.ID, n.Layer)
		}
		highest = max(highest, n.Layer)
	}
	if len(b.Neurons) > 0 && b.LayerCount != highest+1 {
		return fmt.Errorf("%w: layer count %d, highest layer %d", ErrInvalidBrain, b.LayerCount, highest)
	}

	seen := make(map[ConnectionKey]bool, len(b.Synapses))
	for i, s := range b.Synapses {
		if s.Source < 0 || s.Source >= len(b.Neurons) || s.Target < 0 || s.Target >= len(b.Neurons) {
			return fmt.Errorf("%w: synapse %d: %w", ErrInvalidBrain, i, ErrUnknownNeuron)
		}
		if s.Source == s.Target {
			return fmt.Errorf("%w: synapse %d: %w", ErrInvalidBrain, i, ErrSelfLoop)
		}
		if b.Neurons[s.Source].Layer >= b.Neurons[s.Target].Layer {
			return fmt.Errorf("%w: synapse %d: %w", ErrInvalidBrain, i, ErrLayerOrder)
		}
		if seen[s.Key()] {
			return fmt.Errorf("%w: synapse %d: %w", ErrInvalidBrain, i, ErrDuplicateSynapse)
		}
		seen[s.Key()] = true
	}
	return nil
}

// Chart renders the enabled synapses, ordered by source layer, as text.
func (b *Brain) Chart() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Brain: %d neurons, %d synapses (%d enabled), %d layers, %d hidden\n",
		len(b.Neurons), len(b.Synapses), b.EnabledCount(), b.LayerCount, b.HiddenCount())

	enabled := b.enabledByInnovation()
	sort.SliceStable(enabled, func(i, j int) bool {
		return b.Neurons[enabled[i].Source].Layer < b.Neurons[enabled[j].Source].Layer
	})
	for _, s := range enabled {
		src, dst := b.Neurons[s.Source], b.Neurons[s.Target]
		fmt.Fprintf(&sb, "  [%d] %s %d -> [%d] %s %d  w=%+.4f  #%d\n",
			src.Layer, src.Role, src.ID, dst.Layer, dst.Role, dst.ID, s.Weight, s.Innovation)
	}
	return sb.String()
}
