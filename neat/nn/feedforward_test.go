package nn

import (
	"sync"
	"testing"

	"github.com/baldhumanity/layered-neat/neat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xorBrain() *neat.Brain {
	return &neat.Brain{
		Neurons: []neat.Neuron{
			{ID: 0, Role: neat.InputNeuron, Layer: 0},
			{ID: 1, Role: neat.InputNeuron, Layer: 0},
			{ID: 2, Role: neat.InputNeuron, Layer: 0},
			{ID: 3, Role: neat.OutputNeuron, Layer: 2},
			{ID: 4, Role: neat.HiddenNeuron, Layer: 1},
			{ID: 5, Role: neat.HiddenNeuron, Layer: 1},
		},
		Synapses: []neat.Synapse{
			{Source: 1, Target: 4, Weight: 1.752715, Enabled: true, Innovation: 0},
			{Source: 1, Target: 5, Weight: 1.2508526, Enabled: true, Innovation: 1},
			{Source: 2, Target: 5, Weight: 0.9772244, Enabled: true, Innovation: 2},
			{Source: 2, Target: 3, Weight: -0.6679219, Enabled: true, Innovation: 3},
			{Source: 4, Target: 3, Weight: -0.97733116, Enabled: true, Innovation: 4},
			{Source: 5, Target: 3, Weight: 2.1024675, Enabled: true, Innovation: 5},
			{Source: 0, Target: 3, Weight: 5, Enabled: false, Innovation: 6},
		},
		LayerCount: 3,
	}
}

var xorInputs = [][]float64{{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1}}

func TestFeedForwardMatchesBrain(t *testing.T) {
	b := xorBrain()
	net, err := CreateFeedForwardNetwork(b, neat.Tanh)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, net.InputIDs)
	assert.Equal(t, []int{3}, net.OutputIDs)
	assert.ElementsMatch(t, []int{3, 4, 5}, net.EvalOrder)
	assert.Equal(t, 3, net.EvalOrder[len(net.EvalOrder)-1])

	for _, in := range xorInputs {
		want, err := b.RunNetwork(in, neat.Tanh)
		require.NoError(t, err)
		got, err := net.Activate(in)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-12)
	}
}

func TestFeedForwardRandomBrains(t *testing.T) {
	cfg := neat.DefaultConfig()
	cfg.Setup.Seed = 3
	cfg.Setup.InputNodes = 4
	cfg.Setup.OutputNodes = 2
	run := neat.NewRun(cfg)

	for i := 0; i < 20; i++ {
		b := neat.NewBrain(run, true)
		for j := 0; j < 15; j++ {
			b.Mutate(run)
		}
		net, err := CreateFeedForwardNetwork(b, neat.Sigmoid)
		require.NoError(t, err)

		in := []float64{1, 0.5, -0.25, 2}
		want, err := b.RunNetwork(in, neat.Sigmoid)
		require.NoError(t, err)
		got, err := net.Activate(in)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want, got, 1e-9)
	}
}

func TestFeedForwardErrors(t *testing.T) {
	_, err := CreateFeedForwardNetwork(xorBrain(), nil)
	assert.Error(t, err)

	b := xorBrain()
	b.Synapses[0].Target = 9
	_, err = CreateFeedForwardNetwork(b, neat.Tanh)
	assert.ErrorIs(t, err, neat.ErrUnknownNeuron)

	b = xorBrain()
	b.Synapses[0].Target = 1
	_, err = CreateFeedForwardNetwork(b, neat.Tanh)
	assert.ErrorIs(t, err, neat.ErrSelfLoop)

	b = xorBrain()
	b.Neurons[2].ID = 7
	_, err = CreateFeedForwardNetwork(b, neat.Tanh)
	assert.ErrorIs(t, err, neat.ErrInvalidBrain)

	b = xorBrain()
	b.Synapses = append(b.Synapses, neat.Synapse{Source: 3, Target: 4, Enabled: true})
	_, err = CreateFeedForwardNetwork(b, neat.Tanh)
	assert.Error(t, err, "cycles cannot be sorted")

	net, err := CreateFeedForwardNetwork(xorBrain(), neat.Tanh)
	require.NoError(t, err)
	_, err = net.Activate([]float64{1, 0})
	assert.ErrorIs(t, err, neat.ErrInputMismatch)
}

func TestFeedForwardConcurrentActivate(t *testing.T) {
	net, err := CreateFeedForwardNetwork(xorBrain(), neat.Tanh)
	require.NoError(t, err)

	want := make([][]float64, len(xorInputs))
	for i, in := range xorInputs {
		want[i], err = net.Activate(in)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := i % len(xorInputs)
				got, err := net.Activate(xorInputs[k])
				if err != nil {
					errs <- err
					return
				}
				if got[0] != want[k][0] {
					errs <- assert.AnError
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
