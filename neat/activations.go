package neat

import (
	"fmt"
	"math"
	"sort"
)

// ActivationFunc maps a neuron's summed input to its output value.
type ActivationFunc func(x float64) float64

// ActivationFunctions maps function names to activation functions, so
// configuration and command lines can select one by name.
var ActivationFunctions = map[string]ActivationFunc{
	"sigmoid":       Sigmoid,
	"steep_sigmoid": SteepSigmoid,
	"tanh":          Tanh,
	"relu":          ReLU,
	"identity":      Identity,
	"clamped":       Clamped,
	"gaussian":      Gaussian,
	"absolute":      Absolute,
	"abs":           Absolute,
	"sine":          Sine,
	"hat":           Hat,
	"square":        Square,
	"cube":          Cube,
	"exp":           Exp,
	"step":          Step,
}

// GetActivation looks up a registered activation function.
func GetActivation(name string) (ActivationFunc, error) {
	fn, ok := ActivationFunctions[name]
	if !ok {
		return nil, fmt.Errorf("unknown activation function '%s'", name)
	}
	return fn, nil
}

// ActivationNames returns the registered names in sorted order.
func ActivationNames() []string {
	names := make([]string, 0, len(ActivationFunctions))
	for name := range ActivationFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sigmoid is the logistic function 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// SteepSigmoid is the logistic function with the steepness 4.9 used in the
// NEAT paper.
func SteepSigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

func Tanh(x float64) float64 { return math.Tanh(x) }

func ReLU(x float64) float64 { return math.Max(0, x) }

func Identity(x float64) float64 { return x }

// Clamped limits x to [-1, 1].
func Clamped(x float64) float64 { return clamp(x, -1, 1) }

// Gaussian is the unnormalized bell curve e^(-x²/2).
func Gaussian(x float64) float64 { return math.Exp(-0.5 * x * x) }

func Absolute(x float64) float64 { return math.Abs(x) }

func Sine(x float64) float64 { return math.Sin(x) }

// Hat is a triangular pulse of height 1 on [-1, 1].
func Hat(x float64) float64 { return math.Max(0, 1-math.Abs(x)) }

func Square(x float64) float64 { return x * x }

func Cube(x float64) float64 { return x * x * x }

// Exp is e^x with x clamped to [-60, 60] so the result stays finite.
func Exp(x float64) float64 { return math.Exp(clamp(x, -60, 60)) }

// Step is 1 for positive input and 0 otherwise.
func Step(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
