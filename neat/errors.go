package neat

import "errors"

// Contract violations reported by Brain operations. Callers test with errors.Is.
var (
	ErrInputMismatch    = errors.New("input count does not match input neurons")
	ErrUnknownNeuron    = errors.New("unknown neuron")
	ErrSelfLoop         = errors.New("synapse would connect a neuron to itself")
	ErrLayerOrder       = errors.New("synapse source is not on an earlier layer than its target")
	ErrDuplicateSynapse = errors.New("synapse already exists")
	ErrInvalidBrain     = errors.New("invalid brain")
)
