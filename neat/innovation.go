package neat

import "sync"

// ConnectionKey identifies a connection by its endpoints.
type ConnectionKey struct {
	Source int
	Target int
}

// InnovationHistory hands out historical markings. The first time a
// (source, target) edge appears anywhere in a run it receives the next counter
// value; every later appearance of the same edge receives that value again.
type InnovationHistory struct {
	mu      sync.Mutex
	numbers map[ConnectionKey]int
	next    int
}

// InnovationSnapshot is the serializable state of an InnovationHistory.
type InnovationSnapshot struct {
	Numbers map[ConnectionKey]int
	Next    int
}

// NewInnovationHistory creates an empty history whose first id is 0.
func NewInnovationHistory() *InnovationHistory {
	return &InnovationHistory{numbers: make(map[ConnectionKey]int)}
}

// GetInnovationNumber returns the innovation id for the edge source -> target,
// allocating a new one if the edge has never been seen.
func (h *InnovationHistory) GetInnovationNumber(source, target int) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := ConnectionKey{Source: source, Target: target}
	if num, ok := h.numbers[key]; ok {
		return num
	}
	num := h.next
	h.next++
	h.numbers[key] = num
	return num
}

// Len returns the number of distinct edges recorded so far.
func (h *InnovationHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.numbers)
}

// Snapshot copies the history for persistence.
func (h *InnovationHistory) Snapshot() InnovationSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	numbers := make(map[ConnectionKey]int, len(h.numbers))
	for k, v := range h.numbers {
		numbers[k] = v
	}
	return InnovationSnapshot{Numbers: numbers, Next: h.next}
}

// Restore replaces the history with a previously taken snapshot.
func (h *InnovationHistory) Restore(s InnovationSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.numbers = make(map[ConnectionKey]int, len(s.Numbers))
	for k, v := range s.Numbers {
		h.numbers[k] = v
	}
	h.next = s.Next
}
