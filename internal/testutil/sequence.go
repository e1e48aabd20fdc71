package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable identifiers: prefix-1, prefix-2, ...
//
// This keeps created sections, topics and questions addressable in
// assertions and golden files.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. If prefix is empty, "id" is used.
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// NewID returns the next identifier.
func (g *SequenceIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// ScriptedSource replays a fixed list of draws for shuffles.
//
// Each IntN(n) call consumes the next scripted value and returns it modulo n.
// Once the script is exhausted every call returns 0, which makes the
// resulting Fisher-Yates permutation fully predictable.
type ScriptedSource struct {
	mu     sync.Mutex
	values []int
	idx    int
	calls  int
}

// NewScriptedSource creates a source that replays values in order.
func NewScriptedSource(values ...int) *ScriptedSource {
	return &ScriptedSource{values: values}
}

// IntN returns the next scripted value reduced into [0, n).
func (s *ScriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if n <= 0 {
		panic("ScriptedSource: IntN called with n <= 0")
	}
	if s.idx >= len(s.values) {
		return 0
	}
	v := s.values[s.idx] % n
	s.idx++
	if v < 0 {
		v += n
	}
	return v
}

// Calls reports how many draws were made.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
