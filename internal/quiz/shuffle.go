package quiz

import (
	"fmt"
	"math/rand/v2"

	"github.com/Maxsatbek/my-home/internal/kb"
)

// Source draws uniform integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

type systemSource struct{}

func (systemSource) IntN(n int) int { return rand.IntN(n) }

// SystemSource draws from the process-wide generator.
var SystemSource Source = systemSource{}

// Shuffle permutes items in place with an unbiased Fisher-Yates pass.
func Shuffle[T any](src Source, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Permutation maps display positions to canonical option indices.
type Permutation [kb.OptionCount]int

// Identity returns the permutation that keeps canonical order.
func Identity() Permutation {
	var p Permutation
	for i := range p {
		p[i] = i
	}
	return p
}

// NewPermutation draws one of the 24 option permutations uniformly.
func NewPermutation(src Source) Permutation {
	p := Identity()
	Shuffle(src, p[:])
	return p
}

// IsValid reports whether p contains every option index exactly once.
func (p Permutation) IsValid() bool {
	var seen [kb.OptionCount]bool
	for _, v := range p {
		if v < 0 || v >= kb.OptionCount || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// Mapping is the display mapping of one rendered question.
type Mapping struct {
	perm    Permutation
	correct int
}

// NewMapping shuffles a fresh display order for q. It fails only for a
// question whose correct index does not address an option.
func NewMapping(q *kb.Question, src Source) (Mapping, error) {
	return MappingFor(NewPermutation(src), q.Correct)
}

// MappingFor builds the mapping for a known permutation. It fails when p is
// not a permutation or canonicalCorrect is not an option index.
func MappingFor(p Permutation, canonicalCorrect int) (Mapping, error) {
	if !p.IsValid() {
		return Mapping{}, fmt.Errorf("quiz: %v is not a permutation of option indices", p)
	}
	for display, canonical := range p {
		if canonical == canonicalCorrect {
			return Mapping{perm: p, correct: display}, nil
		}
	}
	return Mapping{}, fmt.Errorf("quiz: correct index %d out of range", canonicalCorrect)
}

// Permutation returns P.
func (m Mapping) Permutation() Permutation { return m.perm }

// CorrectDisplay returns c', the display position of the correct option.
func (m Mapping) CorrectDisplay() int { return m.correct }

// Canonical returns P[displayIdx], the canonical index shown at displayIdx.
func (m Mapping) Canonical(displayIdx int) int { return m.perm[displayIdx] }

// IsCorrect reports whether choosing displayIdx answers correctly.
func (m Mapping) IsCorrect(displayIdx int) bool { return displayIdx == m.correct }

// Options returns q's option texts in display order.
func (m Mapping) Options(q *kb.Question) kb.Options {
	var out kb.Options
	for display, canonical := range m.perm {
		out[display] = q.Options[canonical]
	}
	return out
}

// Letter returns the display label of an option position ("A".."D").
func Letter(displayIdx int) string {
	return string(rune('A' + displayIdx))
}

func checkDisplayIndex(op string, displayIdx int) error {
	if displayIdx < 0 || displayIdx >= kb.OptionCount {
		return kb.NewError(kb.ErrCodeInvalidPrecondition, op,
			fmt.Sprintf("option index %d out of range [0, %d]", displayIdx, kb.OptionCount-1))
	}
	return nil
}
