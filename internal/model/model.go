// Package model fits a physical-channel model to fragment tomography data:
// for each circuit-output outcome of a fragment it solves a linear least
// squares problem whose solution is a block of the fragment's reduced Choi
// matrix, stored as a tensor with one dimension-4 axis per quantum port.
package model

import (
	"sort"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
	"github.com/longthangvu/cutqc-mlft/internal/tensor"
)

// DefaultRankCutoff is the default singular-value cutoff for the
// least-squares fit.
const DefaultRankCutoff = 1e-8

// Model is a fragment's fitted Choi-matrix model: one tensor block per
// circuit-output bitstring. Blocks are generally non-normalized and may be
// unphysical until corrected. Models are immutable; the corrector replaces
// them rather than mutating in place.
type Model struct {
	Fragment *cutting.Fragment

	blocks map[circuit.BitString]*tensor.Tensor
}

// NewModel builds a model from per-bitstring blocks.
func NewModel(fragment *cutting.Fragment, blocks map[circuit.BitString]*tensor.Tensor) *Model {
	return &Model{Fragment: fragment, blocks: blocks}
}

// Substrings returns the circuit-output outcomes with blocks, sorted.
func (m *Model) Substrings() []circuit.BitString {
	out := make([]circuit.BitString, 0, len(m.blocks))
	for s := range m.blocks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Block returns the Choi tensor block for one circuit-output outcome.
func (m *Model) Block(substring circuit.BitString) *tensor.Tensor {
	return m.blocks[substring]
}

// NumBlocks returns the number of blocks.
func (m *Model) NumBlocks() int {
	return len(m.blocks)
}
