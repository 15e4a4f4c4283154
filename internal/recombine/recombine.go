// Package recombine contracts fragment models into a joint probability
// distribution over the full circuit's measurement outcomes. One contraction
// path is computed per model set and reused for every combination of
// circuit-output bitstrings; the outcome combiner resolves the qubit routing
// introduced by the cuts back into the caller's qubit order.
package recombine

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
	"github.com/longthangvu/cutqc-mlft/internal/model"
	"github.com/longthangvu/cutqc-mlft/internal/tensor"
	"github.com/longthangvu/cutqc-mlft/internal/workers"
)

// Recombiner contracts fragment models back into full-circuit
// distributions. The enumeration over outcome combinations is parallelized
// over the pool; every combination reads only the immutable models.
type Recombiner struct {
	pool *workers.Pool
	log  zerolog.Logger
}

// New creates a recombiner.
func New(pool *workers.Pool, log zerolog.Logger) *Recombiner {
	return &Recombiner{pool: pool, log: log.With().Str("component", "recombine").Logger()}
}

// Recombine contracts all fragment models into a distribution over
// full-circuit bitstrings in the given qubit order (nil selects the
// canonical sorted order of the original circuit qubits). The result is
// exact if the models came from exact tomography; entries may be negative
// if the models were not corrected, and the total may differ slightly from
// one — filtering and renormalization are left to the caller.
func (r *Recombiner) Recombine(models map[string]*model.Model, qubitOrder []circuit.Qubit) (map[circuit.BitString]float64, error) {
	keys := make([]string, 0, len(models))
	for key := range models {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil, fmt.Errorf("recombine: no fragment models")
	}

	// one representative block per fragment fixes the contraction path;
	// all blocks of a fragment share labels and dims
	representatives := make([]*tensor.Tensor, len(keys))
	for i, key := range keys {
		m := models[key]
		substrings := m.Substrings()
		if len(substrings) == 0 {
			return nil, fmt.Errorf("recombine: fragment %s has no blocks", key)
		}
		representatives[i] = m.Block(substrings[0])
	}
	path := tensor.ComputePath(representatives)

	fragments := make(map[string]*cutting.Fragment, len(models))
	for key, m := range models {
		fragments[key] = m.Fragment
	}
	combiner, err := OutcomeCombiner(fragments, qubitOrder)
	if err != nil {
		return nil, err
	}

	// enumerate the Cartesian product of circuit-output bitstrings; the
	// exponential enumeration is what makes recombination exact
	combos := [][]circuit.BitString{nil}
	for _, key := range keys {
		substrings := models[key].Substrings()
		grown := make([][]circuit.BitString, 0, len(combos)*len(substrings))
		for _, combo := range combos {
			for _, s := range substrings {
				next := make([]circuit.BitString, len(combo)+1)
				copy(next, combo)
				next[len(combo)] = s
				grown = append(grown, next)
			}
		}
		combos = grown
	}
	r.log.Debug().Int("fragments", len(keys)).Int("combinations", len(combos)).Msg("contracting fragment models")

	type entry struct {
		outcome circuit.BitString
		weight  float64
	}
	entries, err := workers.Map(r.pool, combos, func(combo []circuit.BitString) (entry, error) {
		outcomes := make(map[string]circuit.BitString, len(keys))
		tensors := make([]*tensor.Tensor, len(keys))
		for i, key := range keys {
			outcomes[key] = combo[i]
			tensors[i] = models[key].Block(combo[i])
		}
		combined, err := combiner(outcomes)
		if err != nil {
			return entry{}, err
		}
		contracted, err := tensor.ContractNetwork(tensors, path)
		if err != nil {
			return entry{}, err
		}
		value, err := contracted.ScalarValue()
		if err != nil {
			return entry{}, err
		}
		return entry{outcome: combined, weight: real(value)}, nil
	})
	if err != nil {
		return nil, err
	}

	distribution := make(map[circuit.BitString]float64, len(entries))
	for _, e := range entries {
		distribution[e.outcome] = e.weight
	}
	return distribution, nil
}
