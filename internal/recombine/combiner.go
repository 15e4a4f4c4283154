package recombine

import (
	"fmt"
	"sort"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
)

// Combiner maps a per-fragment assignment of circuit-output bitstrings to a
// single bitstring for the original, uncut circuit.
type Combiner func(fragmentOutcomes map[string]circuit.BitString) (circuit.BitString, error)

// OutcomeCombiner builds the combiner for a set of fragments. It follows the
// chain of cut renamings of every original qubit until the fragment qubit
// that finally measures it, then computes the bit permutation from
// "concatenation of all fragments' circuit outputs, in fragment order" to
// the requested qubitOrder (nil selects the sorted original qubits).
func OutcomeCombiner(fragments map[string]*cutting.Fragment, qubitOrder []circuit.Qubit) (Combiner, error) {
	keys := make([]string, 0, len(fragments))
	for key := range fragments {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// original circuit qubits, and the cut routing maps
	var circuitQubits []circuit.Qubit
	qubitToCut := make(map[circuit.Qubit]string)
	cutToQubit := make(map[string]circuit.Qubit)
	for _, key := range keys {
		f := fragments[key]
		inputs := make(map[circuit.Qubit]struct{}, len(f.QuantumInputs))
		for _, p := range f.QuantumInputs {
			inputs[p.Qubit] = struct{}{}
			cutToQubit[p.Cut] = p.Qubit
		}
		for _, p := range f.QuantumOutputs {
			qubitToCut[p.Qubit] = p.Cut
		}
		for q := range f.Circuit.QubitSet() {
			if _, isInput := inputs[q]; !isInput {
				circuitQubits = append(circuitQubits, q)
			}
		}
	}

	// follow each original qubit through its chain of cuts
	finalQubit := make(map[circuit.Qubit]circuit.Qubit, len(circuitQubits))
	for _, q := range circuitQubits {
		current := q
		for {
			cut, isCut := qubitToCut[current]
			if !isCut {
				break
			}
			next, ok := cutToQubit[cut]
			if !ok {
				return nil, fmt.Errorf("recombine: cut %s has no downstream fragment", cut)
			}
			current = next
		}
		finalQubit[q] = current
	}

	if qubitOrder == nil {
		qubitOrder = append([]circuit.Qubit{}, circuitQubits...)
		circuit.SortQubits(qubitOrder)
	}

	// position of every fragment circuit-output qubit in the concatenation
	concatenatedIndex := make(map[circuit.Qubit]int)
	fragmentOutputLens := make([]int, len(keys))
	offset := 0
	for i, key := range keys {
		outputs := fragments[key].CircuitOutputs
		fragmentOutputLens[i] = len(outputs)
		for j, q := range outputs {
			concatenatedIndex[q] = offset + j
		}
		offset += len(outputs)
	}

	permutation := make([]int, len(qubitOrder))
	for i, q := range qubitOrder {
		final, ok := finalQubit[q]
		if !ok {
			final = q
		}
		index, ok := concatenatedIndex[final]
		if !ok {
			return nil, fmt.Errorf("recombine: qubit %v is not measured by any fragment", q)
		}
		permutation[i] = index
	}

	return func(fragmentOutcomes map[string]circuit.BitString) (circuit.BitString, error) {
		var concatenated circuit.BitString
		for i, key := range keys {
			outcome, ok := fragmentOutcomes[key]
			if !ok {
				return "", fmt.Errorf("recombine: missing outcome for fragment %s", key)
			}
			if len(outcome) != fragmentOutputLens[i] {
				return "", fmt.Errorf("recombine: fragment %s outcome %q has %d bits, expected %d",
					key, outcome, len(outcome), fragmentOutputLens[i])
			}
			concatenated = concatenated.Concat(outcome)
		}
		combined := make([]byte, len(permutation))
		for i, index := range permutation {
			combined[i] = concatenated[index]
		}
		return circuit.BitString(combined), nil
	}, nil
}
