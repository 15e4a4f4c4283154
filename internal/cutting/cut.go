package cutting

import (
	"fmt"
	"sort"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// Cut identifies a severed wire: every operation addressing Qubit at or after
// MomentIndex is downstream of the cut. Cuts referencing qubits that the
// circuit never uses are a caller error and are not validated here.
type Cut struct {
	MomentIndex int
	Qubit       circuit.Qubit
}

// CutCircuit applies the given cuts to a circuit and returns its fragments,
// keyed "fragment_0", "fragment_1", ... in factorization order.
//
// Cuts are processed in sorted order. For each cut, the qubit's current
// identity is resolved through the running initial-to-final map (a qubit may
// be routed through several cuts), a fresh "cut_<n>" qubit is introduced for
// everything downstream, and the severed wire is recorded as a quantum
// output of the upstream side and a quantum input of the downstream side.
// Cuts with no upstream or no downstream operations are trivial: they are
// skipped without consuming a cut name.
func CutCircuit(circ *circuit.Circuit, cuts []Cut) (map[string]*Fragment, error) {
	working := circ.Clone()

	sortedCuts := append([]Cut{}, cuts...)
	sort.Slice(sortedCuts, func(i, j int) bool {
		if sortedCuts[i].MomentIndex != sortedCuts[j].MomentIndex {
			return sortedCuts[i].MomentIndex < sortedCuts[j].MomentIndex
		}
		return sortedCuts[i].Qubit.Less(sortedCuts[j].Qubit)
	})

	quantumInputs := make(map[circuit.Qubit]string)
	quantumOutputs := make(map[circuit.Qubit]string)
	initialToFinal := make(map[circuit.Qubit]circuit.Qubit)

	cutIndex := 0
	for _, cut := range sortedCuts {
		cutName := fmt.Sprintf("cut_%d", cutIndex)

		oldQubit := cut.Qubit
		if routed, ok := initialToFinal[cut.Qubit]; ok {
			oldQubit = routed
		}
		newQubit := circuit.Named(cutName)

		if !working.HasQubitBefore(oldQubit, cut.MomentIndex) {
			// trivial cut: nothing upstream
			continue
		}

		// Rewrite the first operation addressing the old qubit in each
		// downstream moment; one per moment is enough since a qubit is
		// addressed at most once per moment.
		replaced := false
		for mi := cut.MomentIndex; mi < working.NumMoments(); mi++ {
			moment := working.Moments[mi]
			for gi, g := range moment {
				if g.Addresses(oldQubit) {
					moment[gi] = g.WithQubit(oldQubit, newQubit)
					replaced = true
					break
				}
			}
		}
		if !replaced {
			// trivial cut: nothing downstream
			continue
		}

		initialToFinal[cut.Qubit] = newQubit
		quantumOutputs[oldQubit] = cutName
		quantumInputs[newQubit] = cutName
		cutIndex++
	}

	fragments := make(map[string]*Fragment)
	for fragmentIndex, factor := range working.Factorize() {
		factorQubits := factor.QubitSet()
		inputs := make(map[circuit.Qubit]string)
		outputs := make(map[circuit.Qubit]string)
		for q, cutName := range quantumInputs {
			if _, ok := factorQubits[q]; ok {
				inputs[q] = cutName
			}
		}
		for q, cutName := range quantumOutputs {
			if _, ok := factorQubits[q]; ok {
				outputs[q] = cutName
			}
		}
		fragment, err := NewFragment(factor, inputs, outputs)
		if err != nil {
			return nil, fmt.Errorf("cut: %w", err)
		}
		fragments[fmt.Sprintf("fragment_%d", fragmentIndex)] = fragment
	}
	return fragments, nil
}
