// Package cutting rewrites a circuit around a list of cut locations and
// factorizes it into independently simulable fragments, preserving the qubit
// routing information needed to stitch the fragments back together.
package cutting

import (
	"fmt"
	"sort"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// Port ties a fragment qubit to the name of the cut it crosses.
type Port struct {
	Qubit circuit.Qubit
	Cut   string
}

// Fragment is a sub-circuit of a cut-up circuit, with its qubits partitioned
// into quantum inputs (fed by an upstream cut), quantum outputs (feeding a
// downstream cut), and circuit outputs (measured in the computational basis).
// Quantum inputs and outputs are held in deterministic qubit order; that
// order fixes the axis order of the fragment's Choi tensors.
type Fragment struct {
	Circuit        *circuit.Circuit
	QuantumInputs  []Port
	QuantumOutputs []Port
	CircuitOutputs []circuit.Qubit
}

// NewFragment validates that every port qubit belongs to the circuit and
// derives the sorted circuit-output qubit list.
func NewFragment(c *circuit.Circuit, quantumInputs, quantumOutputs map[circuit.Qubit]string) (*Fragment, error) {
	qubits := c.QubitSet()
	for q := range quantumInputs {
		if _, ok := qubits[q]; !ok {
			return nil, fmt.Errorf("fragment: quantum input %v is not a circuit qubit", q)
		}
	}
	for q := range quantumOutputs {
		if _, ok := qubits[q]; !ok {
			return nil, fmt.Errorf("fragment: quantum output %v is not a circuit qubit", q)
		}
	}

	var circuitOutputs []circuit.Qubit
	for q := range qubits {
		if _, isQuantumOutput := quantumOutputs[q]; !isQuantumOutput {
			circuitOutputs = append(circuitOutputs, q)
		}
	}
	circuit.SortQubits(circuitOutputs)

	return &Fragment{
		Circuit:        c,
		QuantumInputs:  sortedPorts(quantumInputs),
		QuantumOutputs: sortedPorts(quantumOutputs),
		CircuitOutputs: circuitOutputs,
	}, nil
}

func sortedPorts(ports map[circuit.Qubit]string) []Port {
	out := make([]Port, 0, len(ports))
	for q, cut := range ports {
		out = append(out, Port{Qubit: q, Cut: cut})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Qubit.Less(out[j].Qubit) })
	return out
}

// InputQubits returns the quantum input qubits in port order.
func (f *Fragment) InputQubits() []circuit.Qubit {
	return portQubits(f.QuantumInputs)
}

// OutputQubits returns the quantum output qubits in port order.
func (f *Fragment) OutputQubits() []circuit.Qubit {
	return portQubits(f.QuantumOutputs)
}

// InputCuts returns the cut names at the quantum inputs, in port order.
func (f *Fragment) InputCuts() []string {
	return portCuts(f.QuantumInputs)
}

// OutputCuts returns the cut names at the quantum outputs, in port order.
func (f *Fragment) OutputCuts() []string {
	return portCuts(f.QuantumOutputs)
}

func portQubits(ports []Port) []circuit.Qubit {
	out := make([]circuit.Qubit, len(ports))
	for i, p := range ports {
		out[i] = p.Qubit
	}
	return out
}

func portCuts(ports []Port) []string {
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.Cut
	}
	return out
}
