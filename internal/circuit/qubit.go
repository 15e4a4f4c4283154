// Package circuit provides a minimal gate-level quantum circuit model: qubit
// identities, gates grouped into moments, and the structural operations needed
// by the circuit cutter (slicing, qubit rewriting, factorization).
package circuit

import (
	"fmt"
	"sort"
)

// Qubit identifies a single qubit. Wire qubits carry a non-negative index and
// represent qubits of the original circuit. Named qubits are synthetic
// identities introduced downstream of a cut and carry the cut name instead.
type Qubit struct {
	Index int
	Name  string
}

// Wire returns the wire qubit with the given index.
func Wire(index int) Qubit {
	return Qubit{Index: index}
}

// Named returns a synthetic qubit with the given name.
func Named(name string) Qubit {
	return Qubit{Index: -1, Name: name}
}

// IsNamed reports whether q is a synthetic (post-cut) qubit.
func (q Qubit) IsNamed() bool {
	return q.Name != ""
}

func (q Qubit) String() string {
	if q.IsNamed() {
		return q.Name
	}
	return fmt.Sprintf("q%d", q.Index)
}

// Less defines the canonical qubit order: wire qubits first, by index, then
// named qubits by name. This order is used wherever a deterministic qubit
// sequence is required (circuit outputs, default measurement order).
func (q Qubit) Less(other Qubit) bool {
	if q.IsNamed() != other.IsNamed() {
		return !q.IsNamed()
	}
	if q.IsNamed() {
		return q.Name < other.Name
	}
	return q.Index < other.Index
}

// SortQubits sorts qubits in the canonical order, in place.
func SortQubits(qubits []Qubit) {
	sort.Slice(qubits, func(i, j int) bool { return qubits[i].Less(qubits[j]) })
}
