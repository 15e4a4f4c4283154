package circuit

// GateKind enumerates the gate set understood by the simulator. The set is
// closed: unknown kinds are rejected when a circuit is simulated.
type GateKind string

const (
	KindH    GateKind = "H"
	KindX    GateKind = "X"
	KindY    GateKind = "Y"
	KindZ    GateKind = "Z"
	KindS    GateKind = "S"
	KindSDag GateKind = "SDG"
	KindT    GateKind = "T"
	KindTDag GateKind = "TDG"
	KindRX   GateKind = "RX"
	KindRY   GateKind = "RY"
	KindRZ   GateKind = "RZ"
	KindCX   GateKind = "CX"
	KindCZ   GateKind = "CZ"
)

// Gate is a single operation on one or two qubits. Two-qubit gates list the
// control qubit first.
type Gate struct {
	Kind   GateKind
	Qubits []Qubit
	Param  float64 // rotation angle, used by RX/RY/RZ only
}

// Addresses reports whether the gate acts on the given qubit.
func (g Gate) Addresses(q Qubit) bool {
	for _, gq := range g.Qubits {
		if gq == q {
			return true
		}
	}
	return false
}

// WithQubit returns a copy of the gate with every reference to old replaced
// by replacement.
func (g Gate) WithQubit(old, replacement Qubit) Gate {
	qubits := make([]Qubit, len(g.Qubits))
	for i, q := range g.Qubits {
		if q == old {
			qubits[i] = replacement
		} else {
			qubits[i] = q
		}
	}
	return Gate{Kind: g.Kind, Qubits: qubits, Param: g.Param}
}

// H returns a Hadamard gate on q.
func H(q Qubit) Gate { return Gate{Kind: KindH, Qubits: []Qubit{q}} }

// X returns a Pauli-X gate on q.
func X(q Qubit) Gate { return Gate{Kind: KindX, Qubits: []Qubit{q}} }

// Y returns a Pauli-Y gate on q.
func Y(q Qubit) Gate { return Gate{Kind: KindY, Qubits: []Qubit{q}} }

// Z returns a Pauli-Z gate on q.
func Z(q Qubit) Gate { return Gate{Kind: KindZ, Qubits: []Qubit{q}} }

// S returns a phase gate on q.
func S(q Qubit) Gate { return Gate{Kind: KindS, Qubits: []Qubit{q}} }

// SDag returns the inverse phase gate on q.
func SDag(q Qubit) Gate { return Gate{Kind: KindSDag, Qubits: []Qubit{q}} }

// T returns a T gate on q.
func T(q Qubit) Gate { return Gate{Kind: KindT, Qubits: []Qubit{q}} }

// TDag returns the inverse T gate on q.
func TDag(q Qubit) Gate { return Gate{Kind: KindTDag, Qubits: []Qubit{q}} }

// RX returns an X-axis rotation by theta on q.
func RX(theta float64, q Qubit) Gate { return Gate{Kind: KindRX, Qubits: []Qubit{q}, Param: theta} }

// RY returns a Y-axis rotation by theta on q.
func RY(theta float64, q Qubit) Gate { return Gate{Kind: KindRY, Qubits: []Qubit{q}, Param: theta} }

// RZ returns a Z-axis rotation by theta on q.
func RZ(theta float64, q Qubit) Gate { return Gate{Kind: KindRZ, Qubits: []Qubit{q}, Param: theta} }

// CX returns a controlled-X gate with the given control and target.
func CX(control, target Qubit) Gate { return Gate{Kind: KindCX, Qubits: []Qubit{control, target}} }

// CZ returns a controlled-Z gate with the given control and target.
func CZ(control, target Qubit) Gate { return Gate{Kind: KindCZ, Qubits: []Qubit{control, target}} }
