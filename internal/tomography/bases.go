// Package tomography characterizes circuit fragments: it enumerates a
// tomographically complete set of preparation and measurement settings over
// a fragment's quantum inputs and outputs, runs each setting against a
// simulation backend, and collects the resulting outcome distributions.
package tomography

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// PrepBasis names a tomographically complete set of single-qubit states.
type PrepBasis string

const (
	// PrepBasisPauli prepares the six Pauli eigenstates.
	PrepBasisPauli PrepBasis = "Pauli"
	// PrepBasisSIC prepares the four-state symmetric (SIC) set.
	PrepBasisSIC PrepBasis = "SIC"
)

// DefaultPrepBasis is the preparation basis used when none is configured.
const DefaultPrepBasis = PrepBasisSIC

// PrepState labels a single-qubit preparation state.
type PrepState string

const (
	StateZPlus  PrepState = "Z+"
	StateZMinus PrepState = "Z-"
	StateXPlus  PrepState = "X+"
	StateXMinus PrepState = "X-"
	StateYPlus  PrepState = "Y+"
	StateYMinus PrepState = "Y-"
	StateS0     PrepState = "S0"
	StateS1     PrepState = "S1"
	StateS2     PrepState = "S2"
	StateS3     PrepState = "S3"
)

// MeasBasis labels a single-qubit Pauli measurement basis.
type MeasBasis string

const (
	BasisZ MeasBasis = "Z"
	BasisX MeasBasis = "X"
	BasisY MeasBasis = "Y"
)

// PauliBases is the measurement basis set used at every quantum output.
var PauliBases = []MeasBasis{BasisZ, BasisX, BasisY}

// PrepStates returns the preparation states of a basis, in canonical order.
// Unrecognized bases are a configuration error.
func PrepStates(basis PrepBasis) ([]PrepState, error) {
	switch basis {
	case PrepBasisPauli:
		return []PrepState{StateZPlus, StateZMinus, StateXPlus, StateXMinus, StateYPlus, StateYMinus}, nil
	case PrepBasisSIC:
		return []PrepState{StateS0, StateS1, StateS2, StateS3}, nil
	}
	return nil, fmt.Errorf("tomography: prep basis not recognized: %q", basis)
}

// PrepOps returns the gates that prepare the given state on a qubit assumed
// to start in |0>.
func PrepOps(state PrepState, q circuit.Qubit) ([]circuit.Gate, error) {
	switch state {
	case StateZPlus, StateS0:
		return nil, nil
	case StateZMinus:
		return []circuit.Gate{circuit.X(q)}, nil
	case StateXPlus:
		return []circuit.Gate{circuit.H(q)}, nil
	case StateXMinus:
		return []circuit.Gate{circuit.X(q), circuit.H(q)}, nil
	case StateYPlus:
		return []circuit.Gate{circuit.H(q), circuit.S(q)}, nil
	case StateYMinus:
		return []circuit.Gate{circuit.H(q), circuit.SDag(q)}, nil
	case StateS1, StateS2, StateS3:
		// cos(polar/2) = 1/sqrt(3) tilts |0> onto a tetrahedron corner
		polar := 2 * math.Acos(1/math.Sqrt(3))
		gates := []circuit.Gate{circuit.RY(polar, q)}
		corner := sicCorner(state)
		if corner != 0 {
			azimuthal := 2 * math.Pi * float64(corner) / 3
			gates = append(gates, circuit.RZ(azimuthal, q))
		}
		return gates, nil
	}
	return nil, fmt.Errorf("tomography: prep state not recognized: %q", state)
}

// MeasOps returns the gates that rotate the given Pauli basis onto the
// computational basis before measurement.
func MeasOps(basis MeasBasis, q circuit.Qubit) ([]circuit.Gate, error) {
	switch basis {
	case BasisZ:
		return nil, nil
	case BasisX:
		return []circuit.Gate{circuit.H(q)}, nil
	case BasisY:
		return []circuit.Gate{circuit.SDag(q), circuit.H(q)}, nil
	}
	return nil, fmt.Errorf("tomography: measurement basis not recognized: %q", basis)
}

func sicCorner(state PrepState) int {
	return int(state[1] - '1') // S1 -> 0, S2 -> 1, S3 -> 2
}

var (
	projectorMu    sync.Mutex
	projectorCache = make(map[PrepState][4]complex128)
)

// StateProjector returns the projector onto a single-qubit state, flattened
// row-major into 4 entries. The label space covers both preparation states
// and measurement-basis outcomes ("Z+", "X-", ...). Results are memoized;
// these are stateless constants, never invalidated.
func StateProjector(state PrepState) ([4]complex128, error) {
	projectorMu.Lock()
	if proj, ok := projectorCache[state]; ok {
		projectorMu.Unlock()
		return proj, nil
	}
	projectorMu.Unlock()

	var vec [2]complex128
	switch state {
	case StateZPlus, StateS0:
		vec = [2]complex128{1, 0}
	case StateZMinus:
		vec = [2]complex128{0, 1}
	case StateXPlus:
		vec = [2]complex128{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}
	case StateXMinus:
		vec = [2]complex128{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}
	case StateYPlus:
		vec = [2]complex128{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}
	case StateYMinus:
		vec = [2]complex128{complex(1/math.Sqrt2, 0), complex(0, -1/math.Sqrt2)}
	case StateS1, StateS2, StateS3:
		azimuthal := 2 * math.Pi * float64(sicCorner(state)) / 3
		vec = [2]complex128{
			complex(1/math.Sqrt(3), 0),
			cmplx.Exp(complex(0, azimuthal)) * complex(math.Sqrt2/math.Sqrt(3), 0),
		}
	default:
		return [4]complex128{}, fmt.Errorf("tomography: state not recognized: %q", state)
	}

	var proj [4]complex128
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			proj[r*2+c] = vec[r] * cmplx.Conj(vec[c])
		}
	}
	projectorMu.Lock()
	projectorCache[state] = proj
	projectorMu.Unlock()
	return proj, nil
}
