// Package sim provides the simulation backend consumed by fragment
// tomography: exact final-state probabilities for a circuit, and seeded
// sampling that returns per-outcome counts.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"sync"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// Simulator is a dense statevector simulator. The zero repetition path is
// deterministic; sampling draws from the exact distribution using the
// simulator's seeded random source.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a simulator whose sampling path is driven by the given seed.
func New(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Probabilities runs the circuit on the all-zero initial state and returns
// the probability of each basis state, indexed so that the first qubit in
// order is the most significant bit.
func (s *Simulator) Probabilities(c *circuit.Circuit, order []circuit.Qubit) ([]float64, error) {
	amps, err := finalState(c, order)
	if err != nil {
		return nil, err
	}
	probs := make([]float64, len(amps))
	for i, a := range amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs, nil
}

// Sample draws the requested number of measurement repetitions from the
// circuit's exact output distribution and returns per-outcome counts, keyed
// by bitstrings in the given qubit order.
func (s *Simulator) Sample(c *circuit.Circuit, order []circuit.Qubit, repetitions int) (map[circuit.BitString]int, error) {
	if repetitions <= 0 {
		return nil, fmt.Errorf("sample: repetitions must be positive, got %d", repetitions)
	}
	probs, err := s.Probabilities(c, order)
	if err != nil {
		return nil, err
	}

	// cumulative distribution for inverse-CDF sampling
	cumulative := make([]float64, len(probs))
	total := 0.0
	for i, p := range probs {
		total += p
		cumulative[i] = total
	}

	counts := make(map[circuit.BitString]int)
	numBits := len(order)
	s.mu.Lock()
	defer s.mu.Unlock()
	for rep := 0; rep < repetitions; rep++ {
		r := s.rng.Float64() * total
		// binary search the cumulative distribution
		lo, hi := 0, len(cumulative)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if cumulative[mid] < r {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		counts[circuit.BitStringFromIndex(lo, numBits)]++
	}
	return counts, nil
}

// finalState applies the circuit to |0...0> over the given qubit order.
func finalState(c *circuit.Circuit, order []circuit.Qubit) ([]complex128, error) {
	position := make(map[circuit.Qubit]int, len(order))
	for i, q := range order {
		if _, dup := position[q]; dup {
			return nil, fmt.Errorf("simulate: duplicate qubit %v in qubit order", q)
		}
		position[q] = i
	}
	for q := range c.QubitSet() {
		if _, ok := position[q]; !ok {
			return nil, fmt.Errorf("simulate: circuit qubit %v missing from qubit order", q)
		}
	}

	n := len(order)
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	for _, moment := range c.Moments {
		for _, g := range moment {
			if err := applyGate(amps, g, position, n); err != nil {
				return nil, err
			}
		}
	}
	return amps, nil
}

// bitOf returns the amplitude-index bit mask for a qubit: the first qubit in
// order occupies the most significant bit.
func bitOf(q circuit.Qubit, position map[circuit.Qubit]int, n int) int {
	return 1 << (n - 1 - position[q])
}

func applyGate(amps []complex128, g circuit.Gate, position map[circuit.Qubit]int, n int) error {
	switch g.Kind {
	case circuit.KindH:
		h := complex(1/math.Sqrt2, 0)
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{h, h, h, -h})
	case circuit.KindX:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{0, 1, 1, 0})
	case circuit.KindY:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{0, -1i, 1i, 0})
	case circuit.KindZ:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{1, 0, 0, -1})
	case circuit.KindS:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{1, 0, 0, 1i})
	case circuit.KindSDag:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{1, 0, 0, -1i})
	case circuit.KindT:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))})
	case circuit.KindTDag:
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{1, 0, 0, cmplx.Exp(complex(0, -math.Pi/4))})
	case circuit.KindRX:
		c := complex(math.Cos(g.Param/2), 0)
		js := complex(0, -math.Sin(g.Param/2))
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{c, js, js, c})
	case circuit.KindRY:
		c := complex(math.Cos(g.Param/2), 0)
		sn := complex(math.Sin(g.Param/2), 0)
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{c, -sn, sn, c})
	case circuit.KindRZ:
		phase := cmplx.Exp(complex(0, g.Param/2))
		applySingle(amps, bitOf(g.Qubits[0], position, n), [4]complex128{cmplx.Conj(phase), 0, 0, phase})
	case circuit.KindCX:
		applyCX(amps, bitOf(g.Qubits[0], position, n), bitOf(g.Qubits[1], position, n))
	case circuit.KindCZ:
		applyCZ(amps, bitOf(g.Qubits[0], position, n), bitOf(g.Qubits[1], position, n))
	default:
		return fmt.Errorf("simulate: unsupported gate kind %q", g.Kind)
	}
	return nil
}

// applySingle applies a single-qubit unitary m = [m00 m01; m10 m11] on the
// qubit identified by the given bit mask.
func applySingle(amps []complex128, bit int, m [4]complex128) {
	for i := range amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := amps[i], amps[j]
			amps[i] = m[0]*a0 + m[1]*a1
			amps[j] = m[2]*a0 + m[3]*a1
		}
	}
}

func applyCX(amps []complex128, controlBit, targetBit int) {
	for i := range amps {
		if i&controlBit != 0 && i&targetBit == 0 {
			j := i | targetBit
			amps[i], amps[j] = amps[j], amps[i]
		}
	}
}

func applyCZ(amps []complex128, controlBit, targetBit int) {
	for i := range amps {
		if i&controlBit != 0 && i&targetBit != 0 {
			amps[i] *= -1
		}
	}
}
