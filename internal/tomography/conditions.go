package tomography

import (
	"strings"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// Condition is a full tomography setting over a fragment's quantum ports: the
// states prepared at the quantum inputs, the bases measured at the quantum
// outputs, and the outcome observed there. Preps is a comma-joined list of
// PrepState labels (one per input, in port order); Bases concatenates one
// MeasBasis letter per output.
type Condition struct {
	Preps   string
	Bases   string
	Outcome circuit.BitString
}

// NewCondition packs prep states, measurement bases, and a quantum-output
// outcome into a comparable Condition key.
func NewCondition(preps []PrepState, bases []MeasBasis, outcome circuit.BitString) Condition {
	prepLabels := make([]string, len(preps))
	for i, p := range preps {
		prepLabels[i] = string(p)
	}
	var basisLabels strings.Builder
	for _, b := range bases {
		basisLabels.WriteString(string(b))
	}
	return Condition{
		Preps:   strings.Join(prepLabels, ","),
		Bases:   basisLabels.String(),
		Outcome: outcome,
	}
}

// PrepStateList unpacks the prepared states of the condition.
func (c Condition) PrepStateList() []PrepState {
	if c.Preps == "" {
		return nil
	}
	parts := strings.Split(c.Preps, ",")
	states := make([]PrepState, len(parts))
	for i, p := range parts {
		states[i] = PrepState(p)
	}
	return states
}

// MeasBasisList unpacks the measurement bases of the condition.
func (c Condition) MeasBasisList() []MeasBasis {
	bases := make([]MeasBasis, len(c.Bases))
	for i := 0; i < len(c.Bases); i++ {
		bases[i] = MeasBasis(c.Bases[i : i+1])
	}
	return bases
}

// Conditions enumerates every (prep states, measurement bases, measurement
// outcome) setting for a fragment with the given number of quantum inputs
// and outputs, in a fixed canonical order. The model builder relies on this
// order matching the interrogation matrix rows.
func Conditions(numInputs, numOutputs int, basis PrepBasis) ([]Condition, error) {
	prepStates, err := PrepStates(basis)
	if err != nil {
		return nil, err
	}

	var conditions []Condition
	for _, preps := range product(prepStates, numInputs) {
		for _, bases := range product(PauliBases, numOutputs) {
			for outcome := 0; outcome < 1<<numOutputs; outcome++ {
				conditions = append(conditions, NewCondition(
					preps, bases, circuit.BitStringFromIndex(outcome, numOutputs),
				))
			}
		}
	}
	return conditions, nil
}

// product enumerates the Cartesian power options^repeat as an explicit finite
// sequence, first slot varying slowest.
func product[T any](options []T, repeat int) [][]T {
	if repeat == 0 {
		return [][]T{nil}
	}
	total := 1
	for i := 0; i < repeat; i++ {
		total *= len(options)
	}
	out := make([][]T, 0, total)
	index := make([]int, repeat)
	for {
		combo := make([]T, repeat)
		for i, oi := range index {
			combo[i] = options[oi]
		}
		out = append(out, combo)
		pos := repeat - 1
		for pos >= 0 {
			index[pos]++
			if index[pos] < len(options) {
				break
			}
			index[pos] = 0
			pos--
		}
		if pos < 0 {
			return out
		}
	}
}
