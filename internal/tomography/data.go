package tomography

import (
	"sort"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
)

// Data holds the tomography measurements of a single fragment: for every
// circuit-output outcome, the probability of each tomography condition.
// Data is created once by the engine and consumed once by the model builder.
type Data struct {
	Fragment *cutting.Fragment
	Basis    PrepBasis

	data map[circuit.BitString]map[Condition]float64
}

func newData(fragment *cutting.Fragment, basis PrepBasis) *Data {
	return &Data{
		Fragment: fragment,
		Basis:    basis,
		data:     make(map[circuit.BitString]map[Condition]float64),
	}
}

func (d *Data) record(circuitOutcome circuit.BitString, cond Condition, probability float64) {
	conditional, ok := d.data[circuitOutcome]
	if !ok {
		conditional = make(map[Condition]float64)
		d.data[circuitOutcome] = conditional
	}
	conditional[cond] = probability
}

// Substrings returns the observed circuit-output outcomes in sorted order.
func (d *Data) Substrings() []circuit.BitString {
	out := make([]circuit.BitString, 0, len(d.data))
	for s := range d.data {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ConditionOn returns the conditional data for a fixed circuit-output
// outcome. Conditions absent from the map have probability zero.
func (d *Data) ConditionOn(substring circuit.BitString) map[Condition]float64 {
	return d.data[substring]
}
