package tomography

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
	"github.com/longthangvu/cutqc-mlft/internal/sim"
	"github.com/longthangvu/cutqc-mlft/internal/workers"
)

func TestPrepStates(t *testing.T) {
	pauli, err := PrepStates(PrepBasisPauli)
	require.NoError(t, err)
	assert.Len(t, pauli, 6)

	sic, err := PrepStates(PrepBasisSIC)
	require.NoError(t, err)
	assert.Equal(t, []PrepState{StateS0, StateS1, StateS2, StateS3}, sic)

	_, err = PrepStates(PrepBasis("Chebyshev"))
	assert.Error(t, err)
}

func TestPrepOpsUnknownState(t *testing.T) {
	_, err := PrepOps(PrepState("W+"), circuit.Wire(0))
	assert.Error(t, err)
}

func TestMeasOpsUnknownBasis(t *testing.T) {
	_, err := MeasOps(MeasBasis("Q"), circuit.Wire(0))
	assert.Error(t, err)
}

func TestStateProjectorsAreValidDensities(t *testing.T) {
	states := []PrepState{
		StateZPlus, StateZMinus, StateXPlus, StateXMinus, StateYPlus, StateYMinus,
		StateS0, StateS1, StateS2, StateS3,
	}
	for _, state := range states {
		proj, err := StateProjector(state)
		require.NoError(t, err, state)

		trace := real(proj[0]) + real(proj[3])
		assert.InDelta(t, 1.0, trace, 1e-12, state)
		// rank-1 projector: det = 0
		det := proj[0]*proj[3] - proj[1]*proj[2]
		assert.InDelta(t, 0.0, real(det), 1e-12, state)
		assert.InDelta(t, 0.0, imag(det), 1e-12, state)
	}
}

func TestStateProjectorUnknownState(t *testing.T) {
	_, err := StateProjector(PrepState("nope"))
	assert.Error(t, err)
}

func TestSICProjectorsSumToFrame(t *testing.T) {
	// the four SIC projectors sum to 2 * identity
	var sum [4]complex128
	for _, state := range []PrepState{StateS0, StateS1, StateS2, StateS3} {
		proj, err := StateProjector(state)
		require.NoError(t, err)
		for i := range sum {
			sum[i] += proj[i]
		}
	}
	assert.InDelta(t, 2.0, real(sum[0]), 1e-12)
	assert.InDelta(t, 2.0, real(sum[3]), 1e-12)
	assert.InDelta(t, 0.0, real(sum[1]), 1e-12)
	assert.InDelta(t, 0.0, imag(sum[1]), 1e-12)
}

func TestConditionsEnumeration(t *testing.T) {
	conditions, err := Conditions(1, 1, PrepBasisSIC)
	require.NoError(t, err)
	// 4 preps * 3 bases * 2 outcomes
	assert.Len(t, conditions, 24)

	seen := make(map[Condition]struct{})
	for _, c := range conditions {
		seen[c] = struct{}{}
	}
	assert.Len(t, seen, 24, "conditions should be distinct")

	// first slot varies slowest
	assert.Equal(t, Condition{Preps: "S0", Bases: "Z", Outcome: "0"}, conditions[0])
	assert.Equal(t, Condition{Preps: "S0", Bases: "Z", Outcome: "1"}, conditions[1])
	assert.Equal(t, Condition{Preps: "S0", Bases: "X", Outcome: "0"}, conditions[2])
}

func TestConditionsNoPorts(t *testing.T) {
	conditions, err := Conditions(0, 0, PrepBasisPauli)
	require.NoError(t, err)
	require.Len(t, conditions, 1)
	assert.Equal(t, Condition{Outcome: ""}, conditions[0])
}

func TestConditionRoundTrip(t *testing.T) {
	cond := NewCondition(
		[]PrepState{StateS2, StateXMinus},
		[]MeasBasis{BasisY, BasisZ},
		"01",
	)
	assert.Equal(t, "S2,X-", cond.Preps)
	assert.Equal(t, "YZ", cond.Bases)
	assert.Equal(t, []PrepState{StateS2, StateXMinus}, cond.PrepStateList())
	assert.Equal(t, []MeasBasis{BasisY, BasisZ}, cond.MeasBasisList())
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	pool := workers.NewPool(2)
	return NewEngine(sim.New(1), pool, zerolog.Nop())
}

func TestExactTomographyWithoutPortsMatchesSimulator(t *testing.T) {
	q0, q1 := circuit.Wire(0), circuit.Wire(1)
	circ := circuit.FromGates(circuit.H(q0), circuit.CX(q0, q1))
	fragment, err := cutting.NewFragment(circ, nil, nil)
	require.NoError(t, err)

	engine := newTestEngine(t)
	data, err := engine.PerformSingle(fragment, PrepBasisSIC, 0)
	require.NoError(t, err)

	// a portless fragment has a single empty condition per outcome
	empty := NewCondition(nil, nil, "")
	assert.InDelta(t, 0.5, data.ConditionOn("00")[empty], 1e-9)
	assert.InDelta(t, 0.5, data.ConditionOn("11")[empty], 1e-9)
	assert.InDelta(t, 0.0, data.ConditionOn("01")[empty], 1e-9)
}

func TestExactTomographyRecordsAllConditions(t *testing.T) {
	q0 := circuit.Wire(0)
	circ := circuit.FromGates(circuit.H(q0))
	fragment, err := cutting.NewFragment(circ, nil, map[circuit.Qubit]string{q0: "cut_0"})
	require.NoError(t, err)

	engine := newTestEngine(t)
	data, err := engine.PerformSingle(fragment, PrepBasisSIC, 0)
	require.NoError(t, err)

	// no circuit outputs: all probability lives under the empty substring
	require.Equal(t, []circuit.BitString{""}, data.Substrings())
	conditional := data.ConditionOn("")
	// 3 bases * 2 outcomes for one quantum output, no inputs
	assert.Len(t, conditional, 6)

	// |+> measured in X always yields outcome 0
	xPlus := NewCondition(nil, []MeasBasis{BasisX}, "0")
	xMinus := NewCondition(nil, []MeasBasis{BasisX}, "1")
	assert.InDelta(t, 1.0, conditional[xPlus], 1e-9)
	assert.InDelta(t, 0.0, conditional[xMinus], 1e-9)

	zZero := NewCondition(nil, []MeasBasis{BasisZ}, "0")
	assert.InDelta(t, 0.5, conditional[zZero], 1e-9)
}

func TestPerformRejectsUnknownBasis(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Perform(nil, PrepBasis("bogus"), 0)
	assert.Error(t, err)
}

func TestPerformCoversAllFragments(t *testing.T) {
	q0, q1 := circuit.Wire(0), circuit.Wire(1)
	fragA, err := cutting.NewFragment(circuit.FromGates(circuit.H(q0)), nil, nil)
	require.NoError(t, err)
	fragB, err := cutting.NewFragment(circuit.FromGates(circuit.X(q1)), nil, nil)
	require.NoError(t, err)

	engine := newTestEngine(t)
	data, err := engine.Perform(map[string]*cutting.Fragment{
		"fragment_0": fragA,
		"fragment_1": fragB,
	}, PrepBasisSIC, 0)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Same(t, fragA, data["fragment_0"].Fragment)
	assert.Same(t, fragB, data["fragment_1"].Fragment)
}

func TestSampledTomographyFrequenciesSumPerSetting(t *testing.T) {
	q0 := circuit.Wire(0)
	circ := circuit.FromGates(circuit.H(q0))
	fragment, err := cutting.NewFragment(circ, nil, nil)
	require.NoError(t, err)

	engine := newTestEngine(t)
	data, err := engine.PerformSingle(fragment, PrepBasisSIC, 100)
	require.NoError(t, err)

	empty := NewCondition(nil, nil, "")
	total := 0.0
	for _, substring := range data.Substrings() {
		total += data.ConditionOn(substring)[empty]
	}
	assert.InDelta(t, 1.0, total, 1e-9, "per-setting frequencies sum to one")
}
