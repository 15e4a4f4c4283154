package model

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/cutting"
	"github.com/longthangvu/cutqc-mlft/internal/sim"
	"github.com/longthangvu/cutqc-mlft/internal/tomography"
	"github.com/longthangvu/cutqc-mlft/internal/workers"
)

func exactData(t *testing.T, f *cutting.Fragment) *tomography.Data {
	t.Helper()
	engine := tomography.NewEngine(sim.New(7), workers.NewPool(2), zerolog.Nop())
	data, err := engine.PerformSingle(f, tomography.DefaultPrepBasis, 0)
	require.NoError(t, err)
	return data
}

func TestBuildSinglePortlessFragmentYieldsScalarBlocks(t *testing.T) {
	q0, q1 := circuit.Wire(0), circuit.Wire(1)
	circ := circuit.FromGates(circuit.H(q0), circuit.CX(q0, q1))
	fragment, err := cutting.NewFragment(circ, nil, nil)
	require.NoError(t, err)

	m, err := BuildSingle(exactData(t, fragment), DefaultRankCutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumBlocks())

	for _, substring := range []circuit.BitString{"00", "11"} {
		block := m.Block(substring)
		require.NotNil(t, block)
		assert.Empty(t, block.Labels)
		v, err := block.ScalarValue()
		require.NoError(t, err)
		assert.InDelta(t, 0.5, real(v), 1e-9, substring)
		assert.InDelta(t, 0.0, imag(v), 1e-9, substring)
	}
	v, err := m.Block("01").ScalarValue()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, real(v), 1e-9)
}

func TestBuildSingleRecoversOutputState(t *testing.T) {
	// H|0> = |+>; the single-output Choi block is |+><+| flattened
	q0 := circuit.Wire(0)
	circ := circuit.FromGates(circuit.H(q0))
	fragment, err := cutting.NewFragment(circ, nil, map[circuit.Qubit]string{q0: "cut_0"})
	require.NoError(t, err)

	m, err := BuildSingle(exactData(t, fragment), DefaultRankCutoff)
	require.NoError(t, err)
	require.Equal(t, 1, m.NumBlocks())

	block := m.Block("")
	require.NotNil(t, block)
	assert.Equal(t, []string{"cut_0"}, block.Labels)
	assert.Equal(t, []int{4}, block.Dims)
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 0.5, real(block.Data[i]), 1e-6, i)
		assert.InDelta(t, 0.0, imag(block.Data[i]), 1e-6, i)
	}
}

func TestBuildSingleConditionalBlocksCarryJointWeight(t *testing.T) {
	// upstream Bell fragment: q1 measured, q0 feeds a cut; conditioned on
	// the measured outcome the cut qubit is |0> or |1>, each with weight 1/2
	q0, q1 := circuit.Wire(0), circuit.Wire(1)
	circ := circuit.FromGates(circuit.H(q0), circuit.CX(q0, q1))
	fragment, err := cutting.NewFragment(circ, nil, map[circuit.Qubit]string{q0: "cut_0"})
	require.NoError(t, err)

	m, err := BuildSingle(exactData(t, fragment), DefaultRankCutoff)
	require.NoError(t, err)
	require.Equal(t, 2, m.NumBlocks())

	zero := m.Block("0")
	require.NotNil(t, zero)
	assert.InDelta(t, 0.5, real(zero.Data[0]), 1e-6)
	assert.InDelta(t, 0.0, real(zero.Data[3]), 1e-6)

	one := m.Block("1")
	require.NotNil(t, one)
	assert.InDelta(t, 0.0, real(one.Data[0]), 1e-6)
	assert.InDelta(t, 0.5, real(one.Data[3]), 1e-6)

	// off-diagonal coherences vanish for a measured Bell pair
	for _, i := range []int{1, 2} {
		assert.InDelta(t, 0.0, real(zero.Data[i]), 1e-6)
		assert.InDelta(t, 0.0, real(one.Data[i]), 1e-6)
	}
}

func TestBuildSingleAxisLabelsListInputsBeforeOutputs(t *testing.T) {
	q0 := circuit.Wire(0)
	circ := circuit.FromGates(circuit.X(q0))
	fragment, err := cutting.NewFragment(circ,
		map[circuit.Qubit]string{q0: "cut_0"},
		map[circuit.Qubit]string{q0: "cut_1"},
	)
	require.NoError(t, err)

	m, err := BuildSingle(exactData(t, fragment), DefaultRankCutoff)
	require.NoError(t, err)

	block := m.Block("")
	require.NotNil(t, block)
	assert.Equal(t, []string{"cut_0", "cut_1"}, block.Labels)
	assert.Equal(t, []int{4, 4}, block.Dims)
}

func TestBuildCoversAllFragments(t *testing.T) {
	q0, q1 := circuit.Wire(0), circuit.Wire(1)
	fragA, err := cutting.NewFragment(circuit.FromGates(circuit.H(q0)), nil, nil)
	require.NoError(t, err)
	fragB, err := cutting.NewFragment(circuit.FromGates(circuit.X(q1)), nil, nil)
	require.NoError(t, err)

	data := map[string]*tomography.Data{
		"fragment_0": exactData(t, fragA),
		"fragment_1": exactData(t, fragB),
	}
	models, err := Build(data, DefaultRankCutoff)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Same(t, fragA, models["fragment_0"].Fragment)
	assert.Same(t, fragB, models["fragment_1"].Fragment)
}
