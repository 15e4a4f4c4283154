package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQubitOrdering(t *testing.T) {
	qubits := []Qubit{Named("cut_1"), Wire(2), Named("cut_0"), Wire(0)}
	SortQubits(qubits)

	assert.Equal(t, []Qubit{Wire(0), Wire(2), Named("cut_0"), Named("cut_1")}, qubits,
		"wire qubits should sort before named qubits")
}

func TestFromGatesPacksMoments(t *testing.T) {
	q0, q1 := Wire(0), Wire(1)
	c := FromGates(H(q0), H(q1), CX(q0, q1), X(q1))

	require.Len(t, c.Moments, 3)
	assert.Len(t, c.Moments[0], 2, "independent gates should share a moment")
	assert.Equal(t, KindCX, c.Moments[1][0].Kind)
	assert.Equal(t, KindX, c.Moments[2][0].Kind)
}

func TestHasQubitBefore(t *testing.T) {
	q0, q1 := Wire(0), Wire(1)
	c := New(
		Moment{H(q0)},
		Moment{CX(q0, q1)},
	)

	assert.False(t, c.HasQubitBefore(q1, 1), "q1 is first addressed in moment 1")
	assert.True(t, c.HasQubitBefore(q0, 1))
	assert.True(t, c.HasQubitBefore(q1, 2))
	assert.False(t, c.HasQubitBefore(q0, 0))
}

func TestFactorizeSplitsDisconnectedComponents(t *testing.T) {
	q := []Qubit{Wire(0), Wire(1), Wire(2), Wire(3)}
	c := New(
		Moment{H(q[0]), H(q[2])},
		Moment{CX(q[0], q[1]), CX(q[2], q[3])},
	)

	factors := c.Factorize()
	require.Len(t, factors, 2)
	assert.Equal(t, []Qubit{q[0], q[1]}, factors[0].AllQubits())
	assert.Equal(t, []Qubit{q[2], q[3]}, factors[1].AllQubits())
}

func TestFactorizeKeepsConnectedCircuitWhole(t *testing.T) {
	q := []Qubit{Wire(0), Wire(1), Wire(2)}
	c := New(
		Moment{H(q[0])},
		Moment{CX(q[0], q[1])},
		Moment{CX(q[1], q[2])},
	)

	factors := c.Factorize()
	require.Len(t, factors, 1)
	assert.Equal(t, q, factors[0].AllQubits())
}

func TestWithPrefixOpsDoesNotMutate(t *testing.T) {
	q0 := Wire(0)
	c := New(Moment{H(q0)})
	prefixed := c.WithPrefixOps([]Gate{X(q0)})

	assert.Equal(t, 1, c.NumMoments(), "original circuit must be unchanged")
	require.Equal(t, 2, prefixed.NumMoments())
	assert.Equal(t, KindX, prefixed.Moments[0][0].Kind)
}

func TestBitStringRoundTrip(t *testing.T) {
	assert.Equal(t, BitString("0101"), BitStringFromIndex(5, 4))
	assert.Equal(t, 5, BitString("0101").Index())
	assert.Equal(t, BitString("01"+"10"), BitString("01").Concat("10"))
	assert.Equal(t, 1, BitString("0100").Bit(1))
	assert.Equal(t, 0, BitString("0100").Bit(0))
}

func TestBitStringValidate(t *testing.T) {
	assert.NoError(t, BitString("0101").Validate(4))
	assert.Error(t, BitString("010").Validate(4))
	assert.Error(t, BitString("01a1").Validate(4))
}
