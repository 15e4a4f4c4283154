package model

import (
	"fmt"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/linalg"
	"github.com/longthangvu/cutqc-mlft/internal/tensor"
	"github.com/longthangvu/cutqc-mlft/internal/tomography"
)

// Build converts tomography data for every fragment into fragment models.
// rankCutoff controls how small singular values of the interrogation matrix
// are treated as zero; pass DefaultRankCutoff unless tuning.
func Build(data map[string]*tomography.Data, rankCutoff float64) (map[string]*Model, error) {
	out := make(map[string]*Model, len(data))
	for key, fragmentData := range data {
		m, err := BuildSingle(fragmentData, rankCutoff)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", key, err)
		}
		out[key] = m
	}
	return out, nil
}

// BuildSingle fits one fragment's model. For each circuit-output bitstring
// it solves A x = b, where the rows of A are the tomography interrogation
// operators and b holds the recorded probabilities (missing conditions read
// as zero), then reshapes x into a tensor with one dimension-4 axis per
// quantum input and output, labeled by cut name.
func BuildSingle(data *tomography.Data, rankCutoff float64) (*Model, error) {
	f := data.Fragment
	numInputs := len(f.QuantumInputs)
	numOutputs := len(f.QuantumOutputs)

	interrogation, conditions, err := interrogationMatrix(numInputs, numOutputs, data.Basis)
	if err != nil {
		return nil, err
	}
	labels := append(append([]string{}, f.InputCuts()...), f.OutputCuts()...)
	dims := make([]int, len(labels))
	for i := range dims {
		dims[i] = 4
	}

	blocks := make(map[circuit.BitString]*tensor.Tensor)
	for _, substring := range data.Substrings() {
		conditional := data.ConditionOn(substring)
		outcomes := make([]float64, len(conditions))
		for i, cond := range conditions {
			outcomes[i] = conditional[cond]
		}
		choi, err := linalg.SolveLeastSquares(interrogation, outcomes, rankCutoff)
		if err != nil {
			return nil, fmt.Errorf("substring %s: %w", substring, err)
		}
		block, err := tensor.New(labels, dims, choi)
		if err != nil {
			return nil, fmt.Errorf("substring %s: %w", substring, err)
		}
		blocks[substring] = block
	}
	return NewModel(f, blocks), nil
}

type interrogationKey struct {
	numInputs  int
	numOutputs int
	basis      tomography.PrepBasis
}

type interrogationEntry struct {
	matrix     *mat.CDense
	conditions []tomography.Condition
}

var (
	interrogationMu    sync.Mutex
	interrogationCache = make(map[interrogationKey]*interrogationEntry)
)

// interrogationMatrix returns the matrix whose rows are the flattened
// operators interrogated by fragment tomography, together with the condition
// enumeration matching its row order. The matrix depends only on the port
// counts and prep basis, so it is memoized; many fragments share a shape.
func interrogationMatrix(numInputs, numOutputs int, basis tomography.PrepBasis) (*mat.CDense, []tomography.Condition, error) {
	key := interrogationKey{numInputs: numInputs, numOutputs: numOutputs, basis: basis}
	interrogationMu.Lock()
	defer interrogationMu.Unlock()
	if entry, ok := interrogationCache[key]; ok {
		return entry.matrix, entry.conditions, nil
	}

	conditions, err := tomography.Conditions(numInputs, numOutputs, basis)
	if err != nil {
		return nil, nil, err
	}
	width := 1 << (2 * uint(numInputs+numOutputs)) // 4^(inputs+outputs)
	matrix := mat.NewCDense(len(conditions), width, nil)
	for row, cond := range conditions {
		vec, err := conditionVector(cond)
		if err != nil {
			return nil, nil, err
		}
		for col, v := range vec {
			matrix.Set(row, col, v)
		}
	}
	entry := &interrogationEntry{matrix: matrix, conditions: conditions}
	interrogationCache[key] = entry
	return entry.matrix, entry.conditions, nil
}

// conditionVector flattens a tomography condition into the operator whose
// expectation value against the Choi tensor is the recorded probability:
// kron(conj(input projectors), output projectors), inputs first.
func conditionVector(cond tomography.Condition) ([]complex128, error) {
	inputVec := []complex128{1}
	for _, state := range cond.PrepStateList() {
		proj, err := tomography.StateProjector(state)
		if err != nil {
			return nil, err
		}
		inputVec = kron(inputVec, proj[:])
	}

	outputVec := []complex128{1}
	bases := cond.MeasBasisList()
	for i, basis := range bases {
		sign := "+"
		if cond.Outcome.Bit(i) == 1 {
			sign = "-"
		}
		proj, err := tomography.StateProjector(tomography.PrepState(string(basis) + sign))
		if err != nil {
			return nil, err
		}
		outputVec = kron(outputVec, proj[:])
	}

	conjInput := make([]complex128, len(inputVec))
	for i, v := range inputVec {
		conjInput[i] = cmplx.Conj(v)
	}
	return kron(conjInput, outputVec), nil
}

func kron(a, b []complex128) []complex128 {
	out := make([]complex128, len(a)*len(b))
	for i, av := range a {
		for j, bv := range b {
			out[i*len(b)+j] = av * bv
		}
	}
	return out
}
