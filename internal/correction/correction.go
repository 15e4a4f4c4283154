// Package correction projects fitted fragment models onto the nearest
// physical ones. Each Choi block is diagonalized, the eigenvalues of all
// blocks of a fragment are corrected jointly (negative values are zeroed and
// redistributed so the total trace is preserved exactly), and the blocks are
// rebuilt from the corrected eigenvalues and the original eigenvectors.
// The redistribution rule is the closed-form projection of arXiv:1106.5458.
package correction

import (
	"fmt"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
	"github.com/longthangvu/cutqc-mlft/internal/linalg"
	"github.com/longthangvu/cutqc-mlft/internal/model"
	"github.com/longthangvu/cutqc-mlft/internal/tensor"
)

// Corrected applies maximum-likelihood corrections to every fragment model,
// returning replacement models. Input models are not mutated.
func Corrected(models map[string]*model.Model) (map[string]*model.Model, error) {
	out := make(map[string]*model.Model, len(models))
	for key, m := range models {
		corrected, err := CorrectedSingle(m)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", key, err)
		}
		out[key] = corrected
	}
	return out, nil
}

// CorrectedSingle corrects one fragment model.
//
// The correction is deliberately joint across blocks: eigenvalues from every
// block of the fragment are pooled into one distribution before negative
// values are eliminated. This mirrors the trace constraint of the full,
// block-diagonal Choi matrix rather than of each block separately.
func CorrectedSingle(m *model.Model) (*model.Model, error) {
	numPorts := len(m.Fragment.QuantumInputs) + len(m.Fragment.QuantumOutputs)
	dim := 1 << numPorts

	substrings := m.Substrings()
	eigenvalues := make([]float64, 0, len(substrings)*dim)
	eigenvectors := make([]*mat.CDense, len(substrings))
	for i, substring := range substrings {
		choi, err := blockToChoiMatrix(m.Block(substring), numPorts)
		if err != nil {
			return nil, fmt.Errorf("substring %s: %w", substring, err)
		}
		values, vectors, err := linalg.EigHermitian(choi)
		if err != nil {
			return nil, fmt.Errorf("substring %s: %w", substring, err)
		}
		eigenvalues = append(eigenvalues, values...)
		eigenvectors[i] = vectors
	}

	corrected := CorrectProbabilities(eigenvalues)

	blocks := make(map[circuit.BitString]*tensor.Tensor, len(substrings))
	for i, substring := range substrings {
		original := m.Block(substring)
		values := corrected[i*dim : (i+1)*dim]
		vectors := eigenvectors[i]

		// rebuild the block as sum_k values[k] * v_k v_k^dagger
		choi := mat.NewCDense(dim, dim, nil)
		for k := 0; k < dim; k++ {
			for r := 0; r < dim; r++ {
				vr := vectors.At(r, k)
				for c := 0; c < dim; c++ {
					choi.Set(r, c, choi.At(r, c)+complex(values[k], 0)*vr*cmplx.Conj(vectors.At(c, k)))
				}
			}
		}
		block, err := choiMatrixToBlock(choi, original, numPorts)
		if err != nil {
			return nil, fmt.Errorf("substring %s: %w", substring, err)
		}
		blocks[substring] = block
	}
	return model.NewModel(m.Fragment, blocks), nil
}

// CorrectProbabilities eliminates negative entries from a quasi-probability
// distribution: scanning the sorted values from most negative upward, each
// negative entry is zeroed and its value is spread evenly over all entries
// to its right, preserving the total sum exactly. Values are returned in the
// original order. A distribution with no negative entries is a fixed point.
func CorrectProbabilities(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	sorted := make([]float64, len(values))
	for i, idx := range order {
		sorted[i] = values[idx]
	}
	for i, v := range sorted {
		if v >= 0 {
			break
		}
		remaining := len(sorted) - i - 1
		if remaining == 0 {
			sorted[i] = 0
			break
		}
		sorted[i] = 0
		share := v / float64(remaining)
		for j := i + 1; j < len(sorted); j++ {
			sorted[j] += share
		}
	}

	corrected := make([]float64, len(values))
	for i, idx := range order {
		corrected[idx] = sorted[i]
	}
	return corrected
}

// blockToChoiMatrix reinterprets a Choi tensor block (one dimension-4 axis
// per port, axis digit = 2*rowBit + colBit) as a 2^n x 2^n matrix.
func blockToChoiMatrix(block *tensor.Tensor, numPorts int) (*mat.CDense, error) {
	dim := 1 << numPorts
	if block.Size() != dim*dim {
		return nil, fmt.Errorf("block has %d entries, expected %d", block.Size(), dim*dim)
	}
	choi := mat.NewCDense(dim, dim, nil)
	for flat, v := range block.Data {
		row, col := splitChoiIndex(flat, numPorts)
		choi.Set(row, col, v)
	}
	return choi, nil
}

// choiMatrixToBlock is the inverse reshaping, preserving the original
// block's axis labels.
func choiMatrixToBlock(choi *mat.CDense, original *tensor.Tensor, numPorts int) (*tensor.Tensor, error) {
	data := make([]complex128, original.Size())
	for flat := range data {
		row, col := splitChoiIndex(flat, numPorts)
		data[flat] = choi.At(row, col)
	}
	labels := append([]string{}, original.Labels...)
	dims := append([]int{}, original.Dims...)
	return tensor.New(labels, dims, data)
}

// splitChoiIndex unpacks a flat tensor index into matrix row and column: the
// base-4 digit for port i holds that port's row bit (high) and column bit
// (low), with port 0 most significant in both.
func splitChoiIndex(flat, numPorts int) (row, col int) {
	for i := numPorts - 1; i >= 0; i-- {
		digit := flat & 3
		flat >>= 2
		row |= (digit >> 1) << (numPorts - 1 - i)
		col |= (digit & 1) << (numPorts - 1 - i)
	}
	return row, col
}
