// Package tensor implements the small labeled-tensor algebra used to
// recombine fragment models: tensors whose axes are tagged with cut names,
// pairwise contraction over shared labels, and a precomputable contraction
// path for a network of tensors. The contraction kernel is a complex matrix
// multiply (gonum cblas128.Gemm) after axis permutation.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Tensor is a dense complex tensor with one label per axis. Labels within a
// tensor are unique; axes in two tensors that carry the same label are
// summed over when the tensors are contracted.
type Tensor struct {
	Labels []string
	Dims   []int
	Data   []complex128 // row-major in axis order
}

// New builds a tensor, validating that the data length matches the dims.
func New(labels []string, dims []int, data []complex128) (*Tensor, error) {
	if len(labels) != len(dims) {
		return nil, fmt.Errorf("tensor: %d labels for %d axes", len(labels), len(dims))
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return nil, fmt.Errorf("tensor: duplicate axis label %q", l)
		}
		seen[l] = struct{}{}
	}
	size := 1
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("tensor: invalid axis dimension %d", d)
		}
		size *= d
	}
	if len(data) != size {
		return nil, fmt.Errorf("tensor: data has %d entries, dims require %d", len(data), size)
	}
	return &Tensor{Labels: labels, Dims: dims, Data: data}, nil
}

// Scalar wraps a single value as a rank-0 tensor.
func Scalar(v complex128) *Tensor {
	return &Tensor{Data: []complex128{v}}
}

// Size returns the total number of entries.
func (t *Tensor) Size() int {
	size := 1
	for _, d := range t.Dims {
		size *= d
	}
	return size
}

// ScalarValue returns the value of a rank-0 tensor.
func (t *Tensor) ScalarValue() (complex128, error) {
	if len(t.Dims) != 0 {
		return 0, fmt.Errorf("tensor: rank-%d tensor is not a scalar", len(t.Dims))
	}
	return t.Data[0], nil
}

// axisOf returns the axis position of a label, or -1.
func (t *Tensor) axisOf(label string) int {
	for i, l := range t.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// transpose returns a copy of the tensor with axes reordered by perm, where
// perm[i] is the source axis for destination axis i.
func (t *Tensor) transpose(perm []int) *Tensor {
	rank := len(t.Dims)
	labels := make([]string, rank)
	dims := make([]int, rank)
	for i, src := range perm {
		labels[i] = t.Labels[src]
		dims[i] = t.Dims[src]
	}

	// strides of the source layout
	srcStrides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		srcStrides[i] = stride
		stride *= t.Dims[i]
	}

	data := make([]complex128, len(t.Data))
	index := make([]int, rank)
	for dst := range data {
		src := 0
		for i, idx := range index {
			src += idx * srcStrides[perm[i]]
		}
		data[dst] = t.Data[src]
		for i := rank - 1; i >= 0; i-- {
			index[i]++
			if index[i] < dims[i] {
				break
			}
			index[i] = 0
		}
	}
	return &Tensor{Labels: labels, Dims: dims, Data: data}
}

// Contract sums two tensors over all axes with shared labels. Tensors with
// no shared labels combine as an outer product. The result's axes are a's
// free axes followed by b's free axes, in their original orders.
func Contract(a, b *Tensor) (*Tensor, error) {
	var shared []string
	for _, l := range a.Labels {
		if b.axisOf(l) >= 0 {
			shared = append(shared, l)
		}
	}

	// permute a to (free..., shared...) and b to (shared..., free...)
	aPerm := make([]int, 0, len(a.Dims))
	var aFreeLabels []string
	var aFreeDims []int
	for i, l := range a.Labels {
		if b.axisOf(l) < 0 {
			aPerm = append(aPerm, i)
			aFreeLabels = append(aFreeLabels, l)
			aFreeDims = append(aFreeDims, a.Dims[i])
		}
	}
	sharedSize := 1
	for _, l := range shared {
		ai, bi := a.axisOf(l), b.axisOf(l)
		if a.Dims[ai] != b.Dims[bi] {
			return nil, fmt.Errorf("tensor: axis %q has dims %d and %d", l, a.Dims[ai], b.Dims[bi])
		}
		aPerm = append(aPerm, ai)
		sharedSize *= a.Dims[ai]
	}
	bPerm := make([]int, 0, len(b.Dims))
	for _, l := range shared {
		bPerm = append(bPerm, b.axisOf(l))
	}
	var bFreeLabels []string
	var bFreeDims []int
	for i, l := range b.Labels {
		if a.axisOf(l) < 0 {
			bPerm = append(bPerm, i)
			bFreeLabels = append(bFreeLabels, l)
			bFreeDims = append(bFreeDims, b.Dims[i])
		}
	}

	at := a.transpose(aPerm)
	bt := b.transpose(bPerm)
	aFreeSize := at.Size() / sharedSize
	bFreeSize := bt.Size() / sharedSize

	data := make([]complex128, aFreeSize*bFreeSize)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas128.General{Rows: aFreeSize, Cols: sharedSize, Stride: sharedSize, Data: at.Data},
		cblas128.General{Rows: sharedSize, Cols: bFreeSize, Stride: bFreeSize, Data: bt.Data},
		0,
		cblas128.General{Rows: aFreeSize, Cols: bFreeSize, Stride: bFreeSize, Data: data})

	labels := append(append([]string{}, aFreeLabels...), bFreeLabels...)
	dims := append(append([]int{}, aFreeDims...), bFreeDims...)
	return &Tensor{Labels: labels, Dims: dims, Data: data}, nil
}
