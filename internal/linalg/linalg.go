// Package linalg provides the two numerical kernels of the pipeline: a
// Hermitian eigendecomposition for complex matrices and a complex
// least-squares solver with a singular-value rank cutoff. Both are built on
// gonum's real symmetric/SVD factorizations through the standard real
// embedding of a complex matrix,
//
//	A = X + iY  ->  [[X, -Y], [Y, X]].
package linalg

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// EigHermitian computes the eigendecomposition of an n x n Hermitian matrix.
// Eigenvalues are returned in ascending order; eigenvectors are the columns
// of the returned matrix, orthonormal with respect to the Hermitian inner
// product.
//
// The real embedding of a Hermitian matrix is symmetric and carries each
// eigenvalue twice: every complex eigenvector v = a+ib appears as the two
// real vectors (a;b) and (-b;a). The complex eigenvectors are recovered by
// folding each real eigenvector back into C^n and discarding the redundant
// half via Gram-Schmidt.
func EigHermitian(a *mat.CDense) (values []float64, vectors *mat.CDense, err error) {
	n, cols := a.Dims()
	if n != cols {
		return nil, nil, fmt.Errorf("eig: matrix is %dx%d, expected square", n, cols)
	}

	embedded := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := a.At(i, j)
			embedded.SetSym(i, j, real(v))
			embedded.SetSym(n+i, n+j, real(v))
			// the off-diagonal blocks hold +/- the imaginary part
			embedded.SetSym(i, n+j, -imag(v))
			if i != j {
				embedded.SetSym(j, n+i, -imag(a.At(j, i)))
			}
		}
	}

	var es mat.EigenSym
	if !es.Factorize(embedded, true) {
		return nil, nil, fmt.Errorf("eig: factorization failed")
	}
	realValues := es.Values(nil)
	var realVectors mat.Dense
	es.VectorsTo(&realVectors)

	// fold the 2n real eigenvectors into complex candidates and keep an
	// orthonormal set of n
	values = make([]float64, 0, n)
	kept := make([][]complex128, 0, n)
	for k := 0; k < 2*n && len(kept) < n; k++ {
		v := make([]complex128, n)
		for i := 0; i < n; i++ {
			v[i] = complex(realVectors.At(i, k), realVectors.At(n+i, k))
		}
		// remove components along already-accepted eigenvectors
		for _, u := range kept {
			var overlap complex128
			for i := range u {
				overlap += cmplx.Conj(u[i]) * v[i]
			}
			for i := range v {
				v[i] -= overlap * u[i]
			}
		}
		norm := 0.0
		for _, x := range v {
			norm += real(x)*real(x) + imag(x)*imag(x)
		}
		norm = math.Sqrt(norm)
		if norm < 1e-8 {
			continue
		}
		for i := range v {
			v[i] /= complex(norm, 0)
		}
		kept = append(kept, v)
		values = append(values, realValues[k])
	}
	if len(kept) != n {
		return nil, nil, fmt.Errorf("eig: recovered %d of %d eigenvectors", len(kept), n)
	}

	vectors = mat.NewCDense(n, n, nil)
	for k, v := range kept {
		for i := 0; i < n; i++ {
			vectors.Set(i, k, v[i])
		}
	}
	return values, vectors, nil
}

// SolveLeastSquares solves min ||A x - b||_2 for a complex matrix A and a
// real right-hand side, using an SVD pseudo-inverse. Singular values at or
// below rankCutoff times the largest singular value are treated as zero;
// this is the regularization knob against near-degenerate systems.
func SolveLeastSquares(a *mat.CDense, b []float64, rankCutoff float64) ([]complex128, error) {
	rows, n := a.Dims()
	if len(b) != rows {
		return nil, fmt.Errorf("lstsq: rhs has %d entries, matrix has %d rows", len(b), rows)
	}

	// real embedding: [[X, -Y], [Y, X]] [Re x; Im x] = [b; 0]
	embedded := mat.NewDense(2*rows, 2*n, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			embedded.Set(i, j, real(v))
			embedded.Set(i, n+j, -imag(v))
			embedded.Set(rows+i, j, imag(v))
			embedded.Set(rows+i, n+j, real(v))
		}
	}
	rhs := mat.NewVecDense(2*rows, nil)
	for i, v := range b {
		rhs.SetVec(i, v)
	}

	var svd mat.SVD
	if !svd.Factorize(embedded, mat.SVDThin) {
		return nil, fmt.Errorf("lstsq: SVD factorization failed")
	}
	singular := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// x = V diag(1/sigma) U^T rhs, with small singular values zeroed
	maxSigma := 0.0
	for _, s := range singular {
		if s > maxSigma {
			maxSigma = s
		}
	}
	coeffs := make([]float64, len(singular))
	for k, s := range singular {
		if maxSigma == 0 || s <= rankCutoff*maxSigma {
			continue
		}
		dot := 0.0
		for i := 0; i < 2*rows; i++ {
			dot += u.At(i, k) * rhs.AtVec(i)
		}
		coeffs[k] = dot / s
	}
	solution := make([]float64, 2*n)
	for j := 0; j < 2*n; j++ {
		sum := 0.0
		for k := range singular {
			if coeffs[k] != 0 {
				sum += v.At(j, k) * coeffs[k]
			}
		}
		solution[j] = sum
	}

	x := make([]complex128, n)
	for j := 0; j < n; j++ {
		x[j] = complex(solution[j], solution[n+j])
	}
	return x, nil
}
