// Package distribution provides helpers for the classical outcome
// distributions produced by recombination: fidelity against a reference,
// negative-entry filtering for the uncorrected path, and normalization.
package distribution

import (
	"math"

	"github.com/longthangvu/cutqc-mlft/internal/circuit"
)

// Fidelity computes the classical fidelity (sum of sqrt(p*q))^2 / (sum p *
// sum q) between a sparse distribution and a dense reference indexed by
// bitstring (first qubit most significant). Neither distribution needs to
// be normalized.
func Fidelity(approx map[circuit.BitString]float64, exact []float64) float64 {
	overlap := 0.0
	approxTotal := 0.0
	for bits, p := range approx {
		// negative residues from uncorrected reconstructions carry no overlap
		if product := p * exact[bits.Index()]; product > 0 {
			overlap += math.Sqrt(product)
		}
		approxTotal += p
	}
	exactTotal := 0.0
	for _, q := range exact {
		exactTotal += q
	}
	norms := approxTotal * exactTotal
	if norms <= 0 {
		return 0
	}
	return overlap * overlap / norms
}

// WithoutNegatives returns a copy of the distribution with negative entries
// dropped. This is the naive filter applied to uncorrected recombination
// results.
func WithoutNegatives(dist map[circuit.BitString]float64) map[circuit.BitString]float64 {
	out := make(map[circuit.BitString]float64, len(dist))
	for bits, p := range dist {
		if p >= 0 {
			out[bits] = p
		}
	}
	return out
}

// Total returns the sum of all entries.
func Total(dist map[circuit.BitString]float64) float64 {
	total := 0.0
	for _, p := range dist {
		total += p
	}
	return total
}

// Normalized returns a copy of the distribution scaled to sum to one. A
// distribution with zero total is returned unchanged.
func Normalized(dist map[circuit.BitString]float64) map[circuit.BitString]float64 {
	total := Total(dist)
	out := make(map[circuit.BitString]float64, len(dist))
	if total == 0 {
		for bits, p := range dist {
			out[bits] = p
		}
		return out
	}
	for bits, p := range dist {
		out[bits] = p / total
	}
	return out
}
