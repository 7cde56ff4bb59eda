// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// BandCount is the number of second-order SH basis functions.
const BandCount = 9

// CoefficientCount is the accumulator length: nine bands of RGB.
const CoefficientCount = BandCount * 3

// BasisConstants are the normalization factors of the real SH basis, in
// band order. Each multiplies the monomial
//
//	1, y, z, x, xy, yz, 3z²-1, xz, x²-y²
//
// of a unit direction. The GPU kernel is generated from this table.
var BasisConstants = [BandCount]float64{
	0.282095,
	-0.488603,
	0.488603,
	-0.488603,
	1.092548,
	-1.092548,
	0.315392,
	-1.092548,
	0.546274,
}

// Accumulator collects weighted SH projections. Entry 3*band+channel holds
// the running sum for that band and color channel.
type Accumulator [CoefficientCount]float64

// Add adds o into a entry by entry.
func (a *Accumulator) Add(o *Accumulator) {
	for i := range a {
		a[i] += o[i]
	}
}

// Float32 converts the accumulator to single precision.
func (a *Accumulator) Float32() [CoefficientCount]float32 {
	var out [CoefficientCount]float32
	for i, v := range a {
		out[i] = float32(v)
	}
	return out
}

// EvalBasis evaluates the nine basis functions at the unit direction d.
func EvalBasis(d Vec3) [BandCount]float64 {
	x, y, z := d.X, d.Y, d.Z
	c := &BasisConstants
	return [BandCount]float64{
		c[0],
		c[1] * y,
		c[2] * z,
		c[3] * x,
		c[4] * (x * y),
		c[5] * (y * z),
		c[6] * (3*z*z - 1),
		c[7] * (x * z),
		c[8] * (x*x - y*y),
	}
}

// Project adds color, weighted by weight, along direction d into acc.
func Project(d Vec3, color Color, weight float64, acc *Accumulator) {
	r := color.R * weight
	g := color.G * weight
	b := color.B * weight
	for i, bv := range EvalBasis(d) {
		acc[3*i] += r * bv
		acc[3*i+1] += g * bv
		acc[3*i+2] += b * bv
	}
}

// ScaleSH multiplies every coefficient of acc by scale.
func ScaleSH(acc *Accumulator, scale float64) {
	for i := range acc {
		acc[i] *= scale
	}
}

// NormalizationScale returns 4π/solidAngleSum, the factor that maps a raw
// quadrature sum onto the full sphere.
func NormalizationScale(solidAngleSum float64) float64 {
	return 4 * math.Pi / solidAngleSum
}

// Normalize scales acc by [NormalizationScale] of solidAngleSum.
func Normalize(acc *Accumulator, solidAngleSum float64) {
	ScaleSH(acc, NormalizationScale(solidAngleSum))
}
