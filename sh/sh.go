// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sh holds baked second-order spherical harmonics.
//
// An SH3 stores nine bands of RGB in the layout produced by the baker:
// coefficient 3*band+channel. It implements shbake.CoefficientSetter, so it
// can receive the result of FromTextureCube directly:
//
//	var irradiance sh.SH3
//	err := shbake.FromTextureCube(cube, &irradiance, shbake.DecodeRGBM)
//	r, g, b := irradiance.Irradiance(sh.Vec3{Y: 1})
package sh

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/shbake/internal/kernel"
)

// Bands is the number of basis functions in an SH3.
const Bands = kernel.BandCount

// Vec3 is a direction in the cubemap's coordinate frame.
type Vec3 struct {
	X, Y, Z float32
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalize() Vec3 {
	l := math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// SH3 is a set of second-order spherical harmonic coefficients for RGB.
type SH3 struct {
	Coefficients [kernel.CoefficientCount]float32
}

// SetFromCoefficients replaces all coefficients.
func (s *SH3) SetFromCoefficients(c [kernel.CoefficientCount]float32) {
	s.Coefficients = c
}

// Coefficient returns one coefficient. It panics if band or channel is out
// of range.
func (s *SH3) Coefficient(band, channel int) float32 {
	if band < 0 || band >= Bands || channel < 0 || channel >= 3 {
		panic("sh: coefficient index out of range")
	}
	return s.Coefficients[3*band+channel]
}

// Scale multiplies every coefficient by f.
func (s *SH3) Scale(f float32) {
	for i := range s.Coefficients {
		s.Coefficients[i] *= f
	}
}

// Add adds o into s.
func (s *SH3) Add(o *SH3) {
	for i := range s.Coefficients {
		s.Coefficients[i] += o.Coefficients[i]
	}
}

// basis evaluates the nine basis functions at a unit direction.
func basis(d Vec3) [Bands]float32 {
	c := &kernel.BasisConstants
	x, y, z := d.X, d.Y, d.Z
	return [Bands]float32{
		float32(c[0]),
		float32(c[1]) * y,
		float32(c[2]) * z,
		float32(c[3]) * x,
		float32(c[4]) * (x * y),
		float32(c[5]) * (y * z),
		float32(c[6]) * (3*z*z - 1),
		float32(c[7]) * (x * z),
		float32(c[8]) * (x*x - y*y),
	}
}

// bandWeights are the clamped-cosine convolution factors per band.
var bandWeights = [Bands]float32{
	math32.Pi,
	2 * math32.Pi / 3, 2 * math32.Pi / 3, 2 * math32.Pi / 3,
	math32.Pi / 4, math32.Pi / 4, math32.Pi / 4, math32.Pi / 4, math32.Pi / 4,
}

func (s *SH3) eval(dir Vec3, weights *[Bands]float32) (r, g, b float32) {
	for i, y := range basis(dir.Normalize()) {
		if weights != nil {
			y *= weights[i]
		}
		r += s.Coefficients[3*i] * y
		g += s.Coefficients[3*i+1] * y
		b += s.Coefficients[3*i+2] * y
	}
	return r, g, b
}

// Evaluate reconstructs radiance along dir. dir need not be normalized.
func (s *SH3) Evaluate(dir Vec3) (r, g, b float32) {
	return s.eval(dir, nil)
}

// Irradiance returns the cosine-weighted irradiance for a surface with the
// given normal. Divide by π for the diffuse radiance of a white Lambertian
// surface.
func (s *SH3) Irradiance(normal Vec3) (r, g, b float32) {
	return s.eval(normal, &bandWeights)
}
