// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// DecodeMode selects how the four bytes of a texel map to linear RGB.
// The numeric values are part of the GPU kernel's uniform layout.
type DecodeMode uint32

const (
	// DecodeRaw passes channel values through unchanged (0..255).
	DecodeRaw DecodeMode = iota

	// DecodeGamma applies the sRGB transfer function to each channel.
	DecodeGamma

	// DecodeRGBE treats alpha as a shared exponent.
	DecodeRGBE

	// DecodeRGBM treats alpha as a range multiplier.
	DecodeRGBM
)

// String returns the mode name.
func (m DecodeMode) String() string {
	switch m {
	case DecodeRaw:
		return "raw"
	case DecodeGamma:
		return "gamma"
	case DecodeRGBE:
		return "rgbe"
	case DecodeRGBM:
		return "rgbm"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the supported modes.
func (m DecodeMode) Valid() bool {
	return m <= DecodeRGBM
}

// Color is a linear-light color sample.
type Color struct {
	R, G, B, A float64
}

// rgbmDivisor folds the RGBM range of 5 and both 1/255 normalizations:
// (a * 5) / 255 / 255 == a / 13005.
const rgbmDivisor = 13005

// Decode converts one raw texel to linear color.
// Alpha is 0 for Raw and Gamma and fixed to 1 for RGBE and RGBM.
// An invalid mode yields the zero color.
func Decode(mode DecodeMode, c0, c1, c2, c3 uint8) Color {
	switch mode {
	case DecodeRaw:
		return Color{R: float64(c0), G: float64(c1), B: float64(c2)}
	case DecodeGamma:
		return Color{
			R: GammaToLinear(float64(c0) / 255),
			G: GammaToLinear(float64(c1) / 255),
			B: GammaToLinear(float64(c2) / 255),
		}
	case DecodeRGBE:
		return RGBEToLinear(c0, c1, c2, c3)
	case DecodeRGBM:
		return RGBMToLinear(c0, c1, c2, c3)
	default:
		return Color{}
	}
}

// GammaToLinear applies the sRGB decode curve to v in [0, 1].
// Values at or above 1 use the plain 2.4 power.
func GammaToLinear(v float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v <= 0.04045:
		return v / 12.92
	case v < 1:
		return math.Pow((v+0.055)/1.055, 2.4)
	default:
		return math.Pow(v, 2.4)
	}
}

// RGBEToLinear decodes a shared-exponent texel. A zero exponent is exact
// black with alpha 1, whatever the mantissas hold.
func RGBEToLinear(r, g, b, e uint8) Color {
	if e == 0 {
		return Color{A: 1}
	}
	scale := math.Ldexp(1, int(e)-128) / 255
	return Color{
		R: float64(r) * scale,
		G: float64(g) * scale,
		B: float64(b) * scale,
		A: 1,
	}
}

// RGBMToLinear decodes a multiplier-in-alpha texel.
func RGBMToLinear(r, g, b, m uint8) Color {
	scale := float64(m) / rgbmDivisor
	return Color{
		R: float64(r) * scale,
		G: float64(g) * scale,
		B: float64(b) * scale,
		A: 1,
	}
}
