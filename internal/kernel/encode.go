// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// rgbmRange is the largest linear value RGBM can represent.
const rgbmRange = 255.0 * 255.0 / rgbmDivisor

// EncodeRGBM packs a linear color into RGBM bytes that [RGBMToLinear]
// reconstructs within quantization error. Channels above the RGBM range
// of 5 are clipped; negative channels encode as zero.
func EncodeRGBM(r, g, b float64) [4]uint8 {
	r, g, b = clampRange(r, rgbmRange), clampRange(g, rgbmRange), clampRange(b, rgbmRange)
	peak := max(r, g, b)
	if peak <= 0 {
		return [4]uint8{}
	}
	m := math.Ceil(peak * rgbmDivisor / 255)
	m = min(max(m, 1), 255)
	scale := m / rgbmDivisor
	return [4]uint8{quantize(r / scale), quantize(g / scale), quantize(b / scale), uint8(m)}
}

// EncodeRGBE packs a linear color into shared-exponent bytes that
// [RGBEToLinear] reconstructs within quantization error. Colors too dim for
// the smallest exponent encode as exact black (exponent 0).
func EncodeRGBE(r, g, b float64) [4]uint8 {
	r, g, b = max(r, 0), max(g, 0), max(b, 0)
	peak := max(r, g, b)
	if peak <= 0 {
		return [4]uint8{}
	}
	_, exp := math.Frexp(peak)
	e := exp + 128
	switch {
	case e < 1:
		return [4]uint8{}
	case e > 255:
		e = 255
		exp = e - 128
	}
	inv := 255 / math.Ldexp(1, exp)
	return [4]uint8{quantize(r * inv), quantize(g * inv), quantize(b * inv), uint8(e)}
}

func clampRange(v, hi float64) float64 {
	return min(max(v, 0), hi)
}

func quantize(v float64) uint8 {
	return uint8(min(max(math.Round(v), 0), 255))
}
