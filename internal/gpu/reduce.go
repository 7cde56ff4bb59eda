// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/shbake/internal/kernel"
)

// reduceTexels sums per-texel solid angles and SH contributions in float64.
// solid holds one value per texel; sh holds CoefficientCount values per
// texel in the same order.
func reduceTexels(solid, sh []byte) kernel.Partial {
	var p kernel.Partial
	texels := len(solid) / 4
	for t := range texels {
		p.SolidAngle += float64(readFloat(solid, t))
		base := t * kernel.CoefficientCount
		for i := range kernel.CoefficientCount {
			p.Acc[i] += float64(readFloat(sh, base+i))
		}
	}
	return p
}

// readFloat decodes the i-th little-endian float32 of b.
func readFloat(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
}

// paramsBytes encodes the kernel's Params uniform: size, mode, two pad words.
func paramsBytes(size int, mode kernel.DecodeMode) []byte {
	b := make([]byte, paramsSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(size)) //nolint:gosec // size bounded by Accepts
	binary.LittleEndian.PutUint32(b[4:], uint32(mode))
	return b
}
