// Package shbake bakes cubemap radiance into second-order spherical
// harmonics.
//
// # Overview
//
// Given six square cubemap faces of 8-bit RGBA texels, shbake integrates the
// decoded radiance over the sphere and projects it onto the nine real SH
// basis functions of bands 0..2, one set per color channel. The result is 27
// coefficients suitable for diffuse irradiance lighting.
//
// # Quick Start
//
//	import "github.com/gogpu/shbake"
//
//	var faces shbake.Faces // six size*size*4 byte slices, +X -X +Y -Y +Z -Z
//	res, err := shbake.BakeFaces(faces, 128, shbake.DecodeRGBM)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Coefficients)
//
// # Decode Modes
//
// Texels are interpreted according to a [DecodeMode]:
//   - [DecodeRaw]: channel values used directly (0..255)
//   - [DecodeGamma]: sRGB transfer function to linear
//   - [DecodeRGBE]: shared exponent in alpha
//   - [DecodeRGBM]: range multiplier in alpha
//
// # Backends
//
// Three interchangeable backends produce the same coefficients within
// floating point rounding:
//   - GPU compute shader, enabled by importing [github.com/gogpu/shbake/gpu]
//   - worker pool, splitting faces (and large faces into row bands)
//   - single-threaded reference scan
//
// Exactly one backend runs per call. The GPU is preferred when registered,
// available and able to hold the texel buffers; otherwise the worker pool is
// used when configured; otherwise the reference scan. An execution failure
// is returned as a [*BackendError] and is never retried on another backend.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Baker, options, FaceReader, CoefficientSetter
//   - Internal: kernel (per-texel math), parallel (worker pool), gpu (compute)
//   - Sources: source/imagefaces (LDR images), source/exrcube (OpenEXR cube)
//   - Output: sh (SH3 evaluation)
//
// # Coordinate System
//
// Face directions follow the common cubemap convention: texel (0,0) is the
// top-left corner of each face, u increases with x, v increases with y.
package shbake
