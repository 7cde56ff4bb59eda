// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements the compute-shader SH3 baking backend using
// gogpu/wgpu HAL.
//
// The kernel source is generated by the kernel package from the same face
// and basis tables the CPU scanners use, compiled from WGSL to SPIR-V with
// naga, and dispatched once per bake over an 8×8 workgroup grid covering one
// face. Every invocation projects texel (x, y) of all six faces and writes
// per-texel results; the host reduces them in float64.
//
// Each Scan owns its buffers, bind group and command buffer and releases
// them on every exit path. Dispatches on one Backend are serialized.
package gpu
