// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package kernel holds the per-texel math shared by every bake backend.
//
// Color decoding, direction and solid-angle reconstruction, and projection
// onto the second-order SH basis live here exactly once. The reference and
// worker-parallel scans call these functions directly, and the GPU compute
// kernel is generated from the same constant tables ([FaceAxes] and
// [BasisConstants]) by [WGSL], so the three backends cannot drift apart.
//
// Accumulator layout is index 3*band + channel: nine bands of RGB triples.
package kernel
