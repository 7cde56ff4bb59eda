// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// Vec3 is a direction in cubemap space.
type Vec3 struct {
	X, Y, Z float64
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Axis expresses one direction component as u*U + v*V + C.
type Axis struct {
	U, V, C float64
}

// FaceAxes maps local face coordinates (u horizontal, v vertical, both in
// [-1, 1]) to the unnormalized direction through that point of the unit cube.
//
//	+X ( 1, -v, -u)   -X (-1, -v,  u)
//	+Y ( u,  1,  v)   -Y ( u, -1, -v)
//	+Z ( u, -v,  1)   -Z (-u, -v, -1)
//
// The GPU kernel is generated from this table.
var FaceAxes = [FaceCount][3]Axis{
	FacePosX: {{C: 1}, {V: -1}, {U: -1}},
	FaceNegX: {{C: -1}, {V: -1}, {U: 1}},
	FacePosY: {{U: 1}, {C: 1}, {V: 1}},
	FaceNegY: {{U: 1}, {C: -1}, {V: -1}},
	FacePosZ: {{U: 1}, {V: -1}, {C: 1}},
	FaceNegZ: {{U: -1}, {V: -1}, {C: -1}},
}

func (a Axis) eval(u, v float64) float64 {
	return a.U*u + a.V*v + a.C
}

// TexelCenter returns the local coordinate of texel i's center on a face of
// the given size. Centers are evenly spaced in [-1+step/2, 1-step/2].
func TexelCenter(size, i int) float64 {
	texelSize := 2 / float64(size)
	return texelSize*0.5 - 1 + float64(i)*texelSize
}

// FaceDirection returns the unnormalized direction for local coordinates
// (u, v) on face f.
func FaceDirection(f Face, u, v float64) Vec3 {
	axes := &FaceAxes[f]
	return Vec3{axes[0].eval(u, v), axes[1].eval(u, v), axes[2].eval(u, v)}
}

// Sample returns the unit direction through the center of texel (x, y) and
// the texel's differential solid angle 4/(|d|·|d|²), where d is the
// direction before normalization.
func Sample(f Face, size, x, y int) (Vec3, float64) {
	d := FaceDirection(f, TexelCenter(size, x), TexelCenter(size, y))
	len2 := d.Dot(d)
	length := math.Sqrt(len2)
	solidAngle := 4 / (length * len2)
	return Vec3{d.X / length, d.Y / length, d.Z / length}, solidAngle
}

// SolidAngleArea converts a raw solid-angle sum to steradians. A texel's
// true solid angle is (2/size)²/|d|³, so the raw weight 4/|d|³ is larger by
// size² and the full-sphere raw sum approaches 4π·size².
func SolidAngleArea(size int) float64 {
	return 1 / (float64(size) * float64(size))
}
