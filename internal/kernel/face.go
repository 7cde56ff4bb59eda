// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import "math"

// Face identifies one of the six cubemap faces.
type Face uint8

// Cubemap faces in canonical order.
const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// FaceCount is the number of faces in a cubemap.
const FaceCount = 6

// ChannelCount is the number of bytes per texel in a face buffer.
const ChannelCount = 4

// Faces lists all cubemap faces in canonical order.
var Faces = [FaceCount]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

// String returns the conventional face name (+X, -X, ...).
func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	case FaceNegZ:
		return "-Z"
	default:
		return "Face(?)"
	}
}

// Valid reports whether f names one of the six faces.
func (f Face) Valid() bool {
	return f < FaceCount
}

// BufferLen returns the byte length of one face buffer of the given size.
// The result is only meaningful when [SizeFits] reports true.
func BufferLen(size int) int {
	return size * size * ChannelCount
}

// SizeFits reports whether size is positive and one face buffer of that
// size has a length representable as an int.
func SizeFits(size int) bool {
	return size > 0 && size <= math.MaxInt/ChannelCount/size
}
