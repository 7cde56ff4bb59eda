package shbake

import "github.com/gogpu/shbake/internal/kernel"

// Face identifies one of the six cubemap faces.
type Face = kernel.Face

// Cubemap faces in their canonical order.
const (
	FacePosX = kernel.FacePosX
	FaceNegX = kernel.FaceNegX
	FacePosY = kernel.FacePosY
	FaceNegY = kernel.FaceNegY
	FacePosZ = kernel.FacePosZ
	FaceNegZ = kernel.FaceNegZ
)

// FaceCount is the number of cubemap faces.
const FaceCount = kernel.FaceCount

// CoefficientCount is the number of output coefficients (9 bands × RGB).
const CoefficientCount = kernel.CoefficientCount

// DecodeMode selects how 8-bit RGBA texels map to linear radiance.
type DecodeMode = kernel.DecodeMode

// Supported decode modes.
const (
	DecodeRaw   = kernel.DecodeRaw
	DecodeGamma = kernel.DecodeGamma
	DecodeRGBE  = kernel.DecodeRGBE
	DecodeRGBM  = kernel.DecodeRGBM
)

// DefaultDecodeMode is the decode mode assumed when a caller does not specify one.
const DefaultDecodeMode = DecodeRGBM

// Faces holds the six cubemap face buffers indexed by Face.
// Each buffer is size*size*4 bytes of row-major RGBA texels.
type Faces [FaceCount][]byte

// Partial is the unnormalized projection result of one scan unit.
type Partial = kernel.Partial

// Accumulator holds 27 running SH sums, index 3*band+channel.
type Accumulator = kernel.Accumulator

// Job describes one bake for a backend. Faces are read-only while the job runs.
type Job struct {
	Faces Faces
	Size  int
	Mode  DecodeMode
}

// Result is the outcome of a successful bake.
type Result struct {
	// Coefficients are the 27 normalized SH coefficients, index 3*band+channel.
	Coefficients [CoefficientCount]float32

	// SolidAngleSum is the raw sum of per-texel solid angle weights.
	SolidAngleSum float64

	// Backend is the backend that produced the result.
	Backend BackendKind

	// Size is the face edge length in texels.
	Size int

	// Mode is the decode mode applied to the texels.
	Mode DecodeMode
}

// FaceReader supplies cubemap face texels, typically from a GPU texture or
// decoded image files.
type FaceReader interface {
	// FaceSize returns the dimensions of each face.
	FaceSize() (width, height int)

	// ReadFace returns width*height*4 bytes of RGBA texels from the given
	// face and mip level.
	ReadFace(face Face, mipLevel, x, y, width, height int) ([]byte, error)
}

// CoefficientSetter receives baked coefficients.
type CoefficientSetter interface {
	SetFromCoefficients(coefficients [CoefficientCount]float32)
}
