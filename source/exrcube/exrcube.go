// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package exrcube reads HDR cube environment maps stored as OpenEXR.
//
// The image uses the OpenEXR cube layout: N pixels wide and 6N tall, with
// the faces +X, -X, +Y, -Y, +Z, -Z stacked top to bottom. Linear radiance is
// encoded to 8-bit RGBE or RGBM on load so it can be baked with the matching
// decode mode.
package exrcube

import (
	"errors"
	"fmt"
	"image"

	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/gogpu/shbake"
	"github.com/gogpu/shbake/internal/kernel"
)

var (
	// ErrLayout is returned for images that are not N×6N.
	ErrLayout = errors.New("exrcube: image is not an N x 6N cube map")

	// ErrMode is returned for decode modes other than RGBE and RGBM.
	ErrMode = errors.New("exrcube: faces can only be encoded as RGBE or RGBM")

	// ErrMipLevel is returned by ReadFace for any mip level other than 0.
	ErrMipLevel = errors.New("exrcube: only mip level 0 is available")

	// ErrRegion is returned by ReadFace for a region outside the face.
	ErrRegion = errors.New("exrcube: region outside face")
)

// Cube holds six encoded faces. It implements shbake.FaceReader.
type Cube struct {
	size  int
	mode  shbake.DecodeMode
	faces [shbake.FaceCount][]byte
}

var _ shbake.FaceReader = (*Cube)(nil)

// Open decodes an OpenEXR cube map and encodes its faces with mode.
func Open(path string, mode shbake.DecodeMode) (*Cube, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	img, err := exr.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("exrcube: decode %s: %w", path, err)
	}
	return FromImage(img, mode)
}

func checkMode(mode shbake.DecodeMode) error {
	if mode != shbake.DecodeRGBE && mode != shbake.DecodeRGBM {
		return fmt.Errorf("%w: %s", ErrMode, mode)
	}
	return nil
}

// FromImage encodes the faces of an already decoded cube map.
func FromImage(img *exr.RGBAImage, mode shbake.DecodeMode) (*Cube, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	r := img.Rect
	if r.Dx() <= 0 || r.Dy() != 6*r.Dx() {
		return nil, fmt.Errorf("%w: %dx%d", ErrLayout, r.Dx(), r.Dy())
	}

	dw := dataWindow(r)
	size := exr.CubeSizeOfFace(dw)
	encode := kernel.EncodeRGBM
	if mode == shbake.DecodeRGBE {
		encode = kernel.EncodeRGBE
	}

	c := &Cube{size: size, mode: mode}
	for _, f := range kernel.Faces {
		win := exr.CubeDataWindowForFace(int(f), dw)
		buf := make([]byte, 0, kernel.BufferLen(size))
		for y := range size {
			for x := range size {
				cr, cg, cb, _ := img.RGBA(r.Min.X+int(win.Min.X)+x, r.Min.Y+int(win.Min.Y)+y)
				px := encode(float64(cr), float64(cg), float64(cb))
				buf = append(buf, px[:]...)
			}
		}
		c.faces[f] = buf
	}
	return c, nil
}

// dataWindow converts an image rectangle to a zero-based EXR data window.
func dataWindow(r image.Rectangle) exr.Box2i {
	return exr.Box2i{
		Min: exr.V2i{X: 0, Y: 0},
		Max: exr.V2i{X: int32(r.Dx() - 1), Y: int32(r.Dy() - 1)}, //nolint:gosec // image dimensions
	}
}

// Mode returns the decode mode the faces were encoded for.
func (c *Cube) Mode() shbake.DecodeMode { return c.mode }

// FaceSize returns the face edge length for both dimensions.
func (c *Cube) FaceSize() (width, height int) {
	return c.size, c.size
}

// ReadFace returns a copy of the given region of a face.
func (c *Cube) ReadFace(face shbake.Face, mipLevel, x, y, width, height int) ([]byte, error) {
	if mipLevel != 0 {
		return nil, ErrMipLevel
	}
	if int(face) >= shbake.FaceCount {
		return nil, fmt.Errorf("exrcube: invalid face %d", face)
	}
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > c.size || y+height > c.size {
		return nil, fmt.Errorf("%w: (%d,%d) %dx%d in %d", ErrRegion, x, y, width, height, c.size)
	}

	src := c.faces[face]
	out := make([]byte, width*height*4)
	for row := range height {
		off := ((y+row)*c.size + x) * 4
		copy(out[row*width*4:(row+1)*width*4], src[off:off+width*4])
	}
	return out, nil
}

// Write stores six linear faces as an OpenEXR cube map. Each face holds
// size×size RGB triples in row-major order.
func Write(path string, size int, faces [shbake.FaceCount][][3]float32) error {
	if size <= 0 {
		return shbake.ErrInvalidSize
	}
	img := exr.NewRGBAImage(image.Rect(0, 0, size, 6*size))
	for f, texels := range faces {
		if len(texels) != size*size {
			return fmt.Errorf("exrcube: face %s has %d texels, want %d: %w",
				shbake.Face(f), len(texels), size*size, shbake.ErrBufferLength)
		}
		for i, t := range texels {
			img.SetRGBA(i%size, f*size+i/size, t[0], t[1], t[2], 1)
		}
	}
	if err := exr.EncodeFile(path, img); err != nil {
		return fmt.Errorf("exrcube: encode %s: %w", path, err)
	}
	return nil
}
