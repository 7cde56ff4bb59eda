// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package imagefaces reads cubemap faces from six ordinary image files.
//
// Faces are decoded with the standard image registry, extended with BMP,
// TIFF and WebP from golang.org/x/image, and converted to non-premultiplied
// RGBA bytes. Faces whose size differs from the cube size are resampled with
// a golang.org/x/image/draw scaler.
//
// Resampling treats alpha as coverage. RGBM or RGBE encoded faces must
// already have the cube size so their alpha bytes are copied unchanged.
//
//	cube, err := imagefaces.Open([6]string{"px.png", "nx.png", "py.png", "ny.png", "pz.png", "nz.png"})
//	if err != nil {
//		return err
//	}
//	var irradiance sh.SH3
//	err = shbake.FromTextureCube(cube, &irradiance, shbake.DecodeGamma)
package imagefaces

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/gogpu/shbake"
)

var (
	// ErrMipLevel is returned by ReadFace for any mip level other than 0.
	ErrMipLevel = errors.New("imagefaces: only mip level 0 is available")

	// ErrRegion is returned by ReadFace for a region outside the face.
	ErrRegion = errors.New("imagefaces: region outside face")

	// ErrNilImage is returned when a face image is missing.
	ErrNilImage = errors.New("imagefaces: nil face image")
)

// Option configures how faces are loaded.
type Option func(*options)

type options struct {
	size   int
	scaler draw.Scaler
}

// WithSize sets the cube face size. By default the size of the +X face is
// used, which must then be square.
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}

// WithScaler sets the scaler used to resample faces of a different size.
// The default is draw.CatmullRom.
func WithScaler(s draw.Scaler) Option {
	return func(o *options) {
		if s != nil {
			o.scaler = s
		}
	}
}

// Cube holds six decoded faces. It implements shbake.FaceReader and is
// safe for concurrent reads.
type Cube struct {
	size  int
	faces [shbake.FaceCount][]byte
}

var _ shbake.FaceReader = (*Cube)(nil)

// Open decodes six image files in face order +X, -X, +Y, -Y, +Z, -Z.
func Open(paths [shbake.FaceCount]string, opts ...Option) (*Cube, error) {
	var imgs [shbake.FaceCount]image.Image
	for i, p := range paths {
		img, err := decodeFile(p)
		if err != nil {
			return nil, fmt.Errorf("imagefaces: face %s: %w", shbake.Face(i), err)
		}
		imgs[i] = img
	}
	return New(imgs, opts...)
}

// Decode decodes six images from readers in face order.
func Decode(readers [shbake.FaceCount]io.Reader, opts ...Option) (*Cube, error) {
	var imgs [shbake.FaceCount]image.Image
	for i, r := range readers {
		img, _, err := image.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("imagefaces: face %s: %w", shbake.Face(i), err)
		}
		imgs[i] = img
	}
	return New(imgs, opts...)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// New builds a cube from decoded images in face order.
func New(imgs [shbake.FaceCount]image.Image, opts ...Option) (*Cube, error) {
	o := options{scaler: draw.CatmullRom}
	for _, opt := range opts {
		opt(&o)
	}
	for i, img := range imgs {
		if img == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilImage, shbake.Face(i))
		}
	}

	size := o.size
	if size <= 0 {
		b := imgs[0].Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("imagefaces: face %s is %dx%d: %w", shbake.FacePosX, b.Dx(), b.Dy(), shbake.ErrNonSquareFace)
		}
		size = b.Dx()
	}
	if size <= 0 {
		return nil, shbake.ErrInvalidSize
	}

	c := &Cube{size: size}
	for i, img := range imgs {
		c.faces[i] = faceBytes(img, size, o.scaler)
	}
	return c, nil
}

// faceBytes converts img to size×size non-premultiplied RGBA bytes.
func faceBytes(img image.Image, size int, scaler draw.Scaler) []byte {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		if n, ok := img.(*image.NRGBA); ok {
			return copyNRGBA(n)
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	if b.Dx() == size && b.Dy() == size {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	return dst.Pix
}

// copyNRGBA copies pixels verbatim so encoded alpha survives.
func copyNRGBA(src *image.NRGBA) []byte {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	for y := range h {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	return out
}

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
		return nil, fmt.Errorf("imagefaces: invalid face %d", face)
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
