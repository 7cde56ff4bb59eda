// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package imagefaces

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/gogpu/shbake"
	"github.com/gogpu/shbake/sh"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func uniformImages(size int, c color.NRGBA) [shbake.FaceCount]image.Image {
	var imgs [shbake.FaceCount]image.Image
	for i := range imgs {
		imgs[i] = solid(size, size, c)
	}
	return imgs
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNew_PreservesEncodedAlpha(t *testing.T) {
	imgs := uniformImages(4, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	cube, err := New(imgs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf, err := cube.ReadFace(shbake.FaceNegZ, 0, 0, 0, 4, 4)
	if err != nil {
		t.Fatalf("ReadFace: %v", err)
	}
	for i := 0; i < len(buf); i += 4 {
		if got := [4]byte(buf[i : i+4]); got != [4]byte{10, 20, 30, 0} {
			t.Fatalf("texel %d = %v, want [10 20 30 0]", i/4, got)
		}
	}
}

func TestNew_SubImage(t *testing.T) {
	big := solid(8, 8, color.NRGBA{A: 255})
	big.SetNRGBA(2, 3, color.NRGBA{R: 200, A: 255})
	sub := big.SubImage(image.Rect(2, 3, 6, 7))

	var imgs [shbake.FaceCount]image.Image
	for i := range imgs {
		imgs[i] = sub
	}
	cube, err := New(imgs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf, _ := cube.ReadFace(shbake.FacePosX, 0, 0, 0, 1, 1)
	if buf[0] != 200 {
		t.Errorf("origin texel red = %d, want 200", buf[0])
	}
}

func TestNew_Resample(t *testing.T) {
	imgs := uniformImages(16, color.NRGBA{R: 64, G: 128, B: 192, A: 255})
	imgs[3] = solid(5, 9, color.NRGBA{R: 64, G: 128, B: 192, A: 255})

	for _, s := range []draw.Scaler{draw.NearestNeighbor, draw.ApproxBiLinear, draw.CatmullRom} {
		cube, err := New(imgs, WithSize(8), WithScaler(s))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if w, h := cube.FaceSize(); w != 8 || h != 8 {
			t.Fatalf("FaceSize = %dx%d, want 8x8", w, h)
		}
		buf, err := cube.ReadFace(shbake.FaceNegY, 0, 0, 0, 8, 8)
		if err != nil {
			t.Fatalf("ReadFace: %v", err)
		}
		for i := 0; i < len(buf); i += 4 {
			if got := [4]byte(buf[i : i+4]); got != [4]byte{64, 128, 192, 255} {
				t.Fatalf("resampled texel %d = %v", i/4, got)
			}
		}
	}
}

func TestNew_Errors(t *testing.T) {
	t.Run("nil image", func(t *testing.T) {
		imgs := uniformImages(4, color.NRGBA{})
		imgs[2] = nil
		if _, err := New(imgs); !errors.Is(err, ErrNilImage) {
			t.Errorf("New = %v, want ErrNilImage", err)
		}
	})
	t.Run("non-square", func(t *testing.T) {
		imgs := uniformImages(4, color.NRGBA{})
		imgs[0] = solid(4, 3, color.NRGBA{})
		if _, err := New(imgs); !errors.Is(err, shbake.ErrNonSquareFace) {
			t.Errorf("New = %v, want ErrNonSquareFace", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		imgs := uniformImages(0, color.NRGBA{})
		if _, err := New(imgs); !errors.Is(err, shbake.ErrInvalidSize) {
			t.Errorf("New = %v, want ErrInvalidSize", err)
		}
	})
}

// =============================================================================
// ReadFace Tests
// =============================================================================

func TestCube_ReadFaceRegion(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var imgs [shbake.FaceCount]image.Image
	for i := range imgs {
		imgs[i] = img
	}
	cube, err := New(imgs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf, err := cube.ReadFace(shbake.FacePosY, 0, 1, 2, 2, 2)
	if err != nil {
		t.Fatalf("ReadFace: %v", err)
	}
	want := []byte{1, 2, 0, 255, 2, 2, 0, 255, 1, 3, 0, 255, 2, 3, 0, 255}
	if !bytes.Equal(buf, want) {
		t.Errorf("ReadFace region = %v, want %v", buf, want)
	}

	// Returned buffers are copies.
	buf[0] = 99
	again, _ := cube.ReadFace(shbake.FacePosY, 0, 1, 2, 1, 1)
	if again[0] != 1 {
		t.Error("ReadFace returned shared storage")
	}
}

func TestCube_ReadFaceErrors(t *testing.T) {
	cube, err := New(uniformImages(4, color.NRGBA{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cube.ReadFace(shbake.FacePosX, 1, 0, 0, 2, 2); !errors.Is(err, ErrMipLevel) {
		t.Errorf("mip 1 = %v, want ErrMipLevel", err)
	}
	if _, err := cube.ReadFace(shbake.FacePosX, 0, 3, 0, 2, 2); !errors.Is(err, ErrRegion) {
		t.Errorf("overflowing region = %v, want ErrRegion", err)
	}
	if _, err := cube.ReadFace(shbake.Face(7), 0, 0, 0, 1, 1); err == nil {
		t.Error("invalid face: want error")
	}
}

// =============================================================================
// File Decoding Tests
// =============================================================================

func TestOpen_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	encoders := []struct {
		name string
		enc  func(io.Writer, image.Image) error
	}{
		{"px.png", png.Encode},
		{"nx.bmp", bmp.Encode},
		{"py.tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
		{"ny.png", png.Encode},
		{"pz.bmp", bmp.Encode},
		{"nz.tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }},
	}

	var paths [shbake.FaceCount]string
	for i, e := range encoders {
		paths[i] = filepath.Join(dir, e.name)
		f, err := os.Create(paths[i])
		if err != nil {
			t.Fatal(err)
		}
		if err := e.enc(f, solid(8, 8, c)); err != nil {
			t.Fatalf("encode %s: %v", e.name, err)
		}
		f.Close()
	}

	cube, err := Open(paths)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var out sh.SH3
	b := shbake.NewBaker(shbake.WithGPUBackend(nil), shbake.WithoutWorkers())
	defer b.Close()
	if err := b.FromTextureCube(cube, &out, shbake.DecodeRaw); err != nil {
		t.Fatalf("FromTextureCube: %v", err)
	}

	want := 255 * 0.282095 * 4 * math.Pi
	for ch := range 3 {
		if got := float64(out.Coefficient(0, ch)); math.Abs(got-want) > 1e-3*want {
			t.Errorf("band 0 channel %d = %v, want %v", ch, got, want)
		}
	}
	for band := 1; band < sh.Bands; band++ {
		for ch := range 3 {
			if got := out.Coefficient(band, ch); math.Abs(float64(got)) > 1e-3*want {
				t.Errorf("band %d channel %d = %v, want 0", band, ch, got)
			}
		}
	}
}

func TestOpen_MissingFile(t *testing.T) {
	var paths [shbake.FaceCount]string
	for i := range paths {
		paths[i] = filepath.Join(t.TempDir(), "missing.png")
	}
	_, err := Open(paths)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open = %v, want os.ErrNotExist", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	var readers [shbake.FaceCount]io.Reader
	for i := range readers {
		readers[i] = bytes.NewReader([]byte("not an image"))
	}
	if _, err := Decode(readers); !errors.Is(err, image.ErrFormat) {
		t.Errorf("Decode = %v, want image.ErrFormat", err)
	}
}
