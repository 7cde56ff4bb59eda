// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

// Partial is the result of scanning part of a cubemap: an unnormalized
// accumulator and the raw solid-angle sum of the texels it covers.
type Partial struct {
	Acc        Accumulator
	SolidAngle float64
}

// Merge adds o into p.
func (p *Partial) Merge(o *Partial) {
	p.Acc.Add(&o.Acc)
	p.SolidAngle += o.SolidAngle
}

// ScanFace projects every texel of one face into acc and returns
// runningSum plus the face's solid-angle sum. buf must hold size*size RGBA
// texels in row-major order; a short buffer panics.
func ScanFace(buf []byte, f Face, mode DecodeMode, size int, acc *Accumulator, runningSum float64) float64 {
	return runningSum + ScanRows(buf, f, mode, size, 0, size, acc)
}

// ScanRows projects rows [y0, y1) of one face into acc and returns their
// solid-angle sum. Rows are visited top to bottom, texels left to right.
func ScanRows(buf []byte, f Face, mode DecodeMode, size, y0, y1 int, acc *Accumulator) float64 {
	var sum float64
	for y := y0; y < y1; y++ {
		row := buf[y*size*ChannelCount : (y+1)*size*ChannelCount]
		for x := 0; x < size; x++ {
			t := row[x*ChannelCount : x*ChannelCount+ChannelCount]
			color := Decode(mode, t[0], t[1], t[2], t[3])
			dir, solidAngle := Sample(f, size, x, y)
			Project(dir, color, solidAngle, acc)
			sum += solidAngle
		}
	}
	return sum
}
