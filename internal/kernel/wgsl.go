// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

// Binding slots of the generated kernel. Faces occupy 0..5.
const (
	ParamsBinding     = FaceCount
	SolidAngleBinding = FaceCount + 1
	SHBinding         = FaceCount + 2
)

// WorkgroupSize is the edge length of the kernel's square workgroup.
const WorkgroupSize = 8

//go:embed shaders/sh_project.wgsl.tmpl
var shProjectTemplate string

var shProjectTmpl = template.Must(template.New("sh_project").Parse(shProjectTemplate))

type wgslFace struct {
	Index   int
	X, Y, Z string
}

type wgslData struct {
	Faces             []wgslFace
	Basis             [BandCount]string
	ParamsBinding     int
	SolidAngleBinding int
	SHBinding         int
	WorkgroupSize     int
	CoefficientCount  int
	RGBMDivisor       string
	ModeRaw           uint32
	ModeGamma         uint32
	ModeRGBE          uint32
	ModeRGBM          uint32
}

var wgslOnce = sync.OnceValues(renderWGSL)

// WGSL returns the compute kernel source. The result is rendered once from
// [FaceAxes] and [BasisConstants] and cached.
func WGSL() (string, error) {
	return wgslOnce()
}

func renderWGSL() (string, error) {
	data := wgslData{
		ParamsBinding:     ParamsBinding,
		SolidAngleBinding: SolidAngleBinding,
		SHBinding:         SHBinding,
		WorkgroupSize:     WorkgroupSize,
		CoefficientCount:  CoefficientCount,
		RGBMDivisor:       wgslFloat(rgbmDivisor),
		ModeRaw:           uint32(DecodeRaw),
		ModeGamma:         uint32(DecodeGamma),
		ModeRGBE:          uint32(DecodeRGBE),
		ModeRGBM:          uint32(DecodeRGBM),
	}
	for _, f := range Faces {
		axes := FaceAxes[f]
		data.Faces = append(data.Faces, wgslFace{
			Index: int(f),
			X:     wgslAxis(axes[0]),
			Y:     wgslAxis(axes[1]),
			Z:     wgslAxis(axes[2]),
		})
	}
	for i, c := range BasisConstants {
		data.Basis[i] = wgslFloat(c)
	}

	var buf bytes.Buffer
	if err := shProjectTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("kernel: render sh_project.wgsl: %w", err)
	}
	return buf.String(), nil
}

// wgslFloat formats v as an abstract-float WGSL literal.
func wgslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// wgslAxis renders a.U*u + a.V*v + a.C with zero terms dropped.
func wgslAxis(a Axis) string {
	var terms []string
	for _, t := range []struct {
		coef float64
		name string
	}{{a.U, "u"}, {a.V, "v"}} {
		switch t.coef {
		case 0:
		case 1:
			terms = append(terms, t.name)
		case -1:
			terms = append(terms, "-"+t.name)
		default:
			terms = append(terms, wgslFloat(t.coef)+" * "+t.name)
		}
	}
	if a.C != 0 || len(terms) == 0 {
		terms = append(terms, wgslFloat(a.C))
	}
	return strings.Join(terms, " + ")
}
