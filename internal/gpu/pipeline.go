// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/shbake/internal/kernel"
	"github.com/gogpu/wgpu/hal"
)

// bindingCount is the number of bindings in the kernel's single group.
const bindingCount = kernel.SHBinding + 1

// compileKernel renders the SH projection kernel and compiles it to SPIR-V
// words.
func compileKernel() ([]uint32, error) {
	src, err := kernel.WGSL()
	if err != nil {
		return nil, fmt.Errorf("render kernel: %w", err)
	}
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile kernel: %w", err)
	}
	return spirvWords(spirvBytes)
}

// spirvWords converts little-endian SPIR-V bytes to 32-bit words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("gpu: SPIR-V size %d is not a positive multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// pipeline holds the device objects shared by every bake on one device.
type pipeline struct {
	device     hal.Device
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	compute    hal.ComputePipeline
}

// layoutEntries describes bindings 0..8: six read-only face buffers, the
// params uniform, and the two per-texel output buffers.
func layoutEntries() []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, bindingCount)
	for i := range kernel.FaceCount {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i), //nolint:gosec // face index fits uint32
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		})
	}
	return append(entries,
		gputypes.BindGroupLayoutEntry{Binding: kernel.ParamsBinding, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		gputypes.BindGroupLayoutEntry{Binding: kernel.SolidAngleBinding, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		gputypes.BindGroupLayoutEntry{Binding: kernel.SHBinding, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
	)
}

// newPipeline compiles the kernel and creates the compute pipeline.
// On error every object created so far is destroyed.
func newPipeline(device hal.Device) (*pipeline, error) {
	spirv, err := compileKernel()
	if err != nil {
		return nil, err
	}

	p := &pipeline{device: device}
	if err := p.create(spirv); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *pipeline) create(spirv []uint32) error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sh_project",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "sh_project_bind_layout",
		Entries: layoutEntries(),
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "sh_project_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	compute, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "sh_project_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	p.compute = compute
	return nil
}

// destroy releases pipeline objects in reverse creation order.
func (p *pipeline) destroy() {
	if p == nil || p.device == nil {
		return
	}
	if p.compute != nil {
		p.device.DestroyComputePipeline(p.compute)
		p.compute = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
