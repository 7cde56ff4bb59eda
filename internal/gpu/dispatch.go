// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/shbake"
	"github.com/gogpu/shbake/internal/kernel"
	"github.com/gogpu/wgpu/hal"
)

// paramsSize is the size of the Params uniform (four u32).
const paramsSize = 16

// pollInterval is the sleep between submission completion polls.
const pollInterval = 100 * time.Microsecond

// bakeSizes holds the byte sizes of one bake's buffers.
type bakeSizes struct {
	face  uint64 // per face
	solid uint64
	sh    uint64
}

// texelBytes is the per-texel byte count of the largest buffer.
const texelBytes = kernel.FaceCount * kernel.CoefficientCount * 4

// sizesFor returns the buffer sizes for faces of the given size. ok is false
// for non-positive sizes and sizes whose SH buffer overflows uint64.
func sizesFor(size int) (sz bakeSizes, ok bool) {
	if size <= 0 || uint64(size) > math.MaxUint64/texelBytes/uint64(size) {
		return bakeSizes{}, false
	}
	texels := uint64(size) * uint64(size)
	return bakeSizes{
		face:  texels * kernel.ChannelCount,
		solid: kernel.FaceCount * texels * 4,
		sh:    texels * texelBytes,
	}, true
}

// bakeResources owns every per-bake device object. release destroys them in
// reverse order and is safe to call on a partially built set.
type bakeResources struct {
	device    hal.Device
	buffers   []hal.Buffer
	bindGroup hal.BindGroup
	cmdBuf    hal.CommandBuffer
	encoder   hal.CommandEncoder
	encoding  bool
}

func (r *bakeResources) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	r.buffers = append(r.buffers, buf)
	return buf, nil
}

// abandon drops every object without destroying it, so release becomes a
// no-op. Used when the GPU may still be executing the submission.
func (r *bakeResources) abandon() {
	r.encoder = nil
	r.encoding = false
	r.cmdBuf = nil
	r.bindGroup = nil
	r.buffers = nil
}

func (r *bakeResources) release() {
	if r.encoding && r.encoder != nil {
		r.encoder.DiscardEncoding()
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
		r.cmdBuf = nil
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	for i := len(r.buffers) - 1; i >= 0; i-- {
		r.device.DestroyBuffer(r.buffers[i])
	}
	r.buffers = nil
}

// bakeBuffers are the buffers bound to, or read back from, one dispatch.
type bakeBuffers struct {
	faces         [kernel.FaceCount]hal.Buffer
	params        hal.Buffer
	solid, sh     hal.Buffer
	solidReadback hal.Buffer
	shReadback    hal.Buffer
}

// scan runs one bake on the device. The caller holds b.mu and has checked
// job.Size with sizesFor.
func (b *Backend) scan(job shbake.Job, sz bakeSizes) (kernel.Partial, error) {
	slogger().Debug("gpu: bake buffers",
		"size", job.Size, "face_bytes", sz.face, "solid_bytes", sz.solid, "sh_bytes", sz.sh)

	res := &bakeResources{device: b.device}
	defer res.release()

	bufs, err := b.uploadInputs(res, job, sz)
	if err != nil {
		return kernel.Partial{}, err
	}
	if err := b.createBindGroup(res, bufs, sz); err != nil {
		return kernel.Partial{}, err
	}
	if err := b.encode(res, bufs, job.Size, sz); err != nil {
		return kernel.Partial{}, err
	}

	idx, err := b.queue.Submit([]hal.CommandBuffer{res.cmdBuf})
	if err != nil {
		return kernel.Partial{}, fmt.Errorf("submit: %w", err)
	}
	if err := b.waitSubmission(idx); err != nil {
		// The queue may still be using these objects.
		res.abandon()
		slogger().Warn("gpu: leaking in-flight bake resources", "size", job.Size, "err", err)
		return kernel.Partial{}, err
	}

	var p kernel.Partial
	err = b.withMapped(bufs.solidReadback, sz.solid, func(solid []byte) error {
		return b.withMapped(bufs.shReadback, sz.sh, func(sh []byte) error {
			p = reduceTexels(solid, sh)
			return nil
		})
	})
	return p, err
}

// uploadInputs creates every buffer and writes the faces and params.
func (b *Backend) uploadInputs(res *bakeResources, job shbake.Job, sz bakeSizes) (*bakeBuffers, error) {
	bufs := &bakeBuffers{}
	for _, f := range kernel.Faces {
		buf, err := res.createBuffer("sh_face_"+f.String(), sz.face, gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
		// RGBA8 bytes are already the little-endian u32 layout the kernel reads.
		if err := b.queue.WriteBuffer(buf, 0, job.Faces[f]); err != nil {
			return nil, fmt.Errorf("write face %s: %w", f, err)
		}
		bufs.faces[f] = buf
	}

	var err error
	if bufs.params, err = res.createBuffer("sh_params", paramsSize, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	if err := b.queue.WriteBuffer(bufs.params, 0, paramsBytes(job.Size, job.Mode)); err != nil {
		return nil, fmt.Errorf("write params: %w", err)
	}

	output := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	readback := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst
	if bufs.solid, err = res.createBuffer("sh_solid_angles", sz.solid, output); err != nil {
		return nil, err
	}
	if bufs.sh, err = res.createBuffer("sh_texels", sz.sh, output); err != nil {
		return nil, err
	}
	if bufs.solidReadback, err = res.createBuffer("sh_solid_angles_readback", sz.solid, readback); err != nil {
		return nil, err
	}
	if bufs.shReadback, err = res.createBuffer("sh_texels_readback", sz.sh, readback); err != nil {
		return nil, err
	}
	return bufs, nil
}

func (b *Backend) createBindGroup(res *bakeResources, bufs *bakeBuffers, sz bakeSizes) error {
	entries := make([]gputypes.BindGroupEntry, 0, bindingCount)
	for i, buf := range bufs.faces {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i), //nolint:gosec // face index fits uint32
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: sz.face},
		})
	}
	entries = append(entries,
		gputypes.BindGroupEntry{Binding: kernel.ParamsBinding, Resource: gputypes.BufferBinding{Buffer: bufs.params.NativeHandle(), Offset: 0, Size: paramsSize}},
		gputypes.BindGroupEntry{Binding: kernel.SolidAngleBinding, Resource: gputypes.BufferBinding{Buffer: bufs.solid.NativeHandle(), Offset: 0, Size: sz.solid}},
		gputypes.BindGroupEntry{Binding: kernel.SHBinding, Resource: gputypes.BufferBinding{Buffer: bufs.sh.NativeHandle(), Offset: 0, Size: sz.sh}},
	)

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "sh_project_bind", Layout: b.pipe.bindLayout, Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	res.bindGroup = bg
	return nil
}

// encode records the dispatch and the copies into the readback buffers.
func (b *Backend) encode(res *bakeResources, bufs *bakeBuffers, size int, sz bakeSizes) error {
	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "sh_project_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	res.encoder = encoder
	if err := encoder.BeginEncoding("sh_project"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	res.encoding = true

	groups := workgroups(size)
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "sh_project_pass"})
	pass.SetPipeline(b.pipe.compute)
	pass.SetBindGroup(0, res.bindGroup, nil)
	pass.Dispatch(groups, groups, 1)
	pass.End()

	encoder.CopyBufferToBuffer(bufs.solid, bufs.solidReadback, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: sz.solid}})
	encoder.CopyBufferToBuffer(bufs.sh, bufs.shReadback, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: sz.sh}})

	cmdBuf, err := encoder.EndEncoding()
	res.encoding = false
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf
	return nil
}

// workgroups returns the dispatch count along one axis.
func workgroups(size int) uint32 {
	return uint32((size + kernel.WorkgroupSize - 1) / kernel.WorkgroupSize) //nolint:gosec // size bounded by Accepts
}

// waitSubmission polls the queue until idx completes or the timeout elapses.
func (b *Backend) waitSubmission(idx uint64) error {
	deadline := time.Now().Add(b.timeout)
	for b.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %v", ErrTimeout, b.timeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// withMapped maps size bytes of buf for reading and calls fn with them.
// The slice is only valid inside fn.
func (b *Backend) withMapped(buf hal.Buffer, size uint64, fn func([]byte) error) error {
	mapping, err := b.device.MapBuffer(buf, 0, size)
	if err != nil {
		return fmt.Errorf("map readback buffer: %w", err)
	}
	defer func() {
		if err := b.device.UnmapBuffer(buf); err != nil {
			slogger().Warn("gpu: unmap readback buffer", "err", err)
		}
	}()
	return fn(unsafe.Slice((*byte)(mapping.Ptr), size))
}
