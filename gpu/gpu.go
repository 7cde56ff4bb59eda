//go:build !nogpu

// Package gpu registers the wgpu compute backend for SH3 baking.
//
// Import this package to let bakers dispatch the irradiance projection to a
// GPU. The kernel evaluates every texel of all six faces in one dispatch and
// the host reduces the per-texel terms.
//
// If GPU initialization fails (no Vulkan available, no adapter), the
// registration is skipped with a warning and bakers fall back to the
// parallel or reference scan.
//
// Usage:
//
//	import _ "github.com/gogpu/shbake/gpu" // enable GPU baking
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/shbake"
	gpuimpl "github.com/gogpu/shbake/internal/gpu"
)

func init() {
	if err := shbake.RegisterGPUBackend(gpuimpl.NewBackend()); err != nil {
		shbake.Logger().Warn("GPU backend not available", "err", err)
	}
}

// SetDeviceProvider makes the GPU backend use a device shared by a host
// application (e.g., gogpu) instead of opening its own.
//
// The provider must also expose HalDevice() any and HalQueue() any for
// direct HAL access. If no backend is registered because Init failed at
// startup, a new backend is registered on the shared device.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if shbake.GPU() != nil {
		return shbake.SetGPUDeviceProvider(provider)
	}
	b := gpuimpl.NewBackend()
	if err := b.SetDeviceProvider(provider); err != nil {
		return err
	}
	return shbake.RegisterGPUBackend(b)
}
