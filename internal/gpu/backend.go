//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/shbake"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// BackendName is the identifier reported by Backend.Name.
const BackendName = "wgpu"

// DefaultTimeout bounds how long a bake waits for the GPU.
const DefaultTimeout = 10 * time.Second

// Backend bakes SH3 with a wgpu/hal compute shader.
// It implements shbake.GPUBackend.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	pipe     *pipeline

	adapterName    string
	limits         gputypes.Limits
	timeout        time.Duration
	ready          bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
}

var _ shbake.GPUBackend = (*Backend)(nil)

// NewBackend creates an uninitialized backend. Call Init, or register it
// with shbake.RegisterGPUBackend, before use.
func NewBackend() *Backend {
	return &Backend{limits: gputypes.DefaultLimits(), timeout: DefaultTimeout}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return BackendName }

// SetLogger receives the logger propagated by shbake.SetLogger.
func (b *Backend) SetLogger(l *slog.Logger) { setLogger(l) }

// SetTimeout changes how long Scan waits for the GPU.
func (b *Backend) SetTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d > 0 {
		b.timeout = d
	}
}

// Init opens a Vulkan device, preferring a discrete or integrated GPU, and
// builds the compute pipeline. Init is a no-op once the backend is ready.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return nil
	}
	if err := b.initGPU(); err != nil {
		b.releaseLocked()
		return err
	}
	return nil
}

func (b *Backend) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return ErrNoVulkan
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	selected := selectAdapter(adapters)
	if selected == nil {
		return ErrNoAdapter
	}
	b.limits = gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), b.limits)
	if err != nil {
		return fmt.Errorf("gpu: open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue
	b.adapterName = selected.Info.Name

	return b.attachLocked()
}

// selectAdapter prefers a discrete or integrated GPU over any other adapter.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	if len(adapters) == 0 {
		return nil
	}
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// attachLocked builds the pipeline on the current device.
func (b *Backend) attachLocked() error {
	pipe, err := newPipeline(b.device)
	if err != nil {
		return fmt.Errorf("gpu: create pipeline: %w", err)
	}
	b.pipe = pipe
	b.ready = true
	slogger().Info("gpu: SH bake backend initialized", "adapter", b.adapterName, "shared", b.externalDevice)
	return nil
}

// useDevice switches the backend to a device it does not own.
func (b *Backend) useDevice(device hal.Device, queue hal.Queue, name string, limits gputypes.Limits) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	b.device = device
	b.queue = queue
	b.externalDevice = true
	b.adapterName = name
	b.limits = limits

	if err := b.attachLocked(); err != nil {
		b.releaseLocked()
		return err
	}
	return nil
}

// SetDeviceProvider switches the backend to a GPU device shared by a host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue. Shared devices are
// never destroyed by the backend.
func (b *Backend) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}

	name := "shared"
	if dp, ok := provider.(gpucontext.DeviceProvider); ok {
		info := dp.AdapterInfo()
		if info.Name != "" {
			name = info.Name
		}
		if info.Type == gpucontext.AdapterTypeSoftware {
			slogger().Warn("gpu: shared device is a software adapter", "adapter", info.Name)
		}
	}

	limits := deviceLimits(provider, device)
	if err := b.useDevice(device, queue, name, limits); err != nil {
		return err
	}
	slogger().Info("gpu: switched to shared GPU device", "adapter", name,
		"max_storage_binding", limits.MaxStorageBufferBindingSize)
	return nil
}

// limitsReporter is implemented by hosts or devices that know the limits a
// shared device was created with.
type limitsReporter interface {
	Limits() gputypes.Limits
}

// deviceLimits returns the limits reported by provider or device. Without a
// report it assumes the WebGPU defaults, which every device supports.
func deviceLimits(provider any, device hal.Device) gputypes.Limits {
	for _, v := range []any{provider, device} {
		if lr, ok := v.(limitsReporter); ok {
			return lr.Limits()
		}
	}
	return gputypes.DefaultLimits()
}

// Available reports whether a device and pipeline are ready.
func (b *Backend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

// Accepts reports whether the per-texel output buffers for faces of the
// given size fit within one storage binding.
func (b *Backend) Accepts(size int) bool {
	sz, ok := sizesFor(size)
	if !ok {
		return false
	}
	b.mu.Lock()
	limit := b.limits.MaxStorageBufferBindingSize
	b.mu.Unlock()
	return sz.sh <= limit
}

// Scan runs the kernel over all six faces and reduces the per-texel results
// on the host. Dispatches are serialized.
func (b *Backend) Scan(job shbake.Job) (shbake.Partial, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return shbake.Partial{}, ErrNotInitialized
	}
	sz, ok := sizesFor(job.Size)
	if !ok || sz.sh > b.limits.MaxStorageBufferBindingSize {
		return shbake.Partial{}, fmt.Errorf("%w: %d", ErrTooLarge, job.Size)
	}
	return b.scan(job, sz)
}

// Close releases GPU resources. Shared devices are left open.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *Backend) releaseLocked() {
	b.pipe.destroy()
	b.pipe = nil
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	b.ready = false
	b.externalDevice = false
}
