package shbake

import (
	"log/slog"
	"sync"
)

// BackendKind identifies an execution strategy.
type BackendKind uint8

const (
	// BackendReference is the single-threaded scan.
	BackendReference BackendKind = iota

	// BackendParallel splits the scan across a worker pool.
	BackendParallel

	// BackendGPU runs the per-texel kernel as a compute shader.
	BackendGPU
)

// String returns the backend name.
func (k BackendKind) String() string {
	switch k {
	case BackendReference:
		return "reference"
	case BackendParallel:
		return "parallel"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Scanner is one execution strategy. Scan returns the unnormalized
// accumulator and solid angle sum over all six faces.
type Scanner interface {
	Kind() BackendKind
	Scan(job Job) (Partial, error)
}

// GPUBackend is an optional GPU compute provider.
//
// Users opt in via blank import:
//
//	import _ "github.com/gogpu/shbake/gpu" // enables GPU baking
type GPUBackend interface {
	// Name returns the backend name (e.g., "vulkan").
	Name() string

	// Init acquires GPU resources. Called once during registration.
	Init() error

	// Available reports whether a device and pipeline are ready.
	Available() bool

	// Accepts reports whether faces of the given size fit the device limits.
	Accepts(size int) bool

	// Scan runs the kernel and reduces per-texel results on the host.
	Scan(job Job) (Partial, error)

	// Close releases GPU resources.
	Close()
}

// DeviceProviderAware is an optional interface for GPU backends that can
// share a device with a host application.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	gpuMu      sync.RWMutex
	gpuBackend GPUBackend
)

// RegisterGPUBackend registers the GPU backend used by bakers that were not
// given one explicitly.
//
// Only one backend can be registered. Subsequent calls replace the previous
// one. The backend's Init method is called during registration; if it fails
// the backend is not registered and the error is returned.
func RegisterGPUBackend(b GPUBackend) error {
	if b == nil {
		return ErrGPUBackendNil
	}
	if err := b.Init(); err != nil {
		return err
	}
	propagateLogger(b, Logger())

	gpuMu.Lock()
	old := gpuBackend
	gpuBackend = b
	gpuMu.Unlock()
	if old != nil && old != b {
		old.Close()
	}
	return nil
}

// GPU returns the registered GPU backend, or nil if none.
func GPU() GPUBackend {
	gpuMu.RLock()
	b := gpuBackend
	gpuMu.RUnlock()
	return b
}

// SetGPUDeviceProvider passes a device provider to the registered GPU
// backend. It is a no-op when no backend is registered or the backend does
// not support device sharing.
func SetGPUDeviceProvider(provider any) error {
	b := GPU()
	if b == nil {
		return nil
	}
	if dpa, ok := b.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// gpuScanner adapts a GPUBackend to Scanner.
type gpuScanner struct {
	backend GPUBackend
}

func (s gpuScanner) Kind() BackendKind { return BackendGPU }

func (s gpuScanner) Scan(job Job) (Partial, error) {
	return s.backend.Scan(job)
}

// backendSet is the set of backends a baker may select.
type backendSet uint8

const allBackends backendSet = 1<<BackendReference | 1<<BackendParallel | 1<<BackendGPU

func newBackendSet(kinds ...BackendKind) backendSet {
	var s backendSet
	for _, k := range kinds {
		if k <= BackendGPU {
			s |= 1 << k
		}
	}
	return s
}

func (s backendSet) has(k BackendKind) bool {
	return s&(1<<k) != 0
}

// selectScanner picks exactly one backend for a job in the fixed preference
// order GPU, parallel, reference. Unavailability is not an error.
func (b *Baker) selectScanner(size int, log *slog.Logger) Scanner {
	if b.opts.backends.has(BackendGPU) {
		g := b.opts.gpu
		if g == nil && !b.opts.gpuSet {
			g = GPU()
		}
		switch {
		case g == nil:
			log.Debug("shbake: no GPU backend registered")
		case !g.Available():
			log.Warn("shbake: GPU backend unavailable, falling back to CPU", "backend", g.Name())
		case !g.Accepts(size):
			log.Debug("shbake: face size exceeds GPU limits, falling back to CPU", "backend", g.Name(), "size", size)
		default:
			return gpuScanner{backend: g}
		}
	}

	if b.opts.backends.has(BackendParallel) && b.pool != nil {
		return &parallelScanner{pool: b.pool, workers: b.pool.Workers(), log: log}
	}
	return referenceScanner{}
}
