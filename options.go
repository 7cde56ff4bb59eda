package shbake

import "log/slog"

// Option configures a Baker during creation.
//
// Example:
//
//	// Reference scan only
//	b := shbake.NewBaker(shbake.WithoutWorkers(), shbake.WithBackends(shbake.BackendReference))
//
//	// Eight workers, no GPU
//	b := shbake.NewBaker(shbake.WithWorkers(8), shbake.WithBackends(shbake.BackendParallel))
type Option func(*bakerOptions)

// bakerOptions holds optional configuration for Baker creation.
type bakerOptions struct {
	workers  int
	pool     WorkerPool
	noPool   bool
	gpu      GPUBackend
	gpuSet   bool
	backends backendSet
	logger   *slog.Logger
}

// defaultOptions returns the default baker options.
func defaultOptions() bakerOptions {
	return bakerOptions{
		workers:  0, // GOMAXPROCS
		backends: allBackends,
	}
}

// WithWorkers sets the size of the baker's own worker pool.
// Values of 0 or less use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *bakerOptions) {
		o.workers = n
		o.pool = nil
		o.noPool = false
	}
}

// WithWorkerPool supplies a caller-owned worker pool. The baker does not
// close it.
func WithWorkerPool(p WorkerPool) Option {
	return func(o *bakerOptions) {
		o.pool = p
		o.noPool = p == nil
	}
}

// WithoutWorkers disables the parallel backend.
func WithoutWorkers() Option {
	return func(o *bakerOptions) {
		o.pool = nil
		o.noPool = true
	}
}

// WithGPUBackend sets the GPU backend for this baker instead of the
// registered one. Pass nil to disable GPU baking for this baker.
// The backend must already be initialized.
func WithGPUBackend(g GPUBackend) Option {
	return func(o *bakerOptions) {
		o.gpu = g
		o.gpuSet = true
	}
}

// WithBackends restricts which of the GPU and parallel backends may be
// selected. The reference scan is always available as the last resort.
func WithBackends(kinds ...BackendKind) Option {
	return func(o *bakerOptions) {
		o.backends = newBackendSet(kinds...) | 1<<BackendReference
	}
}

// WithLogger sets a logger for this baker. By default the package logger
// from Logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *bakerOptions) {
		o.logger = l
	}
}
