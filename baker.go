package shbake

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/shbake/internal/kernel"
)

// Baker computes SH3 coefficients from cubemap faces.
//
// A Baker is safe for concurrent use. Each call owns its accumulators and
// buffers; the worker pool and GPU backend are shared. Close may run
// alongside BakeFaces: it waits for bakes already on the pool, and later
// parallel bakes fail with a *BackendError.
type Baker struct {
	opts      bakerOptions
	pool      WorkerPool
	ownedPool *Pool
	closeOnce sync.Once
}

// NewBaker creates a baker. By default it uses a GOMAXPROCS worker pool and
// the registered GPU backend, if any.
func NewBaker(opts ...Option) *Baker {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Baker{opts: o}
	switch {
	case o.noPool:
	case o.pool != nil:
		b.pool = o.pool
	default:
		b.ownedPool = NewPool(o.workers)
		b.pool = b.ownedPool
	}
	return b
}

// Close releases the baker's own worker pool. Caller-supplied pools and
// GPU backends are left open.
func (b *Baker) Close() {
	b.closeOnce.Do(func() {
		if b.ownedPool != nil {
			b.ownedPool.Close()
		}
	})
}

func (b *Baker) logger() *slog.Logger {
	if b.opts.logger != nil {
		return b.opts.logger
	}
	return Logger()
}

// BakeFaces projects six cubemap faces onto SH3 using exactly one backend.
//
// Every face buffer must hold size*size*4 bytes. Precondition violations are
// reported before any backend runs. Execution failures are returned as
// *BackendError.
func (b *Baker) BakeFaces(faces Faces, size int, mode DecodeMode) (Result, error) {
	if err := validate(faces, size, mode); err != nil {
		return Result{}, err
	}

	log := b.logger()
	scanner := b.selectScanner(size, log)
	log.Debug("shbake: bake", "backend", scanner.Kind(), "size", size, "mode", mode)

	p, err := scanner.Scan(Job{Faces: faces, Size: size, Mode: mode})
	if err != nil {
		return Result{}, &BackendError{Backend: scanner.Kind(), Err: err}
	}

	kernel.Normalize(&p.Acc, p.SolidAngle)
	return Result{
		Coefficients:  p.Acc.Float32(),
		SolidAngleSum: p.SolidAngle,
		Backend:       scanner.Kind(),
		Size:          size,
		Mode:          mode,
	}, nil
}

// FromTextureCube reads the six faces of src at mip level 0, bakes them and
// writes the coefficients to out once. out is untouched on error.
func (b *Baker) FromTextureCube(src FaceReader, out CoefficientSetter, mode DecodeMode) error {
	if src == nil {
		return ErrNilFaceReader
	}
	if out == nil {
		return ErrNilOutput
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedDecodeMode, mode)
	}

	w, h := src.FaceSize()
	if w != h {
		return fmt.Errorf("%w: %dx%d", ErrNonSquareFace, w, h)
	}
	if !kernel.SizeFits(w) {
		return fmt.Errorf("%w: %d", ErrInvalidSize, w)
	}

	var faces Faces
	for _, f := range kernel.Faces {
		buf, err := src.ReadFace(f, 0, 0, 0, w, h)
		if err != nil {
			return fmt.Errorf("shbake: read face %s: %w", f, err)
		}
		faces[f] = buf
	}

	res, err := b.BakeFaces(faces, w, mode)
	if err != nil {
		return err
	}
	out.SetFromCoefficients(res.Coefficients)
	return nil
}

func validate(faces Faces, size int, mode DecodeMode) error {
	if !kernel.SizeFits(size) {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedDecodeMode, mode)
	}
	want := kernel.BufferLen(size)
	for _, f := range kernel.Faces {
		if len(faces[f]) != want {
			return fmt.Errorf("%w: face %s has %d bytes, want %d", ErrBufferLength, f, len(faces[f]), want)
		}
	}
	return nil
}

var (
	defaultBakerOnce sync.Once
	defaultBaker     *Baker
)

// DefaultBaker returns the shared baker used by the package-level functions.
// It uses a GOMAXPROCS worker pool and the registered GPU backend.
func DefaultBaker() *Baker {
	defaultBakerOnce.Do(func() {
		defaultBaker = NewBaker()
	})
	return defaultBaker
}

// BakeFaces bakes faces with the default baker.
func BakeFaces(faces Faces, size int, mode DecodeMode) (Result, error) {
	return DefaultBaker().BakeFaces(faces, size, mode)
}

// FromTextureCube bakes src into out with the default baker.
func FromTextureCube(src FaceReader, out CoefficientSetter, mode DecodeMode) error {
	return DefaultBaker().FromTextureCube(src, out, mode)
}
