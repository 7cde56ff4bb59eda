package shbake

import (
	"errors"
	"fmt"
)

// Precondition errors. They are returned before any backend runs.
var (
	// ErrInvalidSize is returned when the face size is not positive or its
	// buffer length would overflow int.
	ErrInvalidSize = errors.New("shbake: face size out of range")

	// ErrNonSquareFace is returned when a FaceReader reports a non-square face.
	ErrNonSquareFace = errors.New("shbake: cubemap faces must be square")

	// ErrBufferLength is returned when a face buffer is not size*size*4 bytes.
	ErrBufferLength = errors.New("shbake: face buffer length mismatch")

	// ErrUnsupportedDecodeMode is returned for an unknown DecodeMode.
	ErrUnsupportedDecodeMode = errors.New("shbake: unsupported decode mode")

	// ErrNilFaceReader is returned when FromTextureCube receives a nil source.
	ErrNilFaceReader = errors.New("shbake: face reader must not be nil")

	// ErrNilOutput is returned when FromTextureCube receives a nil output.
	ErrNilOutput = errors.New("shbake: output must not be nil")
)

// ErrIncompletePartition indicates a worker pool returned fewer (or more)
// partial results than partitions were submitted.
var ErrIncompletePartition = errors.New("shbake: worker pool returned incomplete partition results")

// ErrGPUBackendNil is returned by RegisterGPUBackend for a nil backend.
var ErrGPUBackendNil = errors.New("shbake: GPU backend must not be nil")

// BackendError reports a failure while a selected backend was executing.
// The call is not retried on another backend.
type BackendError struct {
	// Backend is the backend that failed.
	Backend BackendKind

	// Err is the underlying error.
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("shbake: %s backend: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}
