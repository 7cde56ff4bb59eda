package shbake

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/shbake/internal/kernel"
	"github.com/gogpu/shbake/internal/parallel"
)

// RowSplitThreshold is the face size from which faces are split into row
// bands rather than scanned as one work item each.
const RowSplitThreshold = 128

// Partition is one unit of parallel work: rows [Y0, Y1) of a face.
type Partition struct {
	Face   Face
	Y0, Y1 int
}

// WorkerPool runs partitions of a job concurrently and returns one Partial
// per partition, in partition order. Implementations must not return until
// every partition has finished.
type WorkerPool interface {
	RunPartitioned(job Job, parts []Partition) ([]Partial, error)
	Workers() int
}

// PlanPartitions divides six faces of the given size among workers.
// Below RowSplitThreshold each face is one partition. Otherwise each face is
// split into ceil(2*workers/6) row bands, never more than size.
func PlanPartitions(size, workers int) []Partition {
	if size <= 0 {
		return nil
	}
	bands := 1
	if size >= RowSplitThreshold {
		bands = max((2*max(workers, 1)+FaceCount-1)/FaceCount, 1)
		bands = min(bands, size)
	}

	parts := make([]Partition, 0, FaceCount*bands)
	for _, f := range kernel.Faces {
		for i := range bands {
			parts = append(parts, Partition{
				Face: f,
				Y0:   i * size / bands,
				Y1:   (i + 1) * size / bands,
			})
		}
	}
	return parts
}

// Pool is the default WorkerPool backed by a fixed set of goroutines.
type Pool struct {
	wp *parallel.WorkerPool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	return &Pool{wp: parallel.NewWorkerPool(workers)}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.wp.Workers()
}

// RunPartitioned scans every partition on the pool. Each partition writes
// only its own result slot. A panic inside a partition is returned as an
// error wrapping parallel.ErrTaskPanicked.
func (p *Pool) RunPartitioned(job Job, parts []Partition) ([]Partial, error) {
	results := make([]Partial, len(parts))
	tasks := make([]parallel.Task, len(parts))
	for i, part := range parts {
		tasks[i] = func() error {
			r := &results[i]
			r.SolidAngle = kernel.ScanRows(job.Faces[part.Face], part.Face, job.Mode, job.Size, part.Y0, part.Y1, &r.Acc)
			return nil
		}
	}
	if err := p.wp.ExecuteAll(tasks); err != nil {
		return nil, err
	}
	return results, nil
}

// Close stops the pool's goroutines.
func (p *Pool) Close() {
	p.wp.Close()
}

// parallelScanner plans partitions, runs them on a WorkerPool and reduces
// the partials in partition order.
type parallelScanner struct {
	pool    WorkerPool
	workers int
	log     *slog.Logger
}

func (s *parallelScanner) Kind() BackendKind { return BackendParallel }

func (s *parallelScanner) Scan(job Job) (Partial, error) {
	parts := PlanPartitions(job.Size, s.workers)
	s.log.Debug("shbake: parallel scan", "partitions", len(parts), "workers", s.workers)

	partials, err := s.pool.RunPartitioned(job, parts)
	if err != nil {
		return Partial{}, err
	}
	return reducePartials(partials, len(parts))
}

// reducePartials merges exactly want partials in order.
func reducePartials(partials []Partial, want int) (Partial, error) {
	if len(partials) != want {
		return Partial{}, fmt.Errorf("%w: got %d, want %d", ErrIncompletePartition, len(partials), want)
	}
	var total Partial
	for i := range partials {
		total.Merge(&partials[i])
	}
	return total, nil
}
