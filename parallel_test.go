package shbake

import (
	"errors"
	"testing"

	"github.com/gogpu/shbake/internal/parallel"
)

// =============================================================================
// PlanPartitions Tests
// =============================================================================

func TestPlanPartitions_SmallFacesOnePerFace(t *testing.T) {
	parts := PlanPartitions(64, 16)
	if len(parts) != FaceCount {
		t.Fatalf("len(parts) = %d, want %d", len(parts), FaceCount)
	}
	for i, p := range parts {
		if p.Face != Face(i) || p.Y0 != 0 || p.Y1 != 64 {
			t.Errorf("parts[%d] = %+v, want {Face:%d Y0:0 Y1:64}", i, p, i)
		}
	}
}

func TestPlanPartitions_RowBands(t *testing.T) {
	tests := []struct {
		size, workers int
		wantBands     int
	}{
		{128, 1, 1},
		{128, 3, 1},
		{128, 4, 2},
		{128, 8, 3},
		{256, 12, 4},
		{256, 0, 1},
		{128, 10000, 128},
	}
	for _, tt := range tests {
		parts := PlanPartitions(tt.size, tt.workers)
		if len(parts) != FaceCount*tt.wantBands {
			t.Errorf("PlanPartitions(%d, %d): %d partitions, want %d",
				tt.size, tt.workers, len(parts), FaceCount*tt.wantBands)
			continue
		}
		assertCoverage(t, parts, tt.size)
	}
}

func TestPlanPartitions_InvalidSize(t *testing.T) {
	if parts := PlanPartitions(0, 4); parts != nil {
		t.Errorf("PlanPartitions(0, 4) = %v, want nil", parts)
	}
}

// assertCoverage checks that each face's rows are covered exactly once, in order.
func assertCoverage(t *testing.T, parts []Partition, size int) {
	t.Helper()
	next := make(map[Face]int)
	for _, p := range parts {
		if p.Y0 != next[p.Face] {
			t.Errorf("face %s: band starts at %d, want %d", p.Face, p.Y0, next[p.Face])
		}
		if p.Y1 <= p.Y0 {
			t.Errorf("face %s: empty band [%d, %d)", p.Face, p.Y0, p.Y1)
		}
		next[p.Face] = p.Y1
	}
	for f := range Face(FaceCount) {
		if next[f] != size {
			t.Errorf("face %s: rows covered up to %d, want %d", f, next[f], size)
		}
	}
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestPool_RunPartitionedMatchesReference(t *testing.T) {
	const size = RowSplitThreshold
	faces := randomFaces(size, 7)
	job := Job{Faces: faces, Size: size, Mode: DecodeRGBE}

	want, err := referenceScanner{}.Scan(job)
	if err != nil {
		t.Fatalf("reference Scan: %v", err)
	}

	pool := NewPool(4)
	defer pool.Close()

	parts := PlanPartitions(size, pool.Workers())
	partials, err := pool.RunPartitioned(job, parts)
	if err != nil {
		t.Fatalf("RunPartitioned: %v", err)
	}
	got, err := reducePartials(partials, len(parts))
	if err != nil {
		t.Fatalf("reducePartials: %v", err)
	}

	assertClose(t, got.Acc.Float32(), want.Acc.Float32(), 1e-6)
	if diff := got.SolidAngle - want.SolidAngle; diff > 1e-6*want.SolidAngle || diff < -1e-6*want.SolidAngle {
		t.Errorf("SolidAngle = %v, want %v", got.SolidAngle, want.SolidAngle)
	}
}

func TestPool_PanicBecomesError(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	// A short buffer bypasses BakeFaces validation and panics inside the kernel.
	job := Job{Faces: uniformFaces(4, 1, 1, 1, 1), Size: 4, Mode: DecodeRaw}
	job.Faces[FaceNegY] = make([]byte, 8)

	_, err := pool.RunPartitioned(job, PlanPartitions(4, 2))
	if !errors.Is(err, parallel.ErrTaskPanicked) {
		t.Errorf("RunPartitioned error = %v, want ErrTaskPanicked", err)
	}
}

// shortPool drops the last partial.
type shortPool struct{ *Pool }

func (p shortPool) RunPartitioned(job Job, parts []Partition) ([]Partial, error) {
	out, err := p.Pool.RunPartitioned(job, parts)
	if err != nil {
		return nil, err
	}
	return out[:len(out)-1], nil
}

// failingPool always fails.
type failingPool struct{ err error }

func (p failingPool) RunPartitioned(Job, []Partition) ([]Partial, error) { return nil, p.err }
func (p failingPool) Workers() int                                       { return 3 }

func TestParallel_IncompletePartition(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	b := NewBaker(WithGPUBackend(nil), WithWorkerPool(shortPool{pool}))
	defer b.Close()

	_, err := b.BakeFaces(uniformFaces(8, 1, 2, 3, 4), 8, DecodeRaw)
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != BackendParallel {
		t.Fatalf("BakeFaces error = %v, want parallel *BackendError", err)
	}
	if !errors.Is(err, ErrIncompletePartition) {
		t.Errorf("BakeFaces error = %v, want ErrIncompletePartition", err)
	}
}

func TestParallel_PoolErrorNotRetried(t *testing.T) {
	poolErr := errors.New("pool exploded")
	b := NewBaker(WithGPUBackend(nil), WithWorkerPool(failingPool{err: poolErr}))
	defer b.Close()

	_, err := b.BakeFaces(uniformFaces(8, 1, 2, 3, 4), 8, DecodeRaw)
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != BackendParallel {
		t.Fatalf("BakeFaces error = %v, want parallel *BackendError", err)
	}
	if !errors.Is(err, poolErr) {
		t.Errorf("BakeFaces error = %v, want wrapped pool error", err)
	}
}

func TestReducePartials_Order(t *testing.T) {
	partials := make([]Partial, 3)
	for i := range partials {
		partials[i].SolidAngle = float64(i + 1)
		partials[i].Acc[0] = float64(10 * (i + 1))
	}
	got, err := reducePartials(partials, 3)
	if err != nil {
		t.Fatalf("reducePartials: %v", err)
	}
	if got.SolidAngle != 6 || got.Acc[0] != 60 {
		t.Errorf("reducePartials = {SolidAngle:%v Acc[0]:%v}, want {6 60}", got.SolidAngle, got.Acc[0])
	}

	if _, err := reducePartials(partials, 4); !errors.Is(err, ErrIncompletePartition) {
		t.Errorf("reducePartials(3 of 4) = %v, want ErrIncompletePartition", err)
	}
}

func BenchmarkParallelScan128(b *testing.B) {
	faces := randomFaces(128, 1)
	bk := NewBaker(WithGPUBackend(nil))
	defer bk.Close()

	b.ResetTimer()
	for b.Loop() {
		_, _ = bk.BakeFaces(faces, 128, DecodeRGBM)
	}
}

func BenchmarkReferenceScan128(b *testing.B) {
	faces := randomFaces(128, 1)
	bk := NewBaker(WithGPUBackend(nil), WithoutWorkers())
	defer bk.Close()

	b.ResetTimer()
	for b.Loop() {
		_, _ = bk.BakeFaces(faces, 128, DecodeRGBM)
	}
}
