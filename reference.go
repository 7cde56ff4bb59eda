package shbake

import "github.com/gogpu/shbake/internal/kernel"

// referenceScanner scans the six faces sequentially on the calling goroutine.
type referenceScanner struct{}

func (referenceScanner) Kind() BackendKind { return BackendReference }

func (referenceScanner) Scan(job Job) (Partial, error) {
	var p Partial
	for _, f := range kernel.Faces {
		p.SolidAngle = kernel.ScanFace(job.Faces[f], f, job.Mode, job.Size, &p.Acc, p.SolidAngle)
	}
	return p, nil
}
