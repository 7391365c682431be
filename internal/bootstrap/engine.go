package bootstrap

import (
	"context"
	"io"

	"bootstrap-engine/internal/job"
	"bootstrap-engine/internal/runtime"
)

// Builder turns a source tree into a runnable image (Build, steps 1-5) and
// invokes the entrypoint as a foreground process (Run, step 6). Build calls
// progress with each step as it begins; Run propagates the entrypoint's exit
// code without interpretation.
type Builder interface {
	Build(ctx context.Context, spec runtime.Spec, req Request, progress func(Step)) (string, error)
	Run(ctx context.Context, spec runtime.Spec, imageRef string, stdout, stderr io.Writer) (int, error)
}

type Engine interface {
	// Bootstrap builds and runs synchronously, streaming entrypoint output
	// to the given writers. The one-shot CLI path.
	Bootstrap(ctx context.Context, req Request, stdout, stderr io.Writer) (*Result, error)

	// Build stops after the image is assembled and returns its reference.
	Build(ctx context.Context, req Request) (string, error)

	// StartJob runs the sequence in the background, bounded by the engine's
	// concurrency slot pool. The API path.
	StartJob(ctx context.Context, req Request) (*job.Job, error)

	GetJob(id string) (*job.Job, bool)

	// Jobs lists every tracked job, live or finished.
	Jobs() []*job.Job
}
