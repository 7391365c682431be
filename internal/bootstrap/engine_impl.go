package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"bootstrap-engine/internal/job"
	"bootstrap-engine/internal/runtime"
)

type Options struct {
	// MaxConcurrentJobs bounds how many bootstrap sequences run at once.
	MaxConcurrentJobs int

	// SlotWaitTimeout is how long a WAITING job may queue for a slot.
	SlotWaitTimeout time.Duration

	// IdleDetachTimeout terminates a live job after its last watcher
	// disconnects. Zero disables idle termination.
	IdleDetachTimeout time.Duration
}

type engineImpl struct {
	builder Builder
	jobs    *job.Manager
	opts    Options
	sem     chan struct{}
}

func New(builder Builder, opts Options) Engine {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 1
	}
	if opts.SlotWaitTimeout <= 0 {
		opts.SlotWaitTimeout = 2 * time.Minute
	}
	return &engineImpl{
		builder: builder,
		jobs:    job.NewManager(),
		opts:    opts,
		sem:     make(chan struct{}, opts.MaxConcurrentJobs),
	}
}

func (e *engineImpl) Bootstrap(
	ctx context.Context,
	req Request,
	stdout, stderr io.Writer,
) (*Result, error) {

	spec, err := runtime.Resolve(req.Runtime)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	imageRef, err := e.builder.Build(ctx, spec, req, func(step Step) {
		log.Info("bootstrap step", "step", step)
	})
	if err != nil {
		return nil, err
	}

	log.Info("bootstrap step", "step", StepEntrypoint, "image", imageRef)

	exitCode, err := e.builder.Run(ctx, spec, imageRef, stdout, stderr)
	if err != nil {
		return nil, fmt.Errorf("run entrypoint: %w", err)
	}

	return &Result{
		ImageRef:   imageRef,
		ExitCode:   exitCode,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (e *engineImpl) Build(ctx context.Context, req Request) (string, error) {
	spec, err := runtime.Resolve(req.Runtime)
	if err != nil {
		return "", err
	}
	return e.builder.Build(ctx, spec, req, func(step Step) {
		log.Info("bootstrap step", "step", step)
	})
}

func (e *engineImpl) StartJob(ctx context.Context, req Request) (*job.Job, error) {
	spec, err := runtime.Resolve(req.Runtime)
	if err != nil {
		return nil, err
	}

	j := job.New(job.NewID(), spec.Name, e.opts.IdleDetachTimeout)
	e.jobs.Add(j)

	log.Info("job created", "job", j.ID, "runtime", spec.Name)

	go func() {
		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
			// Stop may have raced the slot grant: Done being closed and a
			// free slot are both ready cases, and select picks either.
			if j.State().Terminal() {
				e.jobs.Remove(j.ID)
				return
			}
			e.runJob(j, spec, req)

		case <-j.Done():
			// stopped while still queued
			e.jobs.Remove(j.ID)

		case <-time.After(e.opts.SlotWaitTimeout):
			log.Warn("job timed out waiting for a slot", "job", j.ID)
			j.MarkFailed(fmt.Errorf("timed out waiting for an execution slot"))
		}
	}()

	return j, nil
}

// runJob drives one job through the full sequence. Build failures carry
// their failure class; an entrypoint exit of any status is a normal finish.
func (e *engineImpl) runJob(j *job.Job, spec runtime.Spec, req Request) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	j.BindCancel(cancel)

	imageRef, err := e.builder.Build(ctx, spec, req, func(step Step) {
		log.Info("bootstrap step", "job", j.ID, "step", step)
		j.SetStep(step.String())
	})
	if err != nil {
		log.Error("build failed", "job", j.ID, "err", err)
		j.MarkFailed(err)
		return
	}

	j.SetImage(imageRef)
	j.MarkRunning(StepEntrypoint.String())
	log.Info("bootstrap step", "job", j.ID, "step", StepEntrypoint, "image", imageRef)

	exitCode, err := e.builder.Run(ctx, spec, imageRef, &j.Stdout, &j.Stderr)
	if err != nil {
		if ctx.Err() != nil {
			// Stop() already moved the job to TERMINATED; nobody was
			// watching it, so drop it from the index too
			log.Info("job terminated", "job", j.ID)
			e.jobs.Remove(j.ID)
			return
		}
		log.Error("entrypoint invocation failed", "job", j.ID, "err", err)
		j.MarkFailed(err)
		return
	}

	log.Info("job finished", "job", j.ID, "exit_code", exitCode)
	j.MarkFinished(exitCode)
}

func (e *engineImpl) GetJob(id string) (*job.Job, bool) {
	return e.jobs.Get(id)
}

func (e *engineImpl) Jobs() []*job.Job {
	return e.jobs.All()
}
