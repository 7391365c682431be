package job

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Job is one bootstrap run: the sequence's current position, the entrypoint
// output so far, and the terminal outcome. A Job is created WAITING before
// any container work happens; the engine drives it from there.
type Job struct {
	ID        string
	Runtime   string
	StartedAt time.Time

	Stdout Buffer
	Stderr Buffer

	mu       sync.Mutex
	state    State
	step     string
	imageRef string
	exitCode int
	exited   bool
	failure  string

	cancel context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once

	activeWS    int
	idleTimeout time.Duration
	timer       *time.Timer
}

// Snapshot is the externally visible view of a Job.
type Snapshot struct {
	ID        string    `json:"id"`
	Runtime   string    `json:"runtime"`
	State     State     `json:"state"`
	Step      string    `json:"step,omitempty"`
	ImageRef  string    `json:"image,omitempty"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Failure   string    `json:"failure,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

func New(id, runtime string, idleTimeout time.Duration) *Job {
	return &Job{
		ID:          id,
		Runtime:     runtime,
		StartedAt:   time.Now(),
		state:       StateWaiting,
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
	}
}

// BindCancel wires the cancel func for the job's execution context. Stop
// uses it to abort the sequence at whatever step it is in. If the job was
// stopped before its context existed, the context is cancelled right here.
func (j *Job) BindCancel(cancel context.CancelFunc) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancel = cancel
	if j.state.Terminal() {
		cancel()
	}
}

func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := Snapshot{
		ID:        j.ID,
		Runtime:   j.Runtime,
		State:     j.state,
		Step:      j.step,
		ImageRef:  j.imageRef,
		Failure:   j.failure,
		StartedAt: j.StartedAt,
	}
	if j.exited {
		code := j.exitCode
		s.ExitCode = &code
	}
	return s
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// --------------------
// Sequence progress
// --------------------

func (j *Job) SetStep(step string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateBuilding
	j.step = step
}

func (j *Job) SetImage(ref string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.imageRef = ref
}

func (j *Job) MarkRunning(step string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateRunning
	j.step = step
}

// --------------------
// Terminal transitions
// --------------------

func (j *Job) MarkFinished(exitCode int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateFinished
	j.exitCode = exitCode
	j.exited = true
	j.signalDone()
}

func (j *Job) MarkFailed(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateFailed
	if err != nil {
		j.failure = err.Error()
	}
	j.signalDone()
}

// Stop terminates the job, cancelling whatever step is in flight.
func (j *Job) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state.Terminal() {
		return
	}
	j.state = StateTerminated
	if j.cancel != nil {
		j.cancel()
	}
	j.signalDone()
}

func (j *Job) signalDone() {
	j.doneOnce.Do(func() {
		close(j.done)
	})
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// --------------------
// WebSocket accounting
// --------------------

func (j *Job) AttachWS() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.activeWS++
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
}

// DetachWS drops one watcher. When the last one goes and the job is still
// live, an idle timer starts that terminates the job unless someone
// re-attaches first.
func (j *Job) DetachWS() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.activeWS--
	if j.activeWS > 0 || j.state.Terminal() || j.idleTimeout <= 0 {
		return
	}

	log.Debug("job idle, arming termination timer", "job", j.ID, "timeout", j.idleTimeout)
	j.timer = time.AfterFunc(j.idleTimeout, j.Stop)
}

func (j *Job) ActiveWSCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.activeWS
}
