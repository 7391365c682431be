package job

type State string

const (
	StateWaiting    State = "WAITING"
	StateBuilding   State = "BUILDING"
	StateRunning    State = "RUNNING"
	StateFinished   State = "FINISHED"
	StateFailed     State = "FAILED"
	StateTerminated State = "TERMINATED"
)

func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed || s == StateTerminated
}
