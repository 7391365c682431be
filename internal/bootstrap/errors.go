package bootstrap

import "errors"

// Failure classes of the bootstrap sequence. All are fatal: nothing catches
// or downgrades them, the job fails as a whole. An entrypoint that exits
// non-zero is NOT an error; its status is reported verbatim in the Result.
var (
	ErrBaseImageUnavailable = errors.New("base image unavailable")
	ErrSystemPackageInstall = errors.New("system package install failed")
	ErrDependencyInstall    = errors.New("dependency install failed")
	ErrSourceCopy           = errors.New("source copy failed")
)

// FailureClass maps a build step to its failure class, or nil for steps
// that have none (environment configuration cannot meaningfully fail).
func FailureClass(step Step) error {
	switch step {
	case StepAcquireBase:
		return ErrBaseImageUnavailable
	case StepSystemPackages:
		return ErrSystemPackageInstall
	case StepDependencies:
		return ErrDependencyInstall
	case StepSource:
		return ErrSourceCopy
	default:
		return nil
	}
}
