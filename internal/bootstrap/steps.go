package bootstrap

// Step identifies one stage of the bootstrap sequence. The order of Plan is
// the contract: each step's success is a precondition for the next, and a
// failure aborts everything after it.
type Step string

const (
	StepAcquireBase    Step = "ACQUIRE_BASE"
	StepSystemPackages Step = "INSTALL_SYSTEM_PACKAGES"
	StepDependencies   Step = "INSTALL_DEPENDENCIES"
	StepSource         Step = "MATERIALIZE_SOURCE"
	StepEnvironment    Step = "CONFIGURE_ENVIRONMENT"
	StepEntrypoint     Step = "INVOKE_ENTRYPOINT"
)

// Plan returns the full sequence in execution order.
func Plan() []Step {
	return []Step{
		StepAcquireBase,
		StepSystemPackages,
		StepDependencies,
		StepSource,
		StepEnvironment,
		StepEntrypoint,
	}
}

func (s Step) String() string { return string(s) }
