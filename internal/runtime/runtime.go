package runtime

// Spec describes everything the bootstrap sequence needs to turn a source
// tree into a runnable container for one runtime: which base image to start
// from, how to provision it, and how to launch the application.
type Spec struct {
	Name string

	// BaseImage is the pinned runtime image the sequence starts from.
	BaseImage string

	// WorkDir is the fixed directory the source tree is materialized into
	// and the entrypoint runs from.
	WorkDir string

	// ManifestFile is the dependency manifest, resolved relative to the
	// source tree root.
	ManifestFile string

	// SystemInstallCmd installs the OS-level build prerequisites. It must
	// clean package-manager caches in the same invocation so the cleanup
	// lands in the same committed layer. Empty means no system step.
	SystemInstallCmd []string

	// DependencyInstallCmd installs the manifest, run from WorkDir with the
	// manifest already copied in.
	DependencyInstallCmd []string

	// Entrypoint is the foreground command for the final image.
	Entrypoint []string

	// Env is the runtime's baseline environment, always present in the
	// final image.
	Env []string
}
