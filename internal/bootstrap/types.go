package bootstrap

type Request struct {
	Runtime   string
	SourceDir string
	Env       map[string]string
}

type Result struct {
	ImageRef   string
	ExitCode   int
	DurationMs int64
}
