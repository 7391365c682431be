package runtime

// Python is the built-in runtime: a slim Debian Python base, a C compiler
// toolchain for native extensions, pip against requirements.txt, and an
// unbuffered interpreter so logs reach collectors immediately.
var Python = Spec{
	Name:      "python",
	BaseImage: "python:3.11-slim",
	WorkDir:   "/app",

	ManifestFile: "requirements.txt",

	SystemInstallCmd: []string{
		"sh", "-c",
		"apt-get update && apt-get install -y --no-install-recommends build-essential && rm -rf /var/lib/apt/lists/*",
	},

	DependencyInstallCmd: []string{
		"pip", "install", "--no-cache-dir", "-r", "requirements.txt",
	},

	Entrypoint: []string{"python", "main.py"},

	Env: []string{"PYTHONUNBUFFERED=1"},
}

func init() {
	Register(Python)
}
