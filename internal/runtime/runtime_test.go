package runtime

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolvePython(t *testing.T) {
	spec, err := Resolve("python")
	if err != nil {
		t.Fatalf("Resolve(python): %v", err)
	}

	if spec.BaseImage != "python:3.11-slim" {
		t.Errorf("BaseImage = %q", spec.BaseImage)
	}
	if spec.ManifestFile != "requirements.txt" {
		t.Errorf("ManifestFile = %q", spec.ManifestFile)
	}
	if spec.WorkDir != "/app" {
		t.Errorf("WorkDir = %q", spec.WorkDir)
	}
	if got, want := spec.Entrypoint, []string{"python", "main.py"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Entrypoint = %v, want %v", got, want)
	}
	if len(spec.SystemInstallCmd) == 0 {
		t.Error("python runtime should install a build toolchain")
	}

	found := false
	for _, kv := range spec.Env {
		if kv == "PYTHONUNBUFFERED=1" {
			found = true
		}
	}
	if !found {
		t.Errorf("Env = %v, want PYTHONUNBUFFERED=1 present", spec.Env)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("cobol")
	if err == nil {
		t.Fatal("expected error for unknown runtime")
	}

	var unknown *UnknownRuntimeError
	if !errors.As(err, &unknown) {
		t.Fatalf("error %T is not an UnknownRuntimeError", err)
	}
	if unknown.Name != "cobol" {
		t.Errorf("Name = %q, want cobol", unknown.Name)
	}
	// the message names the runtimes that do exist
	if !strings.Contains(err.Error(), "python") {
		t.Errorf("error %q should list registered runtimes", err)
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no runtimes registered")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted: %v", names)
		}
	}

	specs := AllSpecs()
	if len(specs) != len(names) {
		t.Fatalf("AllSpecs() = %d specs, Names() = %d", len(specs), len(names))
	}
	for i, spec := range specs {
		if spec.Name != names[i] {
			t.Errorf("AllSpecs()[%d] = %s, want %s", i, spec.Name, names[i])
		}
	}
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides map[string]string
		want      []string
	}{
		{
			name: "no overrides",
			base: []string{"PYTHONUNBUFFERED=1"},
			want: []string{"PYTHONUNBUFFERED=1"},
		},
		{
			name:      "platform injects new vars",
			base:      []string{"PYTHONUNBUFFERED=1"},
			overrides: map[string]string{"API_TOKEN": "secret"},
			want:      []string{"API_TOKEN=secret", "PYTHONUNBUFFERED=1"},
		},
		{
			name:      "baseline keys win",
			base:      []string{"PYTHONUNBUFFERED=1"},
			overrides: map[string]string{"PYTHONUNBUFFERED": "0", "B": "2"},
			want:      []string{"B=2", "PYTHONUNBUFFERED=1"},
		},
		{
			name: "sorted output",
			base: []string{"Z=z", "A=a"},
			want: []string{"A=a", "Z=z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeEnv(tt.base, tt.overrides)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeEnv = %v, want %v", got, tt.want)
			}
		})
	}
}
