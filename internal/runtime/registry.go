package runtime

import (
	"fmt"
	"sort"
	"strings"
)

var registry = map[string]Spec{}

func Register(spec Spec) {
	registry[spec.Name] = spec
}

// UnknownRuntimeError reports a name nothing is registered under. Callers
// that want to distinguish a bad runtime name from other failures can
// errors.As against it.
type UnknownRuntimeError struct {
	Name string
}

func (e *UnknownRuntimeError) Error() string {
	return fmt.Sprintf("unsupported runtime %q (have: %s)", e.Name, strings.Join(Names(), ", "))
}

func Resolve(name string) (Spec, error) {
	spec, ok := registry[name]
	if !ok {
		return Spec{}, &UnknownRuntimeError{Name: name}
	}
	return spec, nil
}

// Names lists the registered runtimes, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllSpecs returns the registered specs in name order.
func AllSpecs() []Spec {
	specs := make([]Spec, 0, len(registry))
	for _, name := range Names() {
		specs = append(specs, registry[name])
	}
	return specs
}
