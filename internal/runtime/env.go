package runtime

import (
	"sort"
	"strings"
)

// MergeEnv combines a runtime's baseline environment with deploy-time
// overrides. Baseline keys win: the runtime declared them for a reason
// (PYTHONUNBUFFERED stays 1 no matter what the platform injects). The
// result is sorted so it can feed content digests deterministically.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := map[string]string{}

	for k, v := range overrides {
		merged[k] = v
	}
	for _, kv := range base {
		k, v, _ := strings.Cut(kv, "=")
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
