package dispatch

import (
	"os"
	"regexp"
	"strings"
)

const envPrefix = "BLOCKS_"

var varRef = regexp.MustCompile(`\$(?:\{([A-Za-z_][A-Za-z0-9_]*)\}|([A-Za-z_][A-Za-z0-9_]*))`)

// ExpandVars substitutes $KEY and ${KEY} in template. A key resolves from
// vars, then from vars with the BLOCKS_ prefix stripped (the names child
// processes see), then from the environment.
func ExpandVars(template string, vars map[string]string) string {
	return os.Expand(template, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		if short, ok := strings.CutPrefix(key, envPrefix); ok {
			if v, ok := vars[short]; ok {
				return v
			}
		}
		return os.Getenv(key)
	})
}

// EnvRefs rewrites $KEY and ${KEY} for every key of vars into a reference
// to its BLOCKS_ environment variable, leaving the rest of command as is.
// The shell then reads the values at run time and never parses them.
func EnvRefs(command string, vars map[string]string) string {
	return varRef.ReplaceAllStringFunc(command, func(ref string) string {
		m := varRef.FindStringSubmatch(ref)
		key := m[1]
		if key == "" {
			key = m[2]
		}
		if _, ok := vars[key]; !ok {
			return ref
		}
		return "${" + envPrefix + key + "}"
	})
}
