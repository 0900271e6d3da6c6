package dispatch

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
)

// Preflight checks that every handler the pipeline names is registered and
// that the binaries in bins are available on PATH.
func Preflight(cfg *config.Config, r *Registry, bins ...string) error {
	var missing []string
	for _, name := range cfg.Handlers() {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNoHandler, strings.Join(missing, ", "))
	}

	var notFound []string
	for _, bin := range bins {
		if _, err := exec.LookPath(bin); err != nil {
			notFound = append(notFound, bin)
		}
	}
	if len(notFound) > 0 {
		return fmt.Errorf("required binaries not found in PATH: %s", strings.Join(notFound, ", "))
	}
	return nil
}
