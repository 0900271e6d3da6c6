package generate

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

var urlPattern = regexp.MustCompile(`https://[A-Za-z0-9.\-]+(?:/[^\s"'<>]*)?`)

// Deploy runs the configured deploy command and reports the last https URL
// it printed.
type Deploy struct {
	Settings config.DeploySettings
	Output   io.Writer
}

func (h *Deploy) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	res, err := dispatch.RunCommand(ctx, h.Settings.Command, h.Settings.WorkDir, in, h.Output)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("deploy command exited with code %d: %s", res.ExitCode, truncate(res.Output, 300))
	}
	url := LastURL(res.Output)
	if url == "" {
		return nil, ErrNoURL
	}
	return state.DeployResult{URL: url, Output: truncate(res.Output, 2000)}, nil
}

// LastURL returns the last https URL found in output.
func LastURL(output string) string {
	matches := urlPattern.FindAllString(output, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}
