package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

const copyPrompt = `Write landing page copy for "$NAME", a micro-SaaS for $AUDIENCE: $IDEA.
Answer as {"headline": "", "subheadline": "", "features": [{"title": "", "body": ""}],
"cta": "", "aboutHtml": "<p>...</p>"}. aboutHtml may use basic inline HTML.`

// Copywriting asks the model for landing copy. Plain fields are stripped of
// all markup; the about section keeps UGC-safe HTML.
type Copywriting struct {
	Model llms.Model
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

func (h *Copywriting) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	var c state.LandingCopy
	if err := completeJSON(ctx, h.Model, in.Prompt(copyPrompt), &c); err != nil {
		return nil, err
	}
	c = SanitizeCopy(c)
	if c.Headline == "" {
		return nil, fmt.Errorf("model returned no headline")
	}
	return state.CopyResult{Copy: c}, nil
}

// SanitizeCopy strips markup from every plain text field of c.
func SanitizeCopy(c state.LandingCopy) state.LandingCopy {
	plain := func(s string) string {
		return strings.TrimSpace(strictPolicy.Sanitize(s))
	}
	out := state.LandingCopy{
		Headline:    plain(c.Headline),
		Subheadline: plain(c.Subheadline),
		CTA:         plain(c.CTA),
		AboutHTML:   strings.TrimSpace(ugcPolicy.Sanitize(c.AboutHTML)),
	}
	for _, f := range c.Features {
		out.Features = append(out.Features, state.Feature{Title: plain(f.Title), Body: plain(f.Body)})
	}
	return out
}
