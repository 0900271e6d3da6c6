package generate

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

const pricingPrompt = `Design the pricing for "$NAME", a micro-SaaS for $AUDIENCE: $IDEA.
Return 3 monthly tiers and a brand color theme as
{"plans": [{"name": "", "price": 0, "currency": "USD", "interval": "month", "features": [""]}],
 "theme": {"primary": "#hex", "background": "#hex", "font": ""}}`

// Pricing asks the model for pricing tiers and a theme.
type Pricing struct {
	Model llms.Model
}

func (h *Pricing) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	var res state.PricingResult
	if err := completeJSON(ctx, h.Model, in.Prompt(pricingPrompt), &res); err != nil {
		return nil, err
	}
	if len(res.Plans) == 0 {
		return nil, fmt.Errorf("model returned no pricing plans")
	}
	for i := range res.Plans {
		if res.Plans[i].Currency == "" {
			res.Plans[i].Currency = "USD"
		}
		if res.Plans[i].Interval == "" {
			res.Plans[i].Interval = "month"
		}
	}
	return res, nil
}
