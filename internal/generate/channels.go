package generate

import (
	"context"

	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

const channelsPrompt = `Write an Instagram launch guide for "$NAME" ($SITE_URL), a product for $AUDIENCE: $IDEA.
Answer as {"handle": "", "bio": "", "steps": [""], "posts": [""]} with 5 setup steps and 3 post ideas.`

// Channels asks the model for an Instagram setup guide.
type Channels struct {
	Model llms.Model
}

func (h *Channels) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	var g state.Guide
	if err := completeJSON(ctx, h.Model, in.Prompt(channelsPrompt), &g); err != nil {
		return nil, err
	}
	return state.ChannelsResult{Guide: g}, nil
}
