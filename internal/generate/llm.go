package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/fenced"
)

const jsonSystemPrompt = `You help founders launch micro-SaaS businesses.
Answer with a single JSON document and nothing else.`

// complete sends one system and one human message and returns the text of
// the first choice.
func complete(ctx context.Context, model llms.Model, system, prompt string) (string, error) {
	if model == nil {
		return "", ErrNoModel
	}
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}
	resp, err := model.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// completeJSON asks for a JSON answer and decodes it into v.
func completeJSON(ctx context.Context, model llms.Model, prompt string, v any) error {
	text, err := complete(ctx, model, jsonSystemPrompt, prompt)
	if err != nil {
		return err
	}
	raw, err := fenced.JSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding model answer: %w", err)
	}
	return nil
}
