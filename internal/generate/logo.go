package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/createdbygabi/Blocks-sub001/internal/assets"
	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

const logoPrompt = `Minimal flat vector logo for a product for $AUDIENCE: $IDEA. ` +
	`Single centered icon, plain white background, no text.`

// Logo generates a logo image with a Replicate model and copies it into the
// asset bucket.
type Logo struct {
	Replicate config.ReplicateSettings
	HTTP      *http.Client
	Assets    *assets.Store
}

func (h *Logo) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	if h.Replicate.Token == "" {
		return nil, ErrNoToken
	}
	prompt := in.Prompt(logoPrompt)
	imageURL, err := h.predict(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if h.Assets == nil {
		return state.LogoResult{URL: imageURL, Prompt: prompt}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	data, err := do(h.client(), "replicate", req)
	if err != nil {
		return nil, err
	}
	url, err := h.Assets.Put(ctx, assets.Key(in.UserID, in.RunID, "logo.png"), data, "image/png")
	if err != nil {
		return nil, fmt.Errorf("storing logo: %w", err)
	}
	return state.LogoResult{URL: url, Prompt: prompt}, nil
}

// predict creates a prediction and polls it until it settles, returning the
// first output URL.
func (h *Logo) predict(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"input": map[string]any{"prompt": prompt, "aspect_ratio": "1:1", "output_format": "png"},
	})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", strings.TrimSuffix(h.Replicate.BaseURL, "/"), h.Replicate.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	pred, err := h.send(req)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(h.Replicate.PollInterval)
	defer ticker.Stop()
	for {
		switch gjson.GetBytes(pred, "status").String() {
		case "succeeded":
			return predictionOutput(pred)
		case "failed", "canceled":
			msg := gjson.GetBytes(pred, "error").String()
			if msg == "" {
				msg = gjson.GetBytes(pred, "status").String()
			}
			return "", fmt.Errorf("replicate prediction: %s", msg)
		}

		poll := gjson.GetBytes(pred, "urls.get").String()
		if poll == "" {
			return "", fmt.Errorf("replicate prediction has no poll URL")
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, poll, nil)
		if err != nil {
			return "", err
		}
		if pred, err = h.send(req); err != nil {
			return "", err
		}
	}
}

func (h *Logo) send(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+h.Replicate.Token)
	return do(h.client(), "replicate", req)
}

func (h *Logo) client() *http.Client {
	if h.HTTP != nil {
		return h.HTTP
	}
	return http.DefaultClient
}

// predictionOutput accepts both a single URL and a list of URLs.
func predictionOutput(pred []byte) (string, error) {
	out := gjson.GetBytes(pred, "output")
	if out.IsArray() {
		out = out.Get("0")
	}
	if out.String() == "" {
		return "", fmt.Errorf("replicate prediction has no output")
	}
	return out.String(), nil
}
