package generate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// Stripe creates an Express connected account and its onboarding link.
type Stripe struct {
	Settings config.StripeSettings
	HTTP     *http.Client
}

func (h *Stripe) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	if h.Settings.SecretKey == "" {
		return nil, ErrNoStripeKey
	}

	form := url.Values{}
	form.Set("type", "express")
	form.Set("capabilities[card_payments][requested]", "true")
	form.Set("capabilities[transfers][requested]", "true")
	form.Set("business_profile[name]", in.Business.Name)
	if in.Business.SiteURL != "" {
		form.Set("business_profile[url]", in.Business.SiteURL)
	}
	form.Set("metadata[user_id]", in.UserID)
	body, err := h.post(ctx, "/accounts", form)
	if err != nil {
		return nil, err
	}
	accountID := gjson.GetBytes(body, "id").String()
	if accountID == "" {
		return nil, fmt.Errorf("stripe: account response has no id")
	}

	link := url.Values{}
	link.Set("account", accountID)
	link.Set("type", "account_onboarding")
	link.Set("refresh_url", h.returnURL(h.Settings.RefreshURL, in))
	link.Set("return_url", h.returnURL(h.Settings.ReturnURL, in))
	body, err = h.post(ctx, "/account_links", link)
	if err != nil {
		return nil, err
	}
	return state.StripeResult{Link: state.StripeLink{
		AccountID:     accountID,
		OnboardingURL: gjson.GetBytes(body, "url").String(),
	}}, nil
}

func (h *Stripe) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	endpoint := strings.TrimSuffix(h.Settings.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(h.Settings.SecretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	client := h.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	return do(client, "stripe", req)
}

// returnURL falls back to the deployed site when no URL is configured.
func (h *Stripe) returnURL(configured string, in dispatch.Input) string {
	if configured != "" {
		return dispatch.ExpandVars(configured, in.Vars())
	}
	if in.Business.SiteURL != "" {
		return in.Business.SiteURL
	}
	return "https://example.com"
}
