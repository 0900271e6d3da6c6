package generate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	blockslog "github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

const namesPrompt = `Suggest 6 short, brandable names for this micro-SaaS.
Idea: $IDEA
Audience: $AUDIENCE
Answer as {"names": ["..."]}`

// Names suggests business names and checks which have a free domain.
type Names struct {
	Model   llms.Model
	Domains *DomainChecker
	Logger  *slog.Logger
}

func (h *Names) Handle(ctx context.Context, in dispatch.Input) (state.Payload, error) {
	var answer struct {
		Names []string `json:"names"`
	}
	if err := completeJSON(ctx, h.Model, in.Prompt(namesPrompt), &answer); err != nil {
		return nil, err
	}

	res := state.NamesResult{}
	for _, name := range answer.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		opt := state.NameOption{Name: name}
		if h.Domains != nil {
			opt.Domain, opt.Available = h.Domains.Find(ctx, name, h.logger())
		}
		res.Options = append(res.Options, opt)
		if opt.Available && res.Chosen.Name == "" {
			res.Chosen = opt
		}
	}
	if len(res.Options) == 0 {
		return nil, fmt.Errorf("model suggested no names")
	}
	if res.Chosen.Name == "" {
		res.Chosen = res.Options[0]
	}
	return res, nil
}

func (h *Names) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// DomainChecker asks a domain availability API whether name.tld is free.
// The endpoint is called as GET endpoint?domain=<domain> and must answer
// with a JSON body holding a boolean "available" field.
type DomainChecker struct {
	Settings config.DomainSettings
	HTTP     *http.Client
}

// Find returns the first free domain for name across the configured TLDs.
// Check failures are logged and treated as unavailable. When no endpoint is
// configured the first candidate is returned as unavailable.
func (c *DomainChecker) Find(ctx context.Context, name string, logger *slog.Logger) (string, bool) {
	label := domainLabel(name)
	if label == "" || len(c.Settings.TLDs) == 0 {
		return "", false
	}
	first := label + "." + c.Settings.TLDs[0]
	if c.Settings.Endpoint == "" {
		return first, false
	}
	for _, tld := range c.Settings.TLDs {
		domain := label + "." + tld
		ok, err := c.Check(ctx, domain)
		if err != nil {
			logger.Warn("domain check failed",
				slog.String("domain", domain), blockslog.Error(err))
			continue
		}
		if ok {
			return domain, true
		}
	}
	return first, false
}

// Check reports whether domain is available.
func (c *DomainChecker) Check(ctx context.Context, domain string) (bool, error) {
	u, err := url.Parse(c.Settings.Endpoint)
	if err != nil {
		return false, err
	}
	q := u.Query()
	q.Set("domain", domain)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	if c.Settings.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Settings.APIKey)
	}
	body, err := do(c.client(), "domain check", req)
	if err != nil {
		return false, err
	}
	return gjson.GetBytes(body, "available").Bool(), nil
}

func (c *DomainChecker) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func domainLabel(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
