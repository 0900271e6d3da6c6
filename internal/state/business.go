package state

import (
	"regexp"
	"strings"
)

type (
	// Business holds everything generated for one user's micro-SaaS. Payloads
	// merge into it as substeps complete.
	Business struct {
		Idea        string       `json:"idea"`
		Audience    string       `json:"audience,omitempty"`
		Name        string       `json:"name,omitempty"`
		Domain      string       `json:"domain,omitempty"`
		NameOptions []NameOption `json:"nameOptions,omitempty"`
		LogoURL     string       `json:"logoUrl,omitempty"`
		Plans       []Plan       `json:"pricingPlans,omitempty"`
		Theme       *Theme       `json:"theme,omitempty"`
		SiteURL     string       `json:"siteUrl,omitempty"`
		Copy        *LandingCopy `json:"copy,omitempty"`
		PreviewURL  string       `json:"previewUrl,omitempty"`
		Stripe      *StripeLink  `json:"stripe,omitempty"`
		Marketing   *Guide       `json:"marketing,omitempty"`
	}

	// NameOption is a candidate business name and its domain availability
	NameOption struct {
		Name      string `json:"name"`
		Domain    string `json:"domain,omitempty"`
		Available bool   `json:"available"`
	}

	// Plan is one tier of the generated pricing plan
	Plan struct {
		Name     string   `json:"name"`
		Price    float64  `json:"price"`
		Currency string   `json:"currency,omitempty"`
		Interval string   `json:"interval,omitempty"`
		Features []string `json:"features,omitempty"`
	}

	Theme struct {
		Primary    string `json:"primary"`
		Background string `json:"background"`
		Font       string `json:"font,omitempty"`
	}

	// LandingCopy is the sanitized marketing copy for the landing page
	LandingCopy struct {
		Headline    string    `json:"headline"`
		Subheadline string    `json:"subheadline,omitempty"`
		Features    []Feature `json:"features,omitempty"`
		CTA         string    `json:"cta,omitempty"`
		AboutHTML   string    `json:"aboutHtml,omitempty"`
	}

	Feature struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	// StripeLink identifies the connected account and its onboarding link
	StripeLink struct {
		AccountID     string `json:"accountId"`
		OnboardingURL string `json:"onboardingUrl"`
	}

	// Guide is the generated Instagram setup guide
	Guide struct {
		Handle string   `json:"handle,omitempty"`
		Bio    string   `json:"bio,omitempty"`
		Steps  []string `json:"steps,omitempty"`
		Posts  []string `json:"posts,omitempty"`
	}
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slug returns a lowercase, dash separated form of the business name.
func (b *Business) Slug() string {
	s := slugStrip.ReplaceAllString(strings.ToLower(b.Name), "-")
	return strings.Trim(s, "-")
}

// Clone returns a deep copy.
func (b Business) Clone() Business {
	c := b
	c.NameOptions = append([]NameOption(nil), b.NameOptions...)
	if b.Plans != nil {
		c.Plans = make([]Plan, len(b.Plans))
		for i, p := range b.Plans {
			p.Features = append([]string(nil), p.Features...)
			c.Plans[i] = p
		}
	}
	if b.Theme != nil {
		t := *b.Theme
		c.Theme = &t
	}
	if b.Copy != nil {
		cp := *b.Copy
		cp.Features = append([]Feature(nil), b.Copy.Features...)
		c.Copy = &cp
	}
	if b.Stripe != nil {
		s := *b.Stripe
		c.Stripe = &s
	}
	if b.Marketing != nil {
		g := *b.Marketing
		g.Steps = append([]string(nil), b.Marketing.Steps...)
		g.Posts = append([]string(nil), b.Marketing.Posts...)
		c.Marketing = &g
	}
	return c
}
