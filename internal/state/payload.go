package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the typed result of a completed substep. Each concrete result
// knows how to merge itself into the business record.
type Payload interface {
	Kind() string
	Apply(*Business)
}

// Payload kinds
const (
	KindLogo     = "logo"
	KindNames    = "names"
	KindPricing  = "pricing_plan"
	KindDeploy   = "deploy"
	KindCopy     = "copywriting"
	KindPreview  = "preview"
	KindStripe   = "stripe"
	KindChannels = "channels"
)

var ErrUnknownPayload = errors.New("unknown payload kind")

type (
	LogoResult struct {
		URL    string `json:"url"`
		Prompt string `json:"prompt,omitempty"`
	}

	// NamesResult lists the generated names; Chosen is the first available one
	NamesResult struct {
		Options []NameOption `json:"options"`
		Chosen  NameOption   `json:"chosen"`
	}

	PricingResult struct {
		Plans []Plan `json:"plans"`
		Theme *Theme `json:"theme,omitempty"`
	}

	DeployResult struct {
		URL    string `json:"url"`
		Output string `json:"output,omitempty"`
	}

	CopyResult struct {
		Copy LandingCopy `json:"copy"`
	}

	PreviewResult struct {
		URL string `json:"url"`
	}

	StripeResult struct {
		Link StripeLink `json:"link"`
	}

	ChannelsResult struct {
		Guide Guide `json:"guide"`
	}

	envelope struct {
		Kind  string          `json:"kind"`
		Value json.RawMessage `json:"value"`
	}
)

var payloadDecoders = map[string]func(json.RawMessage) (Payload, error){
	KindLogo:     decodeAs[LogoResult],
	KindNames:    decodeAs[NamesResult],
	KindPricing:  decodeAs[PricingResult],
	KindDeploy:   decodeAs[DeployResult],
	KindCopy:     decodeAs[CopyResult],
	KindPreview:  decodeAs[PreviewResult],
	KindStripe:   decodeAs[StripeResult],
	KindChannels: decodeAs[ChannelsResult],
}

func (LogoResult) Kind() string     { return KindLogo }
func (NamesResult) Kind() string    { return KindNames }
func (PricingResult) Kind() string  { return KindPricing }
func (DeployResult) Kind() string   { return KindDeploy }
func (CopyResult) Kind() string     { return KindCopy }
func (PreviewResult) Kind() string  { return KindPreview }
func (StripeResult) Kind() string   { return KindStripe }
func (ChannelsResult) Kind() string { return KindChannels }

func (r LogoResult) Apply(b *Business) { b.LogoURL = r.URL }

func (r NamesResult) Apply(b *Business) {
	b.NameOptions = append([]NameOption(nil), r.Options...)
	if r.Chosen.Name != "" {
		b.Name = r.Chosen.Name
		b.Domain = r.Chosen.Domain
	}
}

func (r PricingResult) Apply(b *Business) {
	b.Plans = append([]Plan(nil), r.Plans...)
	if r.Theme != nil {
		t := *r.Theme
		b.Theme = &t
	}
}

func (r DeployResult) Apply(b *Business) { b.SiteURL = r.URL }

func (r CopyResult) Apply(b *Business) {
	c := r.Copy
	b.Copy = &c
}

func (r PreviewResult) Apply(b *Business) { b.PreviewURL = r.URL }

func (r StripeResult) Apply(b *Business) {
	l := r.Link
	b.Stripe = &l
}

func (r ChannelsResult) Apply(b *Business) {
	g := r.Guide
	b.Marketing = &g
}

// KnownKind reports whether kind names a payload type.
func KnownKind(kind string) bool {
	_, ok := payloadDecoders[kind]
	return ok
}

// EncodePayload wraps p in its kind envelope. A nil payload encodes as null.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	value, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: p.Kind(), Value: value})
}

// DecodePayload reads an envelope produced by EncodePayload.
func DecodePayload(data []byte) (Payload, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	decode, ok := payloadDecoders[env.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayload, env.Kind)
	}
	return decode(env.Value)
}

func decodeAs[T Payload](raw json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Envelope carries a Payload through JSON in its kind envelope, so read
// models holding results can be decoded again.
type Envelope struct {
	Payload
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return EncodePayload(e.Payload)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	p, err := DecodePayload(data)
	if err != nil {
		return err
	}
	e.Payload = p
	return nil
}
