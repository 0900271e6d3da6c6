// Package generate holds the external collaborators behind each substep of
// the default pipeline. Every collaborator is a dispatch.Handler returning
// the typed payload for its substep.
package generate

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/createdbygabi/Blocks-sub001/internal/assets"
	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
)

var (
	ErrNoModel     = errors.New("no language model configured")
	ErrNoToken     = errors.New("no replicate token configured")
	ErrNoStripeKey = errors.New("no stripe secret key configured")
	ErrNoURL       = errors.New("deploy output contained no URL")
)

// Deps are the shared clients handed to every collaborator.
type Deps struct {
	Settings *config.Settings
	Model    llms.Model
	HTTP     *http.Client
	Assets   *assets.Store
	Logger   *slog.Logger
}

const defaultHTTPTimeout = 60 * time.Second

// NewModel builds the OpenAI chat model from settings.
func NewModel(s config.LLMSettings) (llms.Model, error) {
	if s.APIKey == "" {
		return nil, ErrNoModel
	}
	opts := []openai.Option{
		openai.WithToken(s.APIKey),
		openai.WithModel(s.Model),
	}
	if s.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(s.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return llm, nil
}

// Register binds every built-in collaborator to its handler name.
func Register(reg *dispatch.Registry, d Deps) {
	if d.HTTP == nil {
		d.HTTP = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	s := d.Settings
	if s == nil {
		s = config.DefaultSettings()
	}

	reg.Register("logo", &Logo{
		Replicate: s.Replicate,
		HTTP:      d.HTTP,
		Assets:    d.Assets,
	})
	reg.Register("names", &Names{
		Model:   d.Model,
		Domains: &DomainChecker{Settings: s.Domains, HTTP: d.HTTP},
		Logger:  d.Logger,
	})
	reg.Register("pricing_plan", &Pricing{Model: d.Model})
	reg.Register("deploy", &Deploy{Settings: s.Deploy})
	reg.Register("copywriting", &Copywriting{Model: d.Model})
	reg.Register("preview", &Preview{Assets: d.Assets})
	reg.Register("stripe", &Stripe{Settings: s.Stripe, HTTP: d.HTTP})
	reg.Register("channels", &Channels{Model: d.Model})
}
