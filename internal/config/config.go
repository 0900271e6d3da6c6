package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Substep is one collaborator-backed unit of work inside a Step.
type Substep struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	LoadingText string `yaml:"loading-text"`
	Handler     string `yaml:"handler"`
	Prompt      string `yaml:"prompt"`
	Timeout     int    `yaml:"timeout"` // seconds, 0 means unbounded
}

// Step is a top-level phase of the generation pipeline.
type Step struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Required    bool      `yaml:"required"`
	Deferrable  bool      `yaml:"deferrable"`
	DependsOn   []string  `yaml:"depends-on"`
	Substeps    []Substep `yaml:"substeps"`
}

// Config is the step registry. It is the single source of truth for the
// execution order; successor and parent lookups are derived from it.
type Config struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`

	idx *index
}

// Load reads a YAML pipeline file and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a YAML pipeline definition.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in Blocks generation pipeline.
func Default() *Config {
	cfg, err := Parse([]byte(DefaultPipeline))
	if err != nil {
		panic("config: built-in pipeline is invalid: " + err.Error())
	}
	return cfg
}

// LoadOrDefault loads path when it is set and exists, otherwise the built-in
// pipeline.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPipeline is the built-in registry, also written by `blocks init`.
const DefaultPipeline = `name: blocks

steps:
  - id: branding
    title: Branding
    description: Logo and business name
    required: true
    substeps:
      - id: logo
        title: Logo
        description: Generate a logo for the business
        loading-text: Designing your logo...
      - id: names
        title: Business name
        description: Suggest names and check domain availability
        loading-text: Brainstorming names...

  - id: revenue
    title: Revenue
    description: Pricing model for the micro-SaaS
    required: true
    depends-on: [branding]
    substeps:
      - id: pricing_plan
        title: Pricing plan
        description: Generate pricing tiers
        loading-text: Crunching the numbers...

  - id: landing
    title: Landing page
    description: Deploy the site and write its copy
    required: true
    depends-on: [revenue]
    substeps:
      - id: deploy
        title: Deploy
        description: Deploy the landing page instance
        loading-text: Deploying your site...
        timeout: 600
      - id: copywriting
        title: Copywriting
        description: Write the landing page copy
        loading-text: Writing your copy...

  - id: app
    title: App
    description: Preview of the generated product
    required: true
    depends-on: [landing]
    substeps:
      - id: preview
        title: Preview
        description: Render the landing page preview
        loading-text: Building your preview...

  - id: payments
    title: Payments
    description: Accept payments with Stripe Connect
    deferrable: true
    depends-on: [app]
    substeps:
      - id: stripe
        title: Stripe
        description: Create the Stripe Connect account
        loading-text: Connecting Stripe...

  - id: marketing
    title: Marketing
    description: Get the first customers
    deferrable: true
    depends-on: [payments]
    substeps:
      - id: channels
        title: Channels
        description: Instagram setup guide
        loading-text: Planning your launch...
`
