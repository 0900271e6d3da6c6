package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type (
	// Settings holds runtime configuration for the CLI and API server
	Settings struct {
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log-level"`
		Pipeline string `yaml:"pipeline"`

		Store     StoreSettings     `yaml:"store"`
		API       APISettings       `yaml:"api"`
		LLM       LLMSettings       `yaml:"llm"`
		Replicate ReplicateSettings `yaml:"replicate"`
		Domains   DomainSettings    `yaml:"domains"`
		Deploy    DeploySettings    `yaml:"deploy"`
		Stripe    StripeSettings    `yaml:"stripe"`
		Assets    AssetSettings     `yaml:"assets"`
	}

	// StoreSettings selects and configures the persistence backend
	StoreSettings struct {
		Driver   string `yaml:"driver"` // file, sqlite, redis, postgres
		Dir      string `yaml:"dir"`
		DSN      string `yaml:"dsn"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	}

	// APISettings configures the HTTP server
	APISettings struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		JWTSecret    string        `yaml:"jwt-secret"`
		TokenTTL     time.Duration `yaml:"token-ttl"`
		AllowOrigins []string      `yaml:"allow-origins"`
	}

	// LLMSettings configures the chat completion model
	LLMSettings struct {
		APIKey  string `yaml:"api-key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base-url"`
	}

	// ReplicateSettings configures logo image generation
	ReplicateSettings struct {
		Token        string        `yaml:"token"`
		Model        string        `yaml:"model"`
		BaseURL      string        `yaml:"base-url"`
		PollInterval time.Duration `yaml:"poll-interval"`
	}

	// DomainSettings configures the domain availability checker
	DomainSettings struct {
		Endpoint string   `yaml:"endpoint"`
		APIKey   string   `yaml:"api-key"`
		TLDs     []string `yaml:"tlds"`
	}

	// DeploySettings configures the deploy command run for the landing page
	DeploySettings struct {
		Command string `yaml:"command"`
		WorkDir string `yaml:"work-dir"`
	}

	// StripeSettings configures Stripe Connect onboarding
	StripeSettings struct {
		SecretKey  string `yaml:"secret-key"`
		BaseURL    string `yaml:"base-url"`
		RefreshURL string `yaml:"refresh-url"`
		ReturnURL  string `yaml:"return-url"`
	}

	// AssetSettings configures where generated images and pages are stored
	AssetSettings struct {
		BucketURL     string `yaml:"bucket-url"`
		PublicBaseURL string `yaml:"public-base-url"`
	}
)

const (
	DefaultAPIHost      = "0.0.0.0"
	DefaultAPIPort      = 8080
	MaxTCPPort          = 65535
	DefaultTokenTTL     = 24 * time.Hour
	DefaultStoreDriver  = "file"
	DefaultStoreDir     = ".blocks/records"
	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisPrefix  = "blocks"
	DefaultLLMModel     = "gpt-4o-mini"
	DefaultLogoModel    = "black-forest-labs/flux-schnell"
	DefaultReplicateURL = "https://api.replicate.com/v1"
	DefaultStripeURL    = "https://api.stripe.com/v1"
	DefaultPollInterval = 2 * time.Second
	DefaultBucketURL    = "file:///tmp/blocks-assets?create_dir=true"
	DefaultDeployCmd    = "vercel deploy --prod --yes --name $SLUG"
)

var (
	ErrInvalidAPIPort     = errors.New("invalid API port")
	ErrUnknownStoreDriver = errors.New("unknown store driver")
	ErrMissingStoreDSN    = errors.New("store dsn is required")
	ErrInvalidTokenTTL    = errors.New("token ttl must be positive")
	ErrInvalidPoll        = errors.New("replicate poll interval must be positive")
)

var storeDrivers = map[string]bool{
	"file": true, "sqlite": true, "redis": true, "postgres": true,
}

// DefaultSettings creates settings with defaults for every collaborator
func DefaultSettings() *Settings {
	return &Settings{
		Env:      "development",
		LogLevel: "info",
		Store: StoreSettings{
			Driver: DefaultStoreDriver,
			Dir:    DefaultStoreDir,
			Addr:   DefaultRedisAddr,
			Prefix: DefaultRedisPrefix,
		},
		API: APISettings{
			Host:         DefaultAPIHost,
			Port:         DefaultAPIPort,
			TokenTTL:     DefaultTokenTTL,
			AllowOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMSettings{Model: DefaultLLMModel},
		Replicate: ReplicateSettings{
			Model:        DefaultLogoModel,
			BaseURL:      DefaultReplicateURL,
			PollInterval: DefaultPollInterval,
		},
		Domains: DomainSettings{TLDs: []string{"com", "io", "co"}},
		Deploy:  DeploySettings{Command: DefaultDeployCmd},
		Stripe:  StripeSettings{BaseURL: DefaultStripeURL},
		Assets:  AssetSettings{BucketURL: DefaultBucketURL},
	}
}

// LoadSettings reads defaults, overlays the YAML file at path (if present),
// then a .env file (outside production) and the process environment.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	if os.Getenv("BLOCKS_ENV") != "production" {
		_ = godotenv.Load()
	}
	if err := s.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromEnv overrides settings from environment variables. Returns an error
// if a numeric or duration variable cannot be parsed.
func (s *Settings) LoadFromEnv() error {
	setString(&s.Env, "BLOCKS_ENV")
	setString(&s.LogLevel, "LOG_LEVEL")
	setString(&s.Pipeline, "BLOCKS_PIPELINE")

	setString(&s.Store.Driver, "BLOCKS_STORE")
	setString(&s.Store.Dir, "BLOCKS_STORE_DIR")
	setString(&s.Store.DSN, "DATABASE_URL")
	setString(&s.Store.Addr, "REDIS_ADDR")
	setString(&s.Store.Password, "REDIS_PASSWORD")
	setString(&s.Store.Prefix, "REDIS_PREFIX")
	if err := setInt(&s.Store.DB, "REDIS_DB"); err != nil {
		return err
	}

	setString(&s.API.Host, "API_HOST")
	if err := setInt(&s.API.Port, "API_PORT"); err != nil {
		return err
	}
	setString(&s.API.JWTSecret, "JWT_SECRET")
	if err := setDuration(&s.API.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		s.API.AllowOrigins = splitList(v)
	}

	setString(&s.LLM.APIKey, "OPENAI_API_KEY")
	setString(&s.LLM.Model, "OPENAI_MODEL")
	setString(&s.LLM.BaseURL, "OPENAI_BASE_URL")

	setString(&s.Replicate.Token, "REPLICATE_API_TOKEN")
	setString(&s.Replicate.Model, "REPLICATE_LOGO_MODEL")
	setString(&s.Replicate.BaseURL, "REPLICATE_BASE_URL")

	setString(&s.Domains.Endpoint, "DOMAIN_CHECK_URL")
	setString(&s.Domains.APIKey, "DOMAIN_CHECK_API_KEY")
	if v := os.Getenv("DOMAIN_TLDS"); v != "" {
		s.Domains.TLDs = splitList(v)
	}

	setString(&s.Deploy.Command, "BLOCKS_DEPLOY_COMMAND")
	setString(&s.Deploy.WorkDir, "BLOCKS_DEPLOY_DIR")

	setString(&s.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&s.Stripe.BaseURL, "STRIPE_BASE_URL")
	setString(&s.Stripe.RefreshURL, "STRIPE_REFRESH_URL")
	setString(&s.Stripe.ReturnURL, "STRIPE_RETURN_URL")

	setString(&s.Assets.BucketURL, "ASSETS_BUCKET_URL")
	setString(&s.Assets.PublicBaseURL, "ASSETS_PUBLIC_URL")
	return nil
}

// Validate checks the settings for values that cannot work
func (s *Settings) Validate() error {
	if s.API.Port <= 0 || s.API.Port > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, s.API.Port)
	}
	if s.API.TokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}
	if !storeDrivers[s.Store.Driver] {
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, s.Store.Driver)
	}
	if (s.Store.Driver == "sqlite" || s.Store.Driver == "postgres") && s.Store.DSN == "" {
		return fmt.Errorf("%w for driver %q", ErrMissingStoreDSN, s.Store.Driver)
	}
	if s.Replicate.PollInterval <= 0 {
		return ErrInvalidPoll
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
