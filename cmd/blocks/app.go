package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/llms"
	cli "github.com/urfave/cli/v3"

	"github.com/createdbygabi/Blocks-sub001/internal/assets"
	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/generate"
	"github.com/createdbygabi/Blocks-sub001/internal/log"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
	"github.com/createdbygabi/Blocks-sub001/internal/store"
)

var version = "dev"

// app holds everything a command needs once settings are loaded.
type app struct {
	Settings *config.Settings
	Config   *config.Config
	Store    state.Store
	Assets   *assets.Store
	Registry *dispatch.Registry
	Model    llms.Model
	Logger   *slog.Logger
}

// loadApp reads settings and the pipeline, then opens the record store,
// the asset bucket and the collaborator registry.
func loadApp(ctx context.Context, cmd *cli.Command) (*app, error) {
	settings, err := config.LoadSettings(cmd.String("settings"))
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	logger := log.NewTo(os.Stderr, "blocks", settings.Env, version, log.ParseLevel(settings.LogLevel))
	slog.SetDefault(logger)

	cfg, err := config.LoadOrDefault(settings.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("loading pipeline: %w", err)
	}

	st, err := store.Open(ctx, settings.Store)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	bucket, err := assets.Open(ctx, settings.Assets.BucketURL, settings.Assets.PublicBaseURL)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("opening asset bucket: %w", err)
	}

	model, err := generate.NewModel(settings.LLM)
	if err != nil && !errors.Is(err, generate.ErrNoModel) {
		st.Close()
		bucket.Close()
		return nil, fmt.Errorf("building language model: %w", err)
	}

	reg := dispatch.NewRegistry()
	generate.Register(reg, generate.Deps{
		Settings: settings,
		Model:    model,
		Assets:   bucket,
		Logger:   logger,
	})

	return &app{
		Settings: settings,
		Config:   cfg,
		Store:    st,
		Assets:   bucket,
		Registry: reg,
		Model:    model,
		Logger:   logger,
	}, nil
}

func (a *app) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("Failed to close store", log.Error(err))
	}
	if err := a.Assets.Close(); err != nil {
		a.Logger.Warn("Failed to close asset bucket", log.Error(err))
	}
}

// orchestrator loads userID's record and wraps it.
func (a *app) orchestrator(ctx context.Context, userID string) (*orchestrator.Orchestrator, error) {
	rec, err := a.Store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading record: %w", err)
	}
	o := orchestrator.New(a.Config, rec, a.Store, a.Registry)
	o.Logger = a.Logger
	return o, nil
}

// binaries lists the external programs the pipeline shells out to.
func (a *app) binaries() []string {
	if !slices.Contains(a.Config.Handlers(), "deploy") {
		return nil
	}
	bins := []string{"bash"}
	if fields := strings.Fields(a.Settings.Deploy.Command); len(fields) > 0 {
		bins = append(bins, fields[0])
	}
	return bins
}

// userArg returns the first argument as a validated user id.
func userArg(cmd *cli.Command) (string, error) {
	userID := cmd.Args().First()
	if userID == "" {
		return "", fmt.Errorf("user argument is required")
	}
	if err := state.ValidUserID(userID); err != nil {
		return "", err
	}
	return userID, nil
}
