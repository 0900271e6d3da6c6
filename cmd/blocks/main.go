package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	cli "github.com/urfave/cli/v3"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/docs"
	"github.com/createdbygabi/Blocks-sub001/internal/doctor"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
	"github.com/createdbygabi/Blocks-sub001/internal/scaffold"
	"github.com/createdbygabi/Blocks-sub001/internal/server"
	"github.com/createdbygabi/Blocks-sub001/internal/ux"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

func main() {
	app := &cli.Command{
		Name:        "blocks",
		Usage:       "Onboarding step orchestrator for generated micro-SaaS businesses",
		Description: "Run 'blocks docs' for documentation on the pipeline, settings, lifecycle and API.",
		Version:     version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "Path to the settings file",
				Value:   scaffold.SettingsFile,
				Sources: cli.EnvVars("BLOCKS_SETTINGS"),
			},
		},
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			statusCmd(),
			resetCmd(),
			deferCmd(),
			resumeCmd(),
			serveCmd(),
			tokenCmd(),
			doctorCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write blocks.yaml and pipeline.yaml into the current directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir, os.Stdout)
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the remaining onboarding substeps for a user",
		ArgsUsage: "<user>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "idea", Usage: "Business idea (required for a new onboarding)"},
			&cli.StringFlag{Name: "audience", Usage: "Target audience"},
			&cli.StringFlag{Name: "retry", Usage: "Reset `SUBSTEP` before running"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Run deferrable steps without asking"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the plan without executing"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID, err := userArg(cmd)
			if err != nil {
				return err
			}
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.orchestrator(ctx, userID)
			if err != nil {
				return err
			}

			if cmd.Bool("dry-run") {
				ux.DryRun(os.Stdout, a.Config, o.View())
				return nil
			}

			if err := dispatch.Preflight(a.Config, a.Registry, a.binaries()...); err != nil {
				return err
			}

			if idea := cmd.String("idea"); idea != "" {
				if err := o.Begin(ctx, idea, cmd.String("audience")); err != nil {
					return err
				}
			} else if o.Record.Business.Idea == "" {
				return fmt.Errorf("%w: pass --idea to start", orchestrator.ErrMissingIdea)
			}

			if retry := cmd.String("retry"); retry != "" {
				if err := o.Reset(ctx, retry); err != nil {
					return fmt.Errorf("resetting %s: %w", retry, err)
				}
			}

			printer := ux.NewPrinter(a.Config, os.Stdout)
			o.OnProgress = printer.Progress
			auto := cmd.Bool("yes")
			o.Gate = func(ctx context.Context, step config.Step) (dispatch.GateAnswer, error) {
				return dispatch.AskDeferral(ctx, os.Stdin, os.Stdout, step, auto)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			err = o.Run(ctx)
			var fe *orchestrator.FailureError
			switch {
			case errors.As(err, &fe):
				printer.ResumeHint(userID, fe.Substep)
				return err
			case errors.Is(err, orchestrator.ErrStopped):
				fmt.Fprintln(os.Stdout, "\nStopped. Run again to continue.")
				return nil
			case err != nil:
				return err
			}

			v := o.View()
			if v.Finished {
				completed := 0
				for _, s := range v.Steps {
					if s.Completed {
						completed++
					}
				}
				printer.Success(completed)
			}
			return nil
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show onboarding status for a user",
		ArgsUsage: "<user>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID, err := userArg(cmd)
			if err != nil {
				return err
			}
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.orchestrator(ctx, userID)
			if err != nil {
				return err
			}
			ux.RenderStatus(os.Stdout, o.View())
			return nil
		},
	}
}

func resetCmd() *cli.Command {
	return &cli.Command{
		Name:      "reset",
		Usage:     "Return a substep to pending, clearing its error",
		ArgsUsage: "<user> <substep>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withTarget(ctx, cmd, "substep", func(o *orchestrator.Orchestrator, id string) error {
				return o.Reset(ctx, id)
			})
		},
	}
}

func deferCmd() *cli.Command {
	return &cli.Command{
		Name:      "defer",
		Usage:     "Skip a deferrable step for now",
		ArgsUsage: "<user> <step>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withTarget(ctx, cmd, "step", func(o *orchestrator.Orchestrator, id string) error {
				return o.Defer(ctx, id)
			})
		},
	}
}

func resumeCmd() *cli.Command {
	return &cli.Command{
		Name:      "resume",
		Usage:     "Clear the deferral of a step",
		ArgsUsage: "<user> <step>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withTarget(ctx, cmd, "step", func(o *orchestrator.Orchestrator, id string) error {
				return o.Resume(ctx, id)
			})
		},
	}
}

// withTarget loads the user's orchestrator, applies fn to the second
// argument and prints the resulting status.
func withTarget(ctx context.Context, cmd *cli.Command, what string, fn func(*orchestrator.Orchestrator, string) error) error {
	userID, err := userArg(cmd)
	if err != nil {
		return err
	}
	id := cmd.Args().Get(1)
	if id == "" {
		return fmt.Errorf("%s argument is required", what)
	}
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.orchestrator(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(o, id); err != nil {
		return err
	}
	ux.RenderStatus(os.Stdout, o.View())
	return nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the onboarding HTTP and WebSocket API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := dispatch.Preflight(a.Config, a.Registry, a.binaries()...); err != nil {
				return err
			}

			m := orchestrator.NewManager(a.Config, a.Store, a.Registry, a.Logger)
			srv, err := server.New(m, a.Settings.API, a.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "Issue an API bearer token for a user",
		ArgsUsage: "<user>",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime (defaults to api.token-ttl)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID, err := userArg(cmd)
			if err != nil {
				return err
			}
			settings, err := config.LoadSettings(cmd.String("settings"))
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			ttl := cmd.Duration("ttl")
			if ttl <= 0 {
				ttl = settings.API.TokenTTL
			}
			token, err := server.IssueToken([]byte(settings.API.JWTSecret), userID, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:      "doctor",
		Usage:     "Diagnose a failed onboarding using the language model",
		ArgsUsage: "<user>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			userID, err := userArg(cmd)
			if err != nil {
				return err
			}
			a, err := loadApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Store.Load(ctx, userID)
			if err != nil {
				return fmt.Errorf("loading record: %w", err)
			}
			return doctor.Run(ctx, os.Stdout, a.Model, a.Config, rec)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'blocks docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}
