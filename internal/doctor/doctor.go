// Package doctor asks the language model to diagnose a halted onboarding.
package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
	"github.com/createdbygabi/Blocks-sub001/internal/ux"
)

var ErrNoModel = errors.New("doctor needs a language model; set OPENAI_API_KEY")

const diagPrompt = `You are diagnosing a failed step of the Blocks onboarding pipeline, which generates a micro-SaaS business from an idea. Analyze the context below and provide a concise diagnosis.

## Failed Substep
%s

## Error
%s

## Execution Context
%s

## Business So Far
%s

Instructions:
1. Identify what went wrong from the error.
2. Classify this as a CONFIGURATION problem (missing key, wrong endpoint, bad deploy command), a COLLABORATOR problem (external API down, quota, rejected content), or an INPUT problem (the idea or generated data).
3. Suggest specific fixes.
4. Recommend the next command to run:
   - blocks run <user> --retry <substep>  (re-run the failed substep, then continue)
   - blocks defer <user> <step>           (skip a deferrable step for now)
   - Fix the underlying issue first, then retry

Be direct and concise. Focus on actionable advice.`

// Run diagnoses rec and writes the model's answer to w. Records that are
// not failed or interrupted are reported as healthy.
func Run(ctx context.Context, w io.Writer, model llms.Model, cfg *config.Config, rec *state.Record) error {
	if rec.Status != state.StatusFailed && rec.Status != state.StatusInterrupted {
		fmt.Fprintln(w, "No failed run to diagnose.")
		return nil
	}
	substepID := FailedSubstep(rec)
	sub, ok := cfg.Substep(substepID)
	if !ok {
		return fmt.Errorf("cannot locate the failed substep %q in the pipeline", substepID)
	}
	if model == nil {
		return ErrNoModel
	}
	stepID, _ := cfg.ParentOf(substepID)

	p := ux.NewPrinter(cfg, w)
	fmt.Fprintf(w, "\n══ Doctor: diagnosing %s/%s ══\n\n", stepID, substepID)

	answer, err := llms.GenerateFromSinglePrompt(ctx, model, BuildPrompt(*sub, rec))
	if err != nil {
		return fmt.Errorf("asking the model: %w", err)
	}
	fmt.Fprintln(w, strings.TrimSpace(answer))
	p.ResumeHint(rec.UserID, substepID)
	return nil
}

// FailedSubstep returns the substep that halted rec, or the one left
// loading by an interruption.
func FailedSubstep(rec *state.Record) string {
	if rec.Error != "" {
		return rec.Error
	}
	for id, e := range rec.Progress {
		if e.Status == state.SubstepLoading || e.Status == state.SubstepError {
			return id
		}
	}
	return ""
}

// BuildPrompt renders the diagnosis prompt for sub.
func BuildPrompt(sub config.Substep, rec *state.Record) string {
	errMsg := rec.ErrorMessage
	if errMsg == "" {
		errMsg = fmt.Sprintf("(no error recorded; run status is %s)", rec.Status)
	}
	return fmt.Sprintf(diagPrompt, substepConfig(sub), errMsg, timing(rec, sub.ID), business(rec.Business))
}

func substepConfig(sub config.Substep) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("ID: %s", sub.ID))
	if sub.Title != "" {
		parts = append(parts, fmt.Sprintf("Title: %s", sub.Title))
	}
	if sub.Description != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", sub.Description))
	}
	parts = append(parts, fmt.Sprintf("Handler: %s", sub.Handler))
	if sub.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %ds", sub.Timeout))
	}
	if sub.Prompt != "" {
		parts = append(parts, fmt.Sprintf("Custom prompt: %s", sub.Prompt))
	}
	return strings.Join(parts, "\n")
}

func timing(rec *state.Record, substepID string) string {
	var parts []string
	attempts := 0
	for _, e := range rec.Timings {
		if e.Substep != substepID {
			continue
		}
		attempts++
		if e.Duration != "" {
			parts = append(parts, fmt.Sprintf("attempt %d started %s, duration %s",
				attempts, e.Start.Format("15:04:05"), e.Duration))
		} else {
			parts = append(parts, fmt.Sprintf("attempt %d started %s (did not complete)",
				attempts, e.Start.Format("15:04:05")))
		}
	}
	if len(parts) == 0 {
		return "(no timing recorded)"
	}
	return strings.Join(parts, "\n")
}

func business(b state.Business) string {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "(unavailable)"
	}
	return string(data)
}
