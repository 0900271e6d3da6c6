package ux

import (
	"fmt"
	"io"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/dispatch"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

// RenderStatus prints the full status display for one onboarding.
func RenderStatus(w io.Writer, v orchestrator.View) {
	label := func(s string) string { return boldStyle.Render(fmt.Sprintf("%-9s", s)) }

	fmt.Fprintf(w, "%s %s\n", label("User:"), v.UserID)
	fmt.Fprintf(w, "%s %s %s\n", label("Run:"), v.RunID, dimStyle.Render(fmt.Sprintf("(v%d)", v.Version)))
	switch {
	case v.Finished:
		fmt.Fprintf(w, "%s %s\n", label("State:"), boldStyle.Inherit(greenStyle).Render("completed"))
	case v.Error != "":
		fmt.Fprintf(w, "%s %s\n", label("State:"), redStyle.Render(fmt.Sprintf("%s at %s: %s", v.Status, v.Error, v.ErrorMessage)))
	default:
		next := v.Next
		if next == "" {
			next = "-"
		}
		fmt.Fprintf(w, "%s %s, next %s\n", label("State:"), v.Status, next)
	}

	fmt.Fprintf(w, "\n%s\n", boldStyle.Render("Steps:"))
	for i, s := range v.Steps {
		marker := "  "
		if v.LastStep == s.ID && !v.Finished {
			marker = yellowStyle.Render("→") + " "
		}
		tag := ""
		switch {
		case s.Completed:
			tag = greenStyle.Render("done")
		case s.Deferred:
			tag = yellowStyle.Render("deferred")
		case !s.CanExpand:
			tag = dimStyle.Render("locked")
		}
		fmt.Fprintf(w, "  %s%s  %-14s %s\n", marker, dimStyle.Render(fmt.Sprint(i+1)), s.Title, tag)
		for _, sub := range s.Substeps {
			dur := ""
			if sub.Duration != "" {
				dur = dimStyle.Render("(" + sub.Duration + ")")
			}
			fmt.Fprintf(w, "       %s %-16s %s\n", statusGlyph(sub.Status), sub.Title, dur)
		}
	}

	renderBusiness(w, v.Business)
	fmt.Fprintln(w)
}

func renderBusiness(w io.Writer, b state.Business) {
	rows := []struct{ k, v string }{
		{"Idea", b.Idea},
		{"Name", b.Name},
		{"Domain", b.Domain},
		{"Logo", b.LogoURL},
		{"Site", b.SiteURL},
		{"Preview", b.PreviewURL},
	}
	if b.Stripe != nil {
		rows = append(rows, struct{ k, v string }{"Stripe", b.Stripe.OnboardingURL})
	}

	fmt.Fprintf(w, "\n%s\n", boldStyle.Render("Business:"))
	printed := 0
	for _, r := range rows {
		if r.v == "" {
			continue
		}
		fmt.Fprintf(w, "  %-8s %s\n", r.k, r.v)
		printed++
	}
	for _, p := range b.Plans {
		fmt.Fprintf(w, "  %-8s %s %.2f %s/%s\n", "Plan", p.Name, p.Price, p.Currency, p.Interval)
		printed++
	}
	if printed == 0 {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render("(nothing generated yet)"))
	}
}

// DryRun prints what a run would do without calling any collaborator.
func DryRun(w io.Writer, cfg *config.Config, v orchestrator.View) {
	fmt.Fprintf(w, "%s %s (%d steps)\n\n", boldStyle.Render("Pipeline:"), cfg.Name, len(cfg.Steps))
	for i, s := range v.Steps {
		step, _ := cfg.Step(s.ID)
		deps := ""
		if len(step.DependsOn) > 0 {
			deps = dimStyle.Render(fmt.Sprintf(" after %v", step.DependsOn))
		}
		flag := ""
		if step.Deferrable {
			flag = dimStyle.Render(" [deferrable]")
		}
		fmt.Fprintf(w, "%s%s%s\n", boldStyle.Render(fmt.Sprintf("%d. %s", i+1, s.Title)), deps, flag)
		for _, sv := range s.Substeps {
			sub, _ := cfg.Substep(sv.ID)
			action := cyanStyle.Render("would run")
			switch {
			case s.Deferred:
				action = yellowStyle.Render("skip (deferred)")
			case sv.Status == state.SubstepCompleted:
				action = greenStyle.Render("done")
			case sv.Status == state.SubstepError:
				action = redStyle.Render("failed, needs retry")
			}
			fmt.Fprintf(w, "   %-14s %-18s %s\n", sv.ID, action, dimStyle.Render(dispatch.Describe(*sub)))
		}
	}
	fmt.Fprintln(w)
}
