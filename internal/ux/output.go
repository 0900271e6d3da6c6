package ux

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
	"github.com/createdbygabi/Blocks-sub001/internal/orchestrator"
	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	cyanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

const rule = "══════════════════════════════════════"

// Printer writes the live run timeline.
type Printer struct {
	Config *config.Config
	W      io.Writer

	mu  sync.Mutex
	now func() time.Time
}

func NewPrinter(cfg *config.Config, w io.Writer) *Printer {
	return &Printer{Config: cfg, W: w, now: time.Now}
}

func (p *Printer) timestamp() string {
	return dimStyle.Render("[" + p.now().Format("15:04:05") + "]")
}

// StepHeader prints a timestamped step header.
func (p *Printer) StepHeader(index, total int, step config.Step) {
	desc := ""
	if step.Description != "" {
		desc = " · " + step.Description
	}
	ts := p.timestamp()
	fmt.Fprintf(p.W, "\n%s %s\n", ts, cyanStyle.Render(rule))
	fmt.Fprintf(p.W, "%s  %s\n", ts, boldStyle.Render(fmt.Sprintf("Step %d/%d: %s%s", index+1, total, step.Title, desc)))
	fmt.Fprintf(p.W, "%s %s\n", ts, cyanStyle.Render(rule))
}

// SubstepStart prints the loading line of a substep.
func (p *Printer) SubstepStart(sub config.Substep) {
	text := sub.LoadingText
	if text == "" {
		text = sub.Title + "..."
	}
	fmt.Fprintf(p.W, "%s  %s\n", p.timestamp(), dimStyle.Render("… "+text))
}

// SubstepComplete prints a substep completion line.
func (p *Printer) SubstepComplete(sub config.Substep, duration string) {
	if duration != "" {
		duration = " (" + duration + ")"
	}
	fmt.Fprintf(p.W, "%s  %s\n", p.timestamp(), greenStyle.Render("✓ "+sub.Title+duration))
}

// SubstepFail prints a substep failure line.
func (p *Printer) SubstepFail(sub config.Substep, errMsg string) {
	fmt.Fprintf(p.W, "%s  %s\n", p.timestamp(), redStyle.Render(fmt.Sprintf("✗ %s failed: %s", sub.Title, errMsg)))
}

// StepDeferred prints a deferral line.
func (p *Printer) StepDeferred(step config.Step) {
	fmt.Fprintf(p.W, "%s  %s\n", p.timestamp(), yellowStyle.Render("– "+step.Title+" deferred"))
}

// ResumeHint prints the command that retries a failed substep.
func (p *Printer) ResumeHint(userID, substepID string) {
	fmt.Fprintf(p.W, "\n%s blocks run %s --retry %s\n", yellowStyle.Render("Retry:"), userID, substepID)
}

// Success prints a final success message.
func (p *Printer) Success(completed int) {
	fmt.Fprintf(p.W, "\n%s  %s\n\n", p.timestamp(),
		boldStyle.Inherit(greenStyle).Render(fmt.Sprintf("══ All %d steps done ══", completed)))
}

// Progress renders one orchestrator change. It is safe to install as the
// orchestrator's progress callback.
func (p *Printer) Progress(c orchestrator.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch c.Event {
	case orchestrator.EventStart:
		sub, ok := p.Config.Substep(c.SubstepID)
		if !ok {
			return
		}
		if step, ok := p.Config.Step(c.StepID); ok && len(step.Substeps) > 0 && step.Substeps[0].ID == c.SubstepID {
			p.StepHeader(p.Config.StepIndex(c.StepID), len(p.Config.Steps), *step)
		}
		p.SubstepStart(*sub)
	case orchestrator.EventComplete:
		if sub, ok := p.Config.Substep(c.SubstepID); ok {
			p.SubstepComplete(*sub, c.Duration)
		}
	case orchestrator.EventFail:
		if sub, ok := p.Config.Substep(c.SubstepID); ok {
			p.SubstepFail(*sub, c.Error)
		}
	case orchestrator.EventDefer:
		if step, ok := p.Config.Step(c.StepID); ok {
			p.StepDeferred(*step)
		}
	}
}

// statusGlyph renders a substep status.
func statusGlyph(s state.SubstepStatus) string {
	switch s {
	case state.SubstepCompleted:
		return greenStyle.Render("✓")
	case state.SubstepLoading:
		return yellowStyle.Render("…")
	case state.SubstepError:
		return redStyle.Render("✗")
	default:
		return dimStyle.Render("·")
	}
}
