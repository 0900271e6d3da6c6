package dispatch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/createdbygabi/Blocks-sub001/internal/config"
)

// GateAnswer is the operator's decision at a deferral gate.
type GateAnswer int

const (
	GateRun GateAnswer = iota
	GateDefer
	GateStop
)

// AskDeferral prompts before a deferrable step runs. Enter or y runs it,
// d defers it, q stops the run. Auto answers GateRun without prompting.
func AskDeferral(ctx context.Context, in io.Reader, out io.Writer, step config.Step, auto bool) (GateAnswer, error) {
	if auto || !step.Deferrable {
		return GateRun, nil
	}

	if step.Description != "" {
		fmt.Fprintf(out, "\n  %s\n\n", step.Description)
	}
	fmt.Fprintf(out, "  %s [y to run / d to defer / q to stop]: ", step.Title)

	type readResult struct {
		input string
		err   error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- readResult{input: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		return GateStop, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return GateStop, r.err
		}
		switch strings.ToLower(r.input) {
		case "", "y", "yes":
			return GateRun, nil
		case "d", "defer":
			return GateDefer, nil
		default:
			return GateStop, nil
		}
	}
}
