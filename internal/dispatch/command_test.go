package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/createdbygabi/Blocks-sub001/internal/state"
)

func TestRunCommand_Success(t *testing.T) {
	var out bytes.Buffer
	result, err := RunCommand(context.Background(), "echo hello", t.TempDir(), Input{Substep: substep("deploy")}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d", result.ExitCode)
	}
	if !strings.Contains(result.Output, "hello") || !strings.Contains(out.String(), "hello") {
		t.Fatalf("output = %q, tee = %q", result.Output, out.String())
	}
}

func TestRunCommand_Failure(t *testing.T) {
	result, err := RunCommand(context.Background(), "exit 3", t.TempDir(), Input{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestRunCommand_VarExpansionAndEnv(t *testing.T) {
	in := Input{Substep: substep("deploy"), Business: businessFixture()}
	result, err := RunCommand(context.Background(), "echo $SLUG $BLOCKS_DOMAIN", t.TempDir(), in, nil)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(result.Output) != "plate-co plate.co" {
		t.Fatalf("output = %q", result.Output)
	}
}

func TestRunCommand_ValuesAreNotShellSyntax(t *testing.T) {
	in := Input{Substep: substep("deploy"), Business: state.Business{
		Idea:     `x"; echo INJECTED; echo "`,
		Audience: "$(echo INJECTED)",
		Name:     "a;b`echo INJECTED`",
	}}
	result, err := RunCommand(context.Background(), `echo "idea: $IDEA"; echo $AUDIENCE; echo "${NAME}"`, t.TempDir(), in, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "idea: x\"; echo INJECTED; echo \"\n$(echo INJECTED)\na;b`echo INJECTED`\n"
	if result.Output != want {
		t.Fatalf("output = %q, want %q", result.Output, want)
	}
}

func TestRunCommand_Stderr(t *testing.T) {
	result, err := RunCommand(context.Background(), "echo err >&2", t.TempDir(), Input{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Output, "err") {
		t.Fatalf("output = %q, expected stderr captured", result.Output)
	}
}

func TestExitCode_Nil(t *testing.T) {
	code, err := exitCode(nil)
	if code != 0 || err != nil {
		t.Fatalf("code=%d, err=%v", code, err)
	}
}

func TestExitCode_OtherError(t *testing.T) {
	code, err := exitCode(fmt.Errorf("some error"))
	if code != 0 || err == nil {
		t.Fatalf("code=%d, err=%v", code, err)
	}
}

func TestExitCode_ExitError(t *testing.T) {
	runErr := exec.Command("bash", "-c", "exit 42").Run()
	code, err := exitCode(runErr)
	if code != 42 || err != nil {
		t.Fatalf("code=%d, err=%v", code, err)
	}
}
