package dispatch

import (
	"testing"
)

func TestExpandVars_Simple(t *testing.T) {
	vars := map[string]string{"NAME": "Acme"}
	got := ExpandVars("brand is $NAME", vars)
	if got != "brand is Acme" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandVars_Brace(t *testing.T) {
	vars := map[string]string{"SLUG": "acme"}
	got := ExpandVars("${SLUG}_site", vars)
	if got != "acme_site" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandVars_EnvFallback(t *testing.T) {
	t.Setenv("BLOCKS_TEST_VAR_XYZ", "from-env")

	vars := map[string]string{"NAME": "n"}
	got := ExpandVars("$BLOCKS_TEST_VAR_XYZ", vars)
	if got != "from-env" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandVars_PrefixedKey(t *testing.T) {
	t.Setenv("BLOCKS_SLUG", "from-env")

	got := ExpandVars("--name $BLOCKS_SLUG", map[string]string{"SLUG": "acme"})
	if got != "--name acme" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandVars_MissingEmpty(t *testing.T) {
	got := ExpandVars("$TOTALLY_UNKNOWN_VAR_12345", map[string]string{})
	if got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestInputPrompt(t *testing.T) {
	in := Input{
		UserID:   "u1",
		Substep:  substep("names"),
		Business: businessFixture(),
	}
	got := in.Prompt("Name a business for: $IDEA ($AUDIENCE)")
	if got != "Name a business for: meal kits (busy parents)" {
		t.Fatalf("fallback prompt = %q", got)
	}

	in.Substep.Prompt = "Brand $NAME at $DOMAIN as $SLUG"
	got = in.Prompt("ignored")
	if got != "Brand Plate Co at plate.co as plate-co" {
		t.Fatalf("custom prompt = %q", got)
	}
}

func TestEnvRefs(t *testing.T) {
	vars := map[string]string{"IDEA": "x", "SLUG": "acme"}
	tests := []struct {
		in, want string
	}{
		{`echo "$IDEA"`, `echo "${BLOCKS_IDEA}"`},
		{`cd ${SLUG}_site`, `cd ${BLOCKS_SLUG}_site`},
		{`echo $BLOCKS_SLUG $HOME $(pwd)`, `echo $BLOCKS_SLUG $HOME $(pwd)`},
		{`echo $$ $1`, `echo $$ $1`},
	}
	for _, tt := range tests {
		if got := EnvRefs(tt.in, vars); got != tt.want {
			t.Errorf("EnvRefs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
