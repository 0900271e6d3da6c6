package fenced

import (
	"errors"
	"testing"
)

func TestParse_SingleBlock(t *testing.T) {
	input := "```json\n{\"a\": 1}\n```\n"
	blocks := Parse(input)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Lang != "json" {
		t.Fatalf("expected lang json, got %q", blocks[0].Lang)
	}
	if blocks[0].Content != `{"a": 1}` {
		t.Fatalf("unexpected content: %q", blocks[0].Content)
	}
}

func TestParse_FileAnnotation(t *testing.T) {
	input := "Here you go:\n\n```html file=index.html\n<h1>Hi</h1>\n```\n"
	blocks := Parse(input)
	if len(blocks) != 1 || blocks[0].Path != "index.html" || blocks[0].Lang != "html" {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestParse_NoLanguageTag(t *testing.T) {
	blocks := Parse("```\ncontent here\n```\n")
	if len(blocks) != 1 || blocks[0].Lang != "" || blocks[0].Content != "content here" {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestParse_EmptyContent(t *testing.T) {
	blocks := Parse("```yaml\n```\n")
	if len(blocks) != 1 || blocks[0].Content != "" {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestParse_UnclosedBlock_Dropped(t *testing.T) {
	blocks := Parse("```json\n{\"a\": 1}\n")
	if len(blocks) != 0 {
		t.Fatalf("expected 0 blocks for unclosed fence, got %d", len(blocks))
	}
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"raw", `{"names": ["Acme"]}`, `{"names": ["Acme"]}`},
		{"fenced", "Sure!\n```json\n[1, 2]\n```\nEnjoy.", `[1, 2]`},
		{"skips_invalid_block", "```\nnot json\n```\n```json\n{\"ok\": true}\n```", `{"ok": true}`},
		{"embedded", `Here is the plan: {"plans": []} hope it helps`, `{"plans": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSON_None(t *testing.T) {
	if _, err := JSON("I cannot help with that."); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("err = %v", err)
	}
}

func TestFirst(t *testing.T) {
	input := "```go\nfunc main() {}\n```\n```html\n<p>x</p>\n```\n"
	got, ok := First(input, "html")
	if !ok || got != "<p>x</p>" {
		t.Fatalf("First = %q, %v", got, ok)
	}
	if _, ok := First(input, "css"); ok {
		t.Fatal("no css block")
	}
}
