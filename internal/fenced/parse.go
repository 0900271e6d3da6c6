// Package fenced pulls fenced code blocks and JSON documents out of LLM
// answers.
package fenced

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Block is one fenced block from model output.
type Block struct {
	Lang    string // e.g. "json"; empty when the fence has no tag
	Path    string // from a file= annotation, if any
	Content string // content between the fences
}

var (
	ErrNoJSON = errors.New("no JSON document in model output")

	fenceOpenRe = regexp.MustCompile("^```(\\w*)\\s*(?:file=(\\S+))?")
)

// Parse extracts fenced code blocks from text in order of appearance.
// Unclosed blocks are dropped. Opening fences look like:
//
//	```json
//	```html file=index.html
//	```
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block
	var current *Block
	var buf strings.Builder

	for _, line := range lines {
		if current != nil {
			if strings.TrimSpace(line) == "```" {
				current.Content = buf.String()
				blocks = append(blocks, *current)
				current = nil
				buf.Reset()
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			continue
		}

		m := fenceOpenRe.FindStringSubmatch(strings.TrimSpace(line))
		if m != nil {
			current = &Block{Lang: strings.ToLower(m[1]), Path: m[2]}
			buf.Reset()
		}
	}

	return blocks
}

// JSON returns the JSON document in text: the whole text when it is valid
// JSON, else the first fenced block that is, else the outermost {...} or
// [...] span.
func JSON(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && gjson.Valid(trimmed) {
		return trimmed, nil
	}
	for _, b := range Parse(text) {
		c := strings.TrimSpace(b.Content)
		if c != "" && gjson.Valid(c) {
			return c, nil
		}
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(trimmed, pair[0])
		end := strings.LastIndex(trimmed, pair[1])
		if start >= 0 && end > start {
			if c := trimmed[start : end+1]; gjson.Valid(c) {
				return c, nil
			}
		}
	}
	return "", ErrNoJSON
}

// First returns the content of the first block tagged lang.
func First(text, lang string) (string, bool) {
	for _, b := range Parse(text) {
		if b.Lang == lang {
			return b.Content, true
		}
	}
	return "", false
}
