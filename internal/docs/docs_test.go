package docs

import (
	"strings"
	"testing"
)

func TestAll_ReturnsTopics(t *testing.T) {
	topics := All()
	if len(topics) == 0 {
		t.Fatal("All() returned no topics")
	}
	if topics[0].Name != "quickstart" {
		t.Errorf("first topic = %q, want %q", topics[0].Name, "quickstart")
	}
}

func TestAll_NoDuplicateNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, topic := range All() {
		if seen[topic.Name] {
			t.Errorf("duplicate topic name: %q", topic.Name)
		}
		seen[topic.Name] = true
	}
}

func TestAll_AllFieldsPopulated(t *testing.T) {
	for _, topic := range All() {
		if topic.Name == "" {
			t.Error("topic has empty Name")
		}
		if topic.Title == "" {
			t.Errorf("topic %q has empty Title", topic.Name)
		}
		if topic.Summary == "" {
			t.Errorf("topic %q has empty Summary", topic.Name)
		}
		if !strings.HasPrefix(topic.Content, topic.Title) {
			t.Errorf("topic %q content should open with its title", topic.Name)
		}
	}
}

func TestGet_Found(t *testing.T) {
	topic, err := Get("lifecycle")
	if err != nil {
		t.Fatalf("Get(lifecycle) error: %v", err)
	}
	if topic.Name != "lifecycle" {
		t.Errorf("Name = %q, want %q", topic.Name, "lifecycle")
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := Get("nonexistent")
	if err == nil || !strings.Contains(err.Error(), "blocks docs") {
		t.Fatalf("Get(nonexistent) err = %v", err)
	}
}

func TestGet_CaseAndPrefix(t *testing.T) {
	for _, name := range []string{"API", "life", " Pipe "} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) error: %v", name, err)
		}
	}
	topic, err := Get("life")
	if err != nil || topic.Name != "lifecycle" {
		t.Fatalf("Get(life) = %q, %v", topic.Name, err)
	}
}

func TestGet_AmbiguousPrefix(t *testing.T) {
	_, err := Get("s")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("Get(s) err = %v", err)
	}
	if !strings.Contains(err.Error(), "settings") || !strings.Contains(err.Error(), "storage") {
		t.Fatalf("ambiguity should list candidates: %v", err)
	}
}
