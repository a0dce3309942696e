package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLanguages_ContainsPlainText(t *testing.T) {
	found := false
	for _, l := range DefaultLanguages {
		if l == PlainText {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q in default languages", PlainText)
	}
}

func TestLanguages_MatchIsCaseInsensitivePrefix(t *testing.T) {
	l := DefaultLanguageList()
	tests := []struct {
		hint string
		want string
		ok   bool
	}{
		{"py", "Python", true},
		{"Py", "Python", true},
		{"rust", "Rust", true},
		{"ts", "", false},
		{"typescript", "TypeScript", true},
		{"objective", "Objective-C", true},
		{"plain", "Plain Text", true},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := l.Match(tt.hint)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Match(%q): expected (%q, %v), got (%q, %v)", tt.hint, tt.want, tt.ok, got, ok)
		}
	}
}

func TestNewLanguages_Validation(t *testing.T) {
	if _, err := NewLanguages(nil); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := NewLanguages([]string{"Go", "  "}); err == nil {
		t.Error("expected error for blank label")
	}
}

func TestLoadLanguages_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "langs.yaml")
	content := "languages:\n  - Zig\n  - Go\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l, err := LoadLanguages(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := l.Labels(); len(got) != 2 || got[0] != "Zig" || got[1] != "Go" {
		t.Errorf("unexpected labels: %v", got)
	}
	if got, ok := l.Match("zi"); !ok || got != "Zig" {
		t.Errorf("expected Zig, got %q (%v)", got, ok)
	}
	if _, ok := l.Match("py"); ok {
		t.Error("expected no match for a label outside the file")
	}
}

func TestLoadLanguages_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLanguages(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("languages: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadLanguages(empty); err == nil {
		t.Error("expected error for empty language list")
	}
}

func TestRenderer_CustomLanguages(t *testing.T) {
	l, err := NewLanguages([]string{"Zig"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := New(l, nil)
	if r.Languages() != l {
		t.Error("expected renderer to use the supplied languages")
	}
}
