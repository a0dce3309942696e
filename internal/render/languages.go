package render

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlainText is the label given to code blocks that declare no language.
const PlainText = "Plain Text"

// DefaultLanguages are the code-block labels the document API accepts, in
// match priority order. The API is strict about spelling and case.
var DefaultLanguages = []string{
	"ABAP",
	"Arduino",
	"Bash",
	"BASIC",
	"C",
	"Clojure",
	"CoffeeScript",
	"C++",
	"C#",
	"CSS",
	"Dart",
	"Diff",
	"Docker",
	"Elixir",
	"Elm",
	"Erlang",
	"Flow",
	"Fortran",
	"F#",
	"Gherkin",
	"GLSL",
	"Go",
	"GraphQL",
	"Groovy",
	"Haskell",
	"HTML",
	"Java",
	"JavaScript",
	"JSON",
	"Kotlin",
	"LaTeX",
	"Less",
	"Lisp",
	"LiveScript",
	"Lua",
	"Makefile",
	"Markdown",
	"Markup",
	"MATLAB",
	"Nix",
	"Objective-C",
	"OCaml",
	"Pascal",
	"Perl",
	"PHP",
	"Plain Text",
	"PowerShell",
	"Prolog",
	"Python",
	"R",
	"Reason",
	"Ruby",
	"Rust",
	"Sass",
	"Scala",
	"Scheme",
	"Scss",
	"Shell",
	"SQL",
	"Swift",
	"TypeScript",
	"VB.Net",
	"Verilog",
	"VHDL",
	"Visual Basic",
	"WebAssembly",
	"XML",
	"YAML",
}

// Languages is an ordered allow-list of code labels.
type Languages struct {
	labels []string
	lower  []string
}

// NewLanguages builds an allow-list. Order is match priority.
func NewLanguages(labels []string) (*Languages, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("language list is empty")
	}
	l := &Languages{
		labels: make([]string, 0, len(labels)),
		lower:  make([]string, 0, len(labels)),
	}
	for i, label := range labels {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("language %d is blank", i)
		}
		l.labels = append(l.labels, label)
		l.lower = append(l.lower, strings.ToLower(label))
	}
	return l, nil
}

// DefaultLanguageList returns the built-in allow-list.
func DefaultLanguageList() *Languages {
	l, _ := NewLanguages(DefaultLanguages)
	return l
}

type languagesFile struct {
	Languages []string `yaml:"languages"`
}

// LoadLanguages reads an allow-list from a YAML file of the form
//
//	languages:
//	  - Python
//	  - Go
func LoadLanguages(path string) (*Languages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read languages file: %w", err)
	}
	var f languagesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse languages file %s: %w", path, err)
	}
	l, err := NewLanguages(f.Languages)
	if err != nil {
		return nil, fmt.Errorf("languages file %s: %w", path, err)
	}
	return l, nil
}

// Match returns the first label that starts with hint, ignoring case.
func (l *Languages) Match(hint string) (string, bool) {
	if hint == "" {
		return "", false
	}
	h := strings.ToLower(hint)
	for i, lower := range l.lower {
		if strings.HasPrefix(lower, h) {
			return l.labels[i], true
		}
	}
	return "", false
}

// Labels returns a copy of the allow-list.
func (l *Languages) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}
