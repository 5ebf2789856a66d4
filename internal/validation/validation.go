// Package validation lints rendered website templates with cfn-lint-go.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/template"
)

// Finding is one cfn-lint match attributed to a template resource.
type Finding struct {
	Rule     string `json:"rule"`
	Level    string `json:"level"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message"`
}

func (f Finding) String() string {
	if f.Resource == "" {
		return fmt.Sprintf("%s: %s", f.Rule, f.Message)
	}
	return fmt.Sprintf("%s: %s: %s", f.Rule, f.Resource, f.Message)
}

// Report groups findings by severity. Passed is false only when there is
// at least one error.
type Report struct {
	Passed   bool      `json:"passed"`
	Findings []Finding `json:"findings"`
	Errors   []string  `json:"errors"`
	Warnings []string  `json:"warnings"`
}

// Options configures linting.
type Options struct {
	// Ignore lists cfn-lint rule IDs to drop from the report.
	Ignore []string
}

// LintTemplate writes tmpl to a scratch directory and lints it.
func LintTemplate(tmpl *wetwire.Template, opts ...Options) (*Report, error) {
	data, err := template.ToJSON(tmpl)
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}

	dir, err := os.MkdirTemp("", "wetwire-site-lint-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "template.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return LintFile(path, opts...)
}

// LintFile lints a template already on disk.
func LintFile(path string, opts ...Options) (*Report, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	matches, err := lint.New(lint.Options{}).LintFile(path)
	if err != nil {
		return nil, fmt.Errorf("cfn-lint %s: %w", path, err)
	}

	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	return newReport(matches, o.Ignore), nil
}

func newReport(matches []lint.Match, ignore []string) *Report {
	skip := make(map[string]bool, len(ignore))
	for _, id := range ignore {
		skip[id] = true
	}

	r := &Report{Findings: []Finding{}, Errors: []string{}, Warnings: []string{}}
	for _, m := range matches {
		if skip[m.Rule.ID] {
			continue
		}
		f := Finding{
			Rule:     m.Rule.ID,
			Level:    m.Level,
			Resource: resourceOf(m.Location.Path),
			Message:  m.Message,
		}
		r.Findings = append(r.Findings, f)
		switch f.Level {
		case "Error":
			r.Errors = append(r.Errors, f.String())
		case "Warning":
			r.Warnings = append(r.Warnings, f.String())
		}
	}
	r.Passed = len(r.Errors) == 0
	return r
}

// resourceOf returns the logical ID of a match under Resources, or the
// joined path for matches elsewhere in the template.
func resourceOf(path []any) string {
	if len(path) >= 2 && path[0] == "Resources" {
		return fmt.Sprint(path[1])
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, "/")
}
