// Package wetwire_site derives the cloud topology of a static website.
//
// A small declarative configuration (domain, bucket names, environment and
// feature flags) is resolved, planned into a dependency graph of resources
// and rendered as a CloudFormation template:
//
//	domainName: example.com
//	publicDataPath: ./site
//	githubRepo: website
//	githubBranch: main
//
//	wetwire-site build --config site.yaml
//
// This package holds the wire contracts printed by the wetwire-site CLI.
package wetwire_site

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Metadata                 map[string]any         `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
	Rules                    map[string]Rule        `json:"Rules,omitempty" yaml:"Rules,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// Rule is a template rule. CloudFormation refuses to create the stack
// when any assertion is false.
type Rule struct {
	Assertions []Assertion `json:"Assertions" yaml:"Assertions"`
}

// Assertion is one condition of a Rule.
type Assertion struct {
	Assert            any    `json:"Assert" yaml:"Assert"`
	AssertDescription string `json:"AssertDescription,omitempty" yaml:"AssertDescription,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
	Metadata            map[string]any `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names a stack output for cross-stack consumption.
type Export struct {
	Name string `json:"Name" yaml:"Name"`
}

// PlanResult is the JSON output from `wetwire-site plan`.
type PlanResult struct {
	Success bool              `json:"success"`
	Nodes   []PlanNode        `json:"nodes"`
	Outputs map[string]string `json:"outputs,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
}

// PlanNode is a single resource in creation order.
type PlanNode struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	State     string   `json:"state"`
	DependsOn []string `json:"dependsOn,omitempty"`

	// Attributes are the values the dry run assigned to the node.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ValidateResult is the JSON output from `wetwire-site validate`.
type ValidateResult struct {
	Success     bool                 `json:"success"`
	Nodes       int                  `json:"nodes"`
	Errors      []string             `json:"errors,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Suggestions []OptimizeSuggestion `json:"suggestions,omitempty"`
}

// DiffResult is the JSON output from `wetwire-site diff`.
type DiffResult struct {
	Diff    TemplateDiff `json:"diff"`
	Summary DiffSummary  `json:"summary"`
}

// TemplateDiff lists resource changes between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
	Outputs  []string    `json:"outputs,omitempty"`
}

// DiffEntry is a single changed resource.
type DiffEntry struct {
	Resource    string   `json:"resource"`
	Type        string   `json:"type"`
	Changes     []string `json:"changes,omitempty"`
	Replacement bool     `json:"replacement,omitempty"`
	// Retained is set on removed resources CloudFormation keeps on deletion.
	Retained bool `json:"retained,omitempty"`
}

// DiffSummary counts the changes.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Replaced int `json:"replaced"`
	Total    int `json:"total"`
}

// OptimizeSuggestion is an advisory finding on a rendered resource.
type OptimizeSuggestion struct {
	Rule       string `json:"rule"`
	Resource   string `json:"resource"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Title      string `json:"title"`
	Suggestion string `json:"suggestion"`
}

// OptimizeSummary counts suggestions per category.
type OptimizeSummary struct {
	Security    int `json:"security"`
	Cost        int `json:"cost"`
	Performance int `json:"performance"`
	Reliability int `json:"reliability"`
	Total       int `json:"total"`
}
