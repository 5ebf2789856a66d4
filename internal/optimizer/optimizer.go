// Package optimizer provides advisory suggestions for a rendered website
// template. It looks at security, cost, performance and reliability.
package optimizer

import (
	"encoding/json"
	"sort"

	wetwire "github.com/lex00/wetwire-site-go"
)

// Categories.
const (
	CategorySecurity    = "security"
	CategoryCost        = "cost"
	CategoryPerformance = "performance"
	CategoryReliability = "reliability"
)

// Options configures the optimizer.
type Options struct {
	// Category filters suggestions. Empty or "all" keeps every category.
	Category string
}

// Result contains optimization suggestions.
type Result struct {
	Suggestions []wetwire.OptimizeSuggestion
	Summary     wetwire.OptimizeSummary
}

// Optimize applies every rule to the resources of tmpl. Suggestions are
// ordered by resource then rule.
func Optimize(tmpl *wetwire.Template, opts Options) (*Result, error) {
	resources, err := canonical(tmpl.Resources)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		result.Suggestions = append(result.Suggestions, analyzeResource(name, resources[name], opts.Category)...)
	}
	result.Summary = calculateSummary(result.Suggestions)
	return result, nil
}

func analyzeResource(name string, def wetwire.ResourceDef, category string) []wetwire.OptimizeSuggestion {
	var suggestions []wetwire.OptimizeSuggestion
	for _, rule := range getRulesForType(def.Type) {
		if category != "" && category != "all" && rule.Category != category {
			continue
		}
		if !rule.Check(def.Properties) {
			continue
		}
		suggestions = append(suggestions, wetwire.OptimizeSuggestion{
			Rule:       rule.ID,
			Resource:   name,
			Category:   rule.Category,
			Severity:   rule.Severity,
			Title:      rule.Title,
			Suggestion: rule.Suggestion,
		})
	}
	return suggestions
}

func calculateSummary(suggestions []wetwire.OptimizeSuggestion) wetwire.OptimizeSummary {
	summary := wetwire.OptimizeSummary{}
	for _, s := range suggestions {
		switch s.Category {
		case CategorySecurity:
			summary.Security++
		case CategoryCost:
			summary.Cost++
		case CategoryPerformance:
			summary.Performance++
		case CategoryReliability:
			summary.Reliability++
		}
		summary.Total++
	}
	return summary
}

// Rule is an advisory check. Check reports true when the suggestion applies.
type Rule struct {
	ID         string
	Category   string
	Severity   string
	Title      string
	Suggestion string
	Check      func(props map[string]any) bool
}

// canonical turns typed property values into plain JSON shapes.
func canonical(resources map[string]wetwire.ResourceDef) (map[string]wetwire.ResourceDef, error) {
	data, err := json.Marshal(resources)
	if err != nil {
		return nil, err
	}
	out := make(map[string]wetwire.ResourceDef)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
