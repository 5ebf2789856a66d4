// Package differ compares a previously deployed website template with a
// freshly rendered one.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/template"
)

// replacementProps lists the properties whose change replaces the resource.
var replacementProps = map[string][]string{
	template.TypeBucket:      {"BucketName"},
	template.TypeCertificate: {"DomainName", "SubjectAlternativeNames", "ValidationMethod"},
	template.TypeRecordSet:   {"HostedZoneId", "Name", "Type"},
}

// Result holds the differences between two templates.
type Result struct {
	Diff    wetwire.TemplateDiff
	Summary wetwire.DiffSummary
}

// Compare reports what changes when the stack moves from old to updated.
// Values are compared after a JSON round trip so that rendered and loaded
// templates compare equal.
func Compare(old, updated *wetwire.Template) (*Result, error) {
	before, err := canonical(old.Resources)
	if err != nil {
		return nil, err
	}
	after, err := canonical(updated.Resources)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for name, def := range after {
		if _, ok := before[name]; !ok {
			result.Diff.Added = append(result.Diff.Added, wetwire.DiffEntry{Resource: name, Type: def.Type})
		}
	}
	for name, def := range before {
		next, ok := after[name]
		if !ok {
			result.Diff.Removed = append(result.Diff.Removed, wetwire.DiffEntry{
				Resource: name,
				Type:     def.Type,
				Retained: def.DeletionPolicy == "Retain",
			})
			continue
		}
		if entry, changed := compareResources(name, def, next); changed {
			result.Diff.Modified = append(result.Diff.Modified, entry)
		}
	}

	result.Diff.Outputs = compareOutputs(old.Outputs, updated.Outputs)

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = wetwire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	for _, e := range result.Diff.Modified {
		if e.Replacement {
			result.Summary.Replaced++
		}
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified
	return result, nil
}

// LoadTemplate reads a JSON or YAML template file.
func LoadTemplate(path string) (*wetwire.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmpl wetwire.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("failed to parse %s as JSON or YAML: %w", path, err)
		}
	}
	return &tmpl, nil
}

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

func compareResources(name string, before, after wetwire.ResourceDef) (wetwire.DiffEntry, bool) {
	entry := wetwire.DiffEntry{Resource: name, Type: after.Type}

	if before.Type != after.Type {
		entry.Changes = append(entry.Changes, fmt.Sprintf("Type changed: %s -> %s", before.Type, after.Type))
		entry.Replacement = true
	}

	props := compareValues("", before.Properties, after.Properties)
	entry.Changes = append(entry.Changes, props...)
	for _, prop := range replacementProps[after.Type] {
		if !reflect.DeepEqual(before.Properties[prop], after.Properties[prop]) {
			entry.Replacement = true
		}
	}

	if !reflect.DeepEqual(before.DependsOn, after.DependsOn) {
		entry.Changes = append(entry.Changes, "DependsOn changed")
	}
	if before.DeletionPolicy != after.DeletionPolicy {
		entry.Changes = append(entry.Changes,
			fmt.Sprintf("DeletionPolicy changed: %s -> %s", deletionPolicy(before.DeletionPolicy), deletionPolicy(after.DeletionPolicy)))
	}
	if !reflect.DeepEqual(before.Metadata, after.Metadata) {
		entry.Changes = append(entry.Changes, "Metadata changed")
	}

	return entry, len(entry.Changes) > 0
}

// compareValues walks nested maps and reports changed leaves by path.
func compareValues(prefix string, before, after map[string]any) []string {
	var changes []string
	for key, next := range after {
		path := joinPath(prefix, key)
		prev, ok := before[key]
		if !ok {
			changes = append(changes, path+" added")
			continue
		}
		prevMap, prevIsMap := prev.(map[string]any)
		nextMap, nextIsMap := next.(map[string]any)
		if prevIsMap && nextIsMap {
			changes = append(changes, compareValues(path, prevMap, nextMap)...)
			continue
		}
		if !reflect.DeepEqual(prev, next) {
			changes = append(changes, path+" modified")
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changes = append(changes, joinPath(prefix, key)+" removed")
		}
	}
	sort.Strings(changes)
	return changes
}

func compareOutputs(before, after map[string]wetwire.Output) []string {
	var changes []string
	for key := range after {
		if _, ok := before[key]; !ok {
			changes = append(changes, key+" added")
		}
	}
	for key := range before {
		if _, ok := after[key]; !ok {
			changes = append(changes, key+" removed")
		}
	}
	sort.Strings(changes)
	return changes
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func deletionPolicy(s string) string {
	if s == "" {
		return "Delete"
	}
	return s
}

func sortEntries(entries []wetwire.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
