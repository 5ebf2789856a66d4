package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

//go:embed schema/site.schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("site.schema.json", schemaJSON)
	})
	return compiledSchema, schemaErr
}

// Load reads a YAML or JSON configuration file.
func Load(path string) (RawConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(content)
}

// Parse validates content against the configuration schema and decodes it.
func Parse(content []byte) (RawConfig, error) {
	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return RawConfig{}, fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return RawConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if document == nil {
		return RawConfig{}, nil
	}

	sch, err := loadSchema()
	if err != nil {
		return RawConfig{}, fmt.Errorf("loading config schema: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return RawConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	var raw RawConfig
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return RawConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return raw, nil
}

// Apply sets fields from key=value overrides, keyed by the config file names.
func (c *RawConfig) Apply(overrides map[string]string) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overrides[key]
		switch key {
		case "appName":
			c.AppName = value
		case "domainName":
			c.DomainName = value
		case "environment":
			c.Environment = value
		case "hasPrivateData":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fieldError(key, "%q is not a boolean", value)
			}
			c.HasPrivateData = &b
		case "publicBucketName":
			c.PublicBucketName = value
		case "privateBucketName":
			c.PrivateBucketName = value
		case "loggingBucketName":
			c.LoggingBucketName = value
		case "publicDataPath", "publicWebsitePath":
			c.PublicDataPath = value
		case "privateDataPath", "privateWebsitePath":
			c.PrivateDataPath = value
		case "generateWildcardCertificate":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fieldError(key, "%q is not a boolean", value)
			}
			c.GenerateWildcardCertificate = b
		case "githubOwner":
			c.GithubOwner = value
		case "githubRepo":
			c.GithubRepo = value
		case "githubBranch":
			c.GithubBranch = value
		case "hostedZoneId":
			c.HostedZoneID = value
		default:
			return fieldError(key, "is not a recognized option")
		}
	}
	return nil
}

// ParseOverrides splits "key=value" pairs.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q (want key=value)", pair)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}
