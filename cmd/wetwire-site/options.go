package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/config"
	"github.com/lex00/wetwire-site-go/internal/export"
	"github.com/lex00/wetwire-site-go/internal/logging"
	"github.com/lex00/wetwire-site-go/internal/provider/synth"
	"github.com/lex00/wetwire-site-go/internal/template"
	"github.com/lex00/wetwire-site-go/internal/topology"
)

// stageEnv supplies the environment when the config file leaves it unset.
const stageEnv = "WETWIRE_SITE_STAGE"

type rootOptions struct {
	configPath string
	overrides  []string
	verbose    bool
}

func (o *rootOptions) logger(w io.Writer) *zap.Logger {
	return logging.New(w, o.verbose)
}

// resolve loads the config file, applies the stage variable and -c
// overrides, and resolves the result. Relative data paths are taken from
// the directory holding the config file.
func (o *rootOptions) resolve() (*config.Resolved, error) {
	raw, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if raw.Environment == "" {
		raw.Environment = os.Getenv(stageEnv)
	}

	overrides, err := config.ParseOverrides(o.overrides)
	if err != nil {
		return nil, err
	}
	if err := raw.Apply(overrides); err != nil {
		return nil, err
	}

	base := filepath.Dir(o.configPath)
	raw.PublicDataPath = relativeTo(base, raw.PublicDataPath)
	raw.PrivateDataPath = relativeTo(base, raw.PrivateDataPath)

	return config.Resolve(raw)
}

func relativeTo(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// synthesize builds the topology against the synthesizing provider and
// renders the template with its outputs.
func synthesize(ctx context.Context, cfg *config.Resolved, log *zap.Logger) (*wetwire.Template, *topology.Topology, error) {
	topo, _, err := topology.Build(ctx, cfg, synth.New(), topology.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	outputs, err := export.Export(topo)
	if err != nil {
		return nil, nil, err
	}
	tmpl, err := template.Render(topo, outputs)
	if err != nil {
		return nil, nil, err
	}
	return tmpl, topo, nil
}

func encodeTemplate(tmpl *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s (use 'json' or 'yaml')", format)
	}
}

// errorList flattens errors combined with errors.Join.
func errorList(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorList(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

// isConfigError reports whether err is bad operator input.
func isConfigError(err error) bool {
	var cfgErr *config.Error
	return errors.As(err, &cfgErr)
}
