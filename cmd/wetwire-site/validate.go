package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/optimizer"
	"github.com/lex00/wetwire-site-go/internal/preflight"
	"github.com/lex00/wetwire-site-go/internal/topology"
	"github.com/lex00/wetwire-site-go/internal/validation"
)

// newBucketAPI builds the S3 client used by --check-buckets.
var newBucketAPI = func(ctx context.Context, region, endpoint string) (preflight.HeadBucketAPI, error) {
	return preflight.NewS3API(ctx, region, endpoint)
}

type validateOptions struct {
	format       string
	cfnLint      bool
	ignoreRules  []string
	checkBuckets bool
	advise       bool
	category     string
	region       string
	endpoint     string
}

// newValidateCmd creates the "validate" subcommand for checking the site config.
func newValidateCmd(opts *rootOptions) *cobra.Command {
	var vopts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the site configuration",
		Long: `Validate resolves the site configuration and plans the topology.

Checks performed:
  - Configuration: required keys, domain name and data paths
  - Topology: dependency graph and bucket security policies
  - Template (--cfn-lint): the synthesized template passes cfn-lint
  - Buckets (--check-buckets): no bucket name is owned by another account
  - Advice (--advise): security, cost, performance and reliability hints

Examples:
    wetwire-site validate
    wetwire-site validate --cfn-lint --format json
    wetwire-site validate --check-buckets --endpoint localhost:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()

			result, err := runValidate(cmd.Context(), opts, vopts, log)
			if err != nil {
				return err
			}
			return outputValidateResult(cmd.OutOrStdout(), result, vopts.format)
		},
	}

	cmd.Flags().StringVarP(&vopts.format, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&vopts.cfnLint, "cfn-lint", false, "Lint the synthesized template with cfn-lint")
	cmd.Flags().StringSliceVar(&vopts.ignoreRules, "ignore-rule", nil, "cfn-lint rule IDs to ignore")
	cmd.Flags().BoolVar(&vopts.checkBuckets, "check-buckets", false, "Check bucket name availability in S3")
	cmd.Flags().BoolVar(&vopts.advise, "advise", false, "Report optimization suggestions for the template")
	cmd.Flags().StringVar(&vopts.category, "category", "all", "Suggestion category: all, security, cost, performance or reliability")
	cmd.Flags().StringVar(&vopts.region, "region", "us-east-1", "AWS region for --check-buckets")
	cmd.Flags().StringVar(&vopts.endpoint, "endpoint", "", "S3-compatible endpoint for --check-buckets")

	return cmd
}

func runValidate(ctx context.Context, opts *rootOptions, vopts validateOptions, log *zap.Logger) (wetwire.ValidateResult, error) {
	var result wetwire.ValidateResult

	cfg, err := opts.resolve()
	if err != nil {
		if !isConfigError(err) {
			return result, err
		}
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	topo, err := topology.Plan(cfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}
	result.Nodes = topo.Len()

	if vopts.cfnLint || vopts.advise {
		tmpl, _, err := synthesize(ctx, cfg, log)
		if err != nil {
			result.Errors = append(result.Errors, errorList(err)...)
		} else {
			if vopts.cfnLint {
				lint, err := validation.LintTemplate(tmpl, validation.Options{Ignore: vopts.ignoreRules})
				if err != nil {
					return result, err
				}
				result.Errors = append(result.Errors, lint.Errors...)
				result.Warnings = append(result.Warnings, lint.Warnings...)
			}
			if vopts.advise {
				advice, err := optimizer.Optimize(tmpl, optimizer.Options{Category: vopts.category})
				if err != nil {
					return result, err
				}
				result.Suggestions = advice.Suggestions
			}
		}
	}

	if vopts.checkBuckets {
		api, err := newBucketAPI(ctx, vopts.region, vopts.endpoint)
		if err != nil {
			return result, err
		}
		checks, err := preflight.CheckBuckets(ctx, api, preflight.BucketNames(topo), preflight.Options{Logger: log})
		if err != nil {
			return result, err
		}
		for _, name := range preflight.Taken(checks) {
			result.Errors = append(result.Errors, fmt.Sprintf("bucket %q is owned by another account", name))
		}
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

func outputValidateResult(w io.Writer, result wetwire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Success {
			fmt.Fprintf(w, "Validation passed: %d nodes OK\n", result.Nodes)
		} else {
			fmt.Fprintln(w, "Validation FAILED:")
		}
		for _, errMsg := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", warnMsg)
		}
		for _, s := range result.Suggestions {
			fmt.Fprintf(w, "  %s [%s/%s] %s: %s %s\n", s.Rule, s.Category, s.Severity, s.Resource, s.Title, s.Suggestion)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		return fmt.Errorf("validation failed")
	}
	return nil
}
