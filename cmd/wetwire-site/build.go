package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type buildOptions struct {
	format string
	file   string
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var bopts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate CloudFormation template from the site config",
		Long: `Build resolves the site configuration, plans the topology and prints
the CloudFormation template with its stack outputs.

The hosted zone must already exist; set hostedZoneId in the config.

Examples:
    wetwire-site build
    wetwire-site build -o template.json
    wetwire-site build --format yaml -c environment=dev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()
			return buildOnce(cmd.Context(), opts, bopts, log, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&bopts.format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&bopts.file, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// buildOnce writes the synthesized template to bopts.file, or to stdout
// when no file is given.
func buildOnce(ctx context.Context, opts *rootOptions, bopts buildOptions, log *zap.Logger, stdout io.Writer) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	tmpl, _, err := synthesize(ctx, cfg, log)
	if err != nil {
		return err
	}
	data, err := encodeTemplate(tmpl, bopts.format)
	if err != nil {
		return err
	}

	if bopts.file == "" {
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	if err := os.WriteFile(bopts.file, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info("template written",
		zap.String("path", bopts.file),
		zap.Int("resources", len(tmpl.Resources)),
	)
	return nil
}
