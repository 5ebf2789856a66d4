package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/differ"
)

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "diff <deployed-template>",
		Short: "Compare a deployed template with the current config",
		Long: `Diff renders the template for the current configuration and compares it
with a previously built template (JSON or YAML).

Resources that CloudFormation would replace are flagged, as are removed
buckets that are retained on deletion.

Examples:
    wetwire-site diff deployed.json
    wetwire-site diff deployed.yaml -c environment=dev --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()

			deployed, err := differ.LoadTemplate(args[0])
			if err != nil {
				return err
			}

			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			current, _, err := synthesize(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			result, err := differ.Compare(deployed, current)
			if err != nil {
				return err
			}
			return outputDiffResult(cmd.OutOrStdout(), wetwire.DiffResult{Diff: result.Diff, Summary: result.Summary}, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func outputDiffResult(w io.Writer, result wetwire.DiffResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if result.Summary.Total == 0 && len(result.Diff.Outputs) == 0 {
			fmt.Fprintln(w, "No changes")
			return nil
		}
		for _, e := range result.Diff.Added {
			fmt.Fprintf(w, "+ %s (%s)\n", e.Resource, e.Type)
		}
		for _, e := range result.Diff.Removed {
			note := ""
			if e.Retained {
				note = " [retained]"
			}
			fmt.Fprintf(w, "- %s (%s)%s\n", e.Resource, e.Type, note)
		}
		for _, e := range result.Diff.Modified {
			note := ""
			if e.Replacement {
				note = " [replacement]"
			}
			fmt.Fprintf(w, "~ %s (%s)%s\n", e.Resource, e.Type, note)
			for _, c := range e.Changes {
				fmt.Fprintf(w, "    %s\n", c)
			}
		}
		for _, o := range result.Diff.Outputs {
			fmt.Fprintf(w, "  output %s\n", o)
		}
		fmt.Fprintf(w, "%d added, %d removed, %d modified (%d replaced)\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified, result.Summary.Replaced)

	default:
		return fmt.Errorf("unknown format: %s (use 'text' or 'json')", format)
	}
	return nil
}
