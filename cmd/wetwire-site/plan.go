package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/config"
	"github.com/lex00/wetwire-site-go/internal/export"
	"github.com/lex00/wetwire-site-go/internal/provider/memory"
	"github.com/lex00/wetwire-site-go/internal/topology"
)

// plannedZoneID stands in for the hosted zone when the config names none.
const plannedZoneID = "ZPLANNED00000000"

// dryRunOptions describes the in-memory account a dry run provisions into.
type dryRunOptions struct {
	account string
	region  string
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat string
		dopts        dryRunOptions
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Dry-run the topology against an in-memory account",
		Long: `Plan provisions the topology against an in-memory account and prints
every node in creation order with the outputs the stack would export.

Nothing is created in AWS.

Examples:
    wetwire-site plan
    wetwire-site plan --format json
    wetwire-site plan -c hasPrivateData=true -c privateDataPath=./private`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()

			cfg, err := opts.resolve()
			if err != nil {
				return err
			}

			result, err := runPlan(cmd.Context(), cfg, dopts, log)
			if err != nil {
				return err
			}
			return outputPlanResult(cmd.OutOrStdout(), cfg, result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVar(&dopts.account, "account", memory.DefaultAccount, "Account ID used in planned ARNs")
	cmd.Flags().StringVar(&dopts.region, "region", memory.DefaultRegion, "Region of the planned buckets")

	return cmd
}

// dryRunProvider returns an in-memory account that already hosts the zone.
func dryRunProvider(cfg *config.Resolved, dopts dryRunOptions) *memory.Provider {
	zoneID := cfg.HostedZoneID
	if zoneID == "" {
		zoneID = plannedZoneID
	}
	opts := []memory.Option{memory.WithZone(cfg.DomainName, zoneID)}
	if dopts.account != "" {
		opts = append(opts, memory.WithAccount(dopts.account))
	}
	if dopts.region != "" {
		opts = append(opts, memory.WithRegion(dopts.region))
	}
	return memory.New(opts...)
}

func runPlan(ctx context.Context, cfg *config.Resolved, dopts dryRunOptions, log *zap.Logger) (wetwire.PlanResult, error) {
	topo, res, buildErr := topology.Build(ctx, cfg, dryRunProvider(cfg, dopts), topology.WithLogger(log))
	if topo == nil {
		return wetwire.PlanResult{}, buildErr
	}

	result := wetwire.PlanResult{
		Success: buildErr == nil,
		Errors:  errorList(buildErr),
	}
	for _, n := range topo.Nodes() {
		result.Nodes = append(result.Nodes, wetwire.PlanNode{
			ID:         n.ID,
			Kind:       string(n.Kind),
			State:      string(res.States[n.ID]),
			DependsOn:  n.DependsOn,
			Attributes: n.Attributes,
		})
	}

	if buildErr == nil {
		outputs, err := export.Export(topo)
		if err != nil {
			return wetwire.PlanResult{}, err
		}
		result.Outputs = outputs
	}
	return result, nil
}

func outputPlanResult(w io.Writer, cfg *config.Resolved, result wetwire.PlanResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		fmt.Fprintf(w, "Plan for %s (%s)\n", cfg.DomainName, cfg.Environment)
		for i, n := range result.Nodes {
			fmt.Fprintf(w, "  %d. %-32s %-14s %s\n", i+1, n.ID, n.Kind, n.State)
		}

		if len(result.Outputs) > 0 {
			fmt.Fprintln(w, "Outputs:")
			keys := make([]string, 0, len(result.Outputs))
			for k := range result.Outputs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s = %s\n", k, result.Outputs[k])
			}
		}

		for _, e := range result.Errors {
			fmt.Fprintf(w, "  ERROR: %s\n", e)
		}

	default:
		return fmt.Errorf("unknown format: %s (use 'text' or 'json')", format)
	}

	if !result.Success {
		return fmt.Errorf("plan failed")
	}
	return nil
}
