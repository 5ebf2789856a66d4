package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lex00/wetwire-site-go/internal/graph"
	"github.com/lex00/wetwire-site-go/internal/topology"
)

func newGraphCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFormat  string
		clusterByKind bool
		withStates    bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate DOT graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph of the planned topology.

The output can be rendered with Graphviz:
    wetwire-site graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    wetwire-site graph -f mermaid

Examples:
    wetwire-site graph
    wetwire-site graph -c hasPrivateData=true --cluster
    wetwire-site graph --states             # color nodes by a dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd.ErrOrStderr())
			defer func() { _ = log.Sync() }()

			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			cfg, err := opts.resolve()
			if err != nil {
				return err
			}

			topo, err := topology.Plan(cfg)
			if err != nil {
				return err
			}

			if withStates {
				// Failed and skipped nodes are part of the picture.
				_, _ = topology.NewBuilder(dryRunProvider(cfg, dryRunOptions{}), topology.WithLogger(log)).Apply(cmd.Context(), topo)
			}

			gen := &graph.Generator{
				Format:        graphFormat,
				ClusterByKind: clusterByKind,
			}
			return gen.Generate(topo, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVar(&clusterByKind, "cluster", false, "Cluster nodes of the same kind")
	cmd.Flags().BoolVar(&withStates, "states", false, "Dry-run the topology and color nodes by state")

	return cmd
}
