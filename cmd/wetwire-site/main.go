// Command wetwire-site derives the CloudFormation topology of a static website.
//
// Usage:
//
//	wetwire-site build               Generate CloudFormation template
//	wetwire-site plan                Dry-run the topology in memory
//	wetwire-site graph               Show resource dependencies
//	wetwire-site diff deployed.json  Compare with a deployed template
//	wetwire-site validate            Check the configuration
//	wetwire-site watch               Rebuild on config changes
//	wetwire-site version             Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "wetwire-site",
		Short: "Generate static website infrastructure",
		Long: `wetwire-site turns a small site configuration into the CloudFormation
template of a static website: S3 buckets, a CloudFront distribution,
ACM certificates and a Route53 alias record.

Describe the site in site.yaml:

    domainName: example.com
    publicDataPath: ./site
    githubRepo: website
    githubBranch: main
    hostedZoneId: Z0123456789ABC

Then generate the template:

    wetwire-site build -o template.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "site.yaml", "Path to the site configuration")
	rootCmd.PersistentFlags().StringArrayVarP(&opts.overrides, "set", "c", nil, "Override a config key (key=value, repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newPlanCmd(opts),
		newGraphCmd(opts),
		newDiffCmd(opts),
		newValidateCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wetwire-site %s\n", getVersion())
		},
	}
}
