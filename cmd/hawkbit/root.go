package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

type globalFlags struct {
	config      string
	events      bool
	corsOrigins []string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "hawkbit",
		Short: "Demo application for the hawkbit lifecycle core",
		Long: `hawkbit serves a small demo application over HTTP, or handles a
single request on the command line and writes the response body to stdout.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "config file path (default is $HAWKBIT_CONFIG, then ./hawkbit.yaml)")
	root.PersistentFlags().BoolVar(&flags.events, "events", false, "publish lifecycle events to the in-process event bus")
	root.PersistentFlags().StringSliceVar(&flags.corsOrigins, "cors-origin", nil, "allowed CORS origins")

	root.AddCommand(newServeCmd(flags), newRequestCmd(flags))
	return root
}
