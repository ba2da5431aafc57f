package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/designcise/hawkbit"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var (
		addr            string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDemo(flags)
			if err != nil {
				return err
			}

			return d.app.Serve(addr,
				hawkbit.WithContext(cmd.Context()),
				hawkbit.ShutdownTimeout(shutdownTimeout),
				hawkbit.StartupHook(d.watchEvents),
				hawkbit.ShutdownHook(d.close),
			)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default is server.address, then :8080)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "graceful shutdown timeout")
	return cmd
}
