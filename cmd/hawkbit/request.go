package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/designcise/hawkbit"
)

// errRequestFailed marks a pass that ended with a translated error.
var errRequestFailed = errors.New("request failed")

func newRequestCmd(flags *globalFlags) *cobra.Command {
	var (
		headers []string
		data    string
	)

	cmd := &cobra.Command{
		Use:   "request [method] path",
		Short: "Handle one request and write the response body to stdout",
		Example: `  hawkbit request /
  hawkbit request GET /hello/world -H "X-Request-ID: abc"
  hawkbit request POST /submit -d 'name=value'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, target := http.MethodGet, args[0]
			if len(args) == 2 {
				method, target = strings.ToUpper(args[0]), args[1]
			}

			req, err := http.NewRequestWithContext(cmd.Context(), method, target, strings.NewReader(data))
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q, want \"Name: value\"", h)
				}
				req.Header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
			}

			var failed bool
			d, err := newDemo(flags,
				hawkbit.WithCLI(true),
				hawkbit.WithResponseEmitter(hawkbit.NewStreamEmitter(cmd.OutOrStdout())),
				hawkbit.WithListener(hawkbit.PhaseShutdown, func(e *hawkbit.Event) error {
					if l := e.Lifecycle(); l != nil {
						failed = l.IsError()
					}
					return nil
				}),
			)
			if err != nil {
				return err
			}
			defer func() { _ = d.close(cmd.Context()) }()

			if err := d.watchEvents(cmd.Context()); err != nil {
				return err
			}
			if err := d.app.Run(req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if failed {
				return errRequestFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header as \"Name: value\" (repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	return cmd
}
