package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ghgcli/internal/app"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API, Prometheus metrics and the event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				if port <= 0 || port > 65535 {
					return fmt.Errorf("invalid port: %d", port)
				}
				root.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch") {
				root.cfg.Watch.Enabled = watch
			}

			application, err := app.NewApplication(root.cfg, root.logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "also run the inbox watcher")

	return cmd
}
