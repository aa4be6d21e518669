package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ghgcli/internal/compliance"
	api "ghgcli/pkg/contracts/api/v1"
)

func newTiersCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "tiers",
		Short: "Show the compliance tiers and thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			th := root.cfg.Compliance.Thresholds()
			legend := compliance.NewClassifier(th).Legend()
			factor := root.cfg.Emissions.Factor()

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(api.TiersResponse{
					Tiers: legend,
					Thresholds: api.ThresholdsResponse{
						Mandatory: th.Mandatory,
						Watch:     th.Watch,
					},
					DefaultFactor: factor,
				})
			}
			return renderTiers(cmd.OutOrStdout(), legend, th, factor)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the tiers as JSON")

	return cmd
}
