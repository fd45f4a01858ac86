package redactable

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/detectors"
)

func init() {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List available detectors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			region := strings.ToUpper(pickString(flagRegion, localCfg.Region, globalCfg.Region))
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("NAME", "LABELS")
			for _, d := range detectors.Defaults(region, detectors.FallbackPhoneValidator{}) {
				if err := table.Append([]string{d.Name(), strings.Join(d.Labels(), ", ")}); err != nil {
					return err
				}
			}
			hints := detectors.NewFieldHints()
			if err := table.Append([]string{hints.Name() + " (hints command)", strings.Join(hints.Labels(), ", ")}); err != nil {
				return err
			}
			return table.Render()
		},
	}
	rootCmd.AddCommand(cmd)
}
