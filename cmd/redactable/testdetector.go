package redactable

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/files"
	"github.com/redactable/redactable/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "test-detector <name>",
		Short: "Run a detector against provided text (stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			region := strings.ToUpper(pickString(flagRegion, localCfg.Region, globalCfg.Region))
			d, ok := detectors.New(args[0], region, nil)
			if !ok {
				return fmt.Errorf("unknown detector %q (available: %s)", args[0], strings.Join(detectors.IDs(), ", "))
			}
			text, err := files.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fs, err := d.Detect(text, &detectors.Context{Region: region})
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name(), err)
			}
			return report.PrintTable(cmd.OutOrStdout(), report.Locate(stdinSource, text, fs), report.PrintOptions{
				NoColor:       true,
				ShowValues:    true,
				InputsScanned: 1,
			})
		},
	}
	// help message includes detector names
	cmd.Long = "Available detectors: " + strings.Join(detectors.IDs(), ", ")
	rootCmd.AddCommand(cmd)
}
