package redactable

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/engine"
	"github.com/redactable/redactable/internal/report"
)

var baselineFlags detectFlags

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update [files|dirs|globs...]",
		Short: "Update baseline from current scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := baselineFlags.registry()
			if err != nil {
				return err
			}
			docs, err := loadDocuments(cmd, args, baselineFlags.selection(cmd), false)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()
			res, err := engine.New(engine.WithLogger(logger)).Run(ctx, baselineFlags.engineConfig(true), reg, nil, docs)
			if err != nil {
				return err
			}
			var items []report.Item
			for i, o := range res.Outcomes {
				items = append(items, report.Locate(o.Source, docs[i].Text, o.Findings)...)
			}
			if err := report.SaveBaseline(flagBaseline, items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated (%d findings).\n", len(items))
			return nil
		},
	}
	addDetectFlags(update, &baselineFlags)
	update.Flags().StringVar(&flagBaseline, "baseline", defaultBaseline, "baseline file to write")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
