package redactable

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/engine"
	"github.com/redactable/redactable/internal/report"
)

const defaultBaseline = "redactable.baseline.json"

var (
	scanFlags          detectFlags
	flagFormat         string
	flagShowValues     bool
	flagFailOnFindings bool
	flagFailOn         string
	flagBaseline       string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [files|dirs|globs...]",
		Short: "Report sensitive data found in files or stdin",
		Long: "Scan runs every enabled detector over each input and reports what it found. " +
			"With no arguments the text is read from stdin. Findings recorded in the baseline file are not reported again.",
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	addDetectFlags(cmd, &scanFlags)
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "", "output format: table|text|json|sarif (default table)")
	cmd.Flags().BoolVar(&flagShowValues, "show-values", false, "print matched values instead of masked previews")
	cmd.Flags().BoolVar(&flagFailOnFindings, "fail-on-findings", false, "exit 1 when findings at or above --fail-on are reported")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "confidence level for --fail-on-findings: low|medium|high (default low)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", defaultBaseline, "baseline file of known findings to suppress")
}

func runScan(cmd *cobra.Command, args []string) error {
	defer flushMetrics()
	reg, err := scanFlags.registry()
	if err != nil {
		return err
	}
	docs, err := loadDocuments(cmd, args, scanFlags.selection(cmd), false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	eng := engine.New(engine.WithLogger(logger), engine.WithMetrics(collector))
	res, err := eng.Run(ctx, scanFlags.engineConfig(true), reg, nil, docs)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	var items []report.Item
	failures := 0
	for i, o := range res.Outcomes {
		items = append(items, report.Locate(o.Source, docs[i].Text, o.Findings)...)
		for _, f := range o.Failures {
			failures++
			logger.Warn("detector failed", "detector", f.Detector, "source", o.Source, "err", f.Err)
		}
	}
	baseline, _ := report.LoadBaseline(flagBaseline)
	newItems := report.FilterNew(items, baseline)
	if newItems == nil {
		newItems = []report.Item{}
	} // no `null` in JSON

	out := cmd.OutOrStdout()
	opts := report.PrintOptions{
		NoColor:       !colorEnabled(cmd),
		ShowValues:    flagShowValues,
		Duration:      res.Duration,
		InputsScanned: res.DocumentsScanned,
		Failures:      failures,
	}
	switch format := pickString(flagFormat, localCfg.Format, globalCfg.Format); format {
	case "sarif":
		stats := map[string]int{"inputsScanned": res.DocumentsScanned, "detectorFailures": failures}
		if err := report.WriteSARIFWithStats(out, newItems, version, stats); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case "json":
		if err := report.WriteJSON(out, newItems, flagShowValues); err != nil {
			return err
		}
	case "text":
		report.PrintText(out, newItems, opts)
	case "", "table":
		if err := report.PrintTable(out, newItems, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want table, text, json or sarif)", format)
	}

	if cmd.Flags().Changed("enable") || cmd.Flags().Changed("disable") {
		logger.Info("detectors active", "names", reg.Names(), "enable", scanFlags.enable)
	}

	failOn := pickString(flagFailOn, localCfg.FailOn, globalCfg.FailOn)
	if failOn == "" {
		failOn = "low"
	}
	if flagFailOnFindings && report.ShouldFail(newItems, failOn) {
		return errFindings
	}
	return nil
}
