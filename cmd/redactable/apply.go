package redactable

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/audit"
	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/engine"
	"github.com/redactable/redactable/internal/files"
	"github.com/redactable/redactable/internal/policy"
	"github.com/redactable/redactable/internal/report"
)

var (
	applyFlags      detectFlags
	flagPolicy      string
	flagOutput      string
	flagInPlace     bool
	flagLines       bool
	flagDiff        bool
	flagCopy        bool
	flagAudit       string
	flagAuditValues bool
	flagWatchPolicy bool
	flagApplyDryRun bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "apply [files|dirs|globs...]",
		Short: "Rewrite sensitive data according to a policy",
		Long: "Apply scans each input and rewrites what it finds with a redaction policy " +
			"(a built-in template name such as gdpr, pci or hipaa, or a YAML, JSON or TOML file). " +
			"With no arguments the text is read from stdin and written to stdout.",
		RunE: runApply,
	}
	rootCmd.AddCommand(cmd)

	addDetectFlags(cmd, &applyFlags)
	cmd.Flags().StringVarP(&flagPolicy, "policy", "P", "", "policy template name or file path")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write redacted text here instead of stdout (.gz compresses)")
	cmd.Flags().BoolVar(&flagInPlace, "in-place", false, "rewrite input files in place")
	cmd.Flags().BoolVar(&flagLines, "lines", false, "treat every line as a separate document")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "print a unified diff instead of the redacted text")
	cmd.Flags().BoolVar(&flagCopy, "copy", false, "also copy the redacted text to the clipboard")
	cmd.Flags().StringVar(&flagAudit, "audit", "", "append JSONL audit records to this file")
	cmd.Flags().Lookup("audit").NoOptDefVal = audit.DefaultPath
	cmd.Flags().BoolVar(&flagAuditValues, "audit-values", false, "keep raw values in audit records")
	cmd.Flags().BoolVar(&flagWatchPolicy, "watch-policy", false, "stream stdin line by line, reloading the policy file when it changes")
	cmd.Flags().BoolVar(&flagApplyDryRun, "dry-run", false, "report what would change without writing anything")
}

func runApply(cmd *cobra.Command, args []string) error {
	defer flushMetrics()
	ref := pickString(flagPolicy, localCfg.Policy, globalCfg.Policy)
	if ref == "" {
		return errors.New("no policy: pass --policy or set policy in .redactable.yml")
	}
	if flagInPlace && (flagOutput != "" || flagLines || flagDiff) {
		return errors.New("--in-place cannot be combined with --output, --lines or --diff")
	}
	if flagInPlace && len(args) == 0 {
		return errors.New("--in-place needs file arguments")
	}
	reg, err := applyFlags.registry()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	if flagWatchPolicy {
		if len(args) > 0 {
			return errors.New("--watch-policy reads stdin; drop the file arguments")
		}
		return watchApply(ctx, cmd, ref, reg)
	}

	p, err := policy.Resolve(ref)
	if err != nil {
		return err
	}
	logger.Debug("policy loaded", "name", p.Name, "version", p.Version, "rules", len(p.Rules))

	docs, err := loadDocuments(cmd, args, applyFlags.selection(cmd), flagLines)
	if err != nil {
		return err
	}
	eng := engine.New(engine.WithLogger(logger), engine.WithMetrics(collector))
	res, err := eng.Run(ctx, applyFlags.engineConfig(false), reg, p, docs)
	if err != nil {
		return err
	}
	for _, o := range res.Outcomes {
		if o.Err != nil {
			return fmt.Errorf("%s: %w", o.Source, o.Err)
		}
	}

	if err := writeAudit("apply", p, res.Outcomes); err != nil {
		return err
	}

	replacements := 0
	for _, o := range res.Outcomes {
		replacements += len(o.Rewrite.Applied)
	}
	logger.Info("policy applied", "policy", p.Name, "inputs", res.DocumentsScanned, "replacements", replacements, "elapsed", res.Duration)

	switch {
	case flagApplyDryRun:
		return dryRunSummary(cmd, docs, res.Outcomes)
	case flagDiff:
		out := cmd.OutOrStdout()
		for i, o := range res.Outcomes {
			if err := report.WriteDiff(out, o.Source, docs[i].Text, documentText(o, docs[i])); err != nil {
				return err
			}
		}
		return nil
	case flagInPlace:
		for i, o := range res.Outcomes {
			if !o.Changed(docs[i]) {
				continue
			}
			changed, err := files.Rewrite(o.Source, func(string) (string, error) { return o.Rewrite.Text, nil })
			if err != nil {
				return err
			}
			if changed {
				logger.Info("rewrote", "path", o.Source, "replacements", len(o.Rewrite.Applied))
			}
		}
		return nil
	}

	var b strings.Builder
	for i, o := range res.Outcomes {
		b.WriteString(documentText(o, docs[i]))
	}
	text := b.String()
	if flagCopy {
		if err := clipboard.WriteAll(text); err != nil {
			logger.Warn("clipboard copy failed", "err", err)
		}
	}
	if flagOutput != "" {
		return files.Write(flagOutput, text)
	}
	return writeOut(cmd.OutOrStdout(), text)
}

// watchApply redacts stdin line by line, always with the newest valid
// version of the policy file.
func watchApply(ctx context.Context, cmd *cobra.Command, path string, reg *detectors.Registry) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("--watch-policy needs a policy file: %w", err)
	}
	w, err := policy.NewWatcher(path, policy.WithWatchLogger(logger), policy.WithWatchMetrics(collector))
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("policy watcher stopped", "err", err)
		}
	}()

	cfg := applyFlags.engineConfig(false)
	eng := engine.New(engine.WithLogger(logger), engine.WithMetrics(collector))
	out := cmd.OutOrStdout()
	n := 0
	return files.EachLine(cmd.InOrStdin(), func(line string) error {
		n++
		doc := engine.Document{Source: fmt.Sprintf("%s:%d", stdinSource, n), Text: line}
		p := w.Current()
		res, err := eng.Run(ctx, cfg, reg, p, []engine.Document{doc})
		if err != nil {
			return err
		}
		o := res.Outcomes[0]
		if o.Err != nil {
			return fmt.Errorf("%s: %w", o.Source, o.Err)
		}
		if err := writeAudit("apply", p, res.Outcomes); err != nil {
			return err
		}
		return writeOut(out, documentText(o, doc))
	})
}

// writeAudit appends one record per outcome when an audit path is set.
func writeAudit(command string, p *policy.Policy, outcomes []engine.Outcome) error {
	path := flagAudit
	if path == "" {
		path = localCfg.AuditPath()
	}
	if path == "" {
		path = globalCfg.AuditPath()
	}
	if path == "" || flagApplyDryRun {
		return nil
	}
	keep := pickBool(flagAuditValues, localCfg.AuditValues(), globalCfg.AuditValues())
	runID := audit.NewRunID()
	records := make([]audit.Record, 0, len(outcomes))
	for _, o := range outcomes {
		in := audit.Input{
			Command:      command,
			Source:       o.Source,
			Fingerprint:  o.Fingerprint,
			Findings:     o.Findings,
			Replacements: len(o.Rewrite.Applied),
			Failures:     o.Failures,
		}
		if p != nil {
			in.Policy, in.PolicyVersion = p.Name, p.Version
		}
		records = append(records, audit.CreateRecord(runID, in, keep))
	}
	if err := audit.NewAuditLog(path).Log(records...); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	logger.Debug("audit written", "path", path, "records", len(records), "run", runID)
	return nil
}

func dryRunSummary(cmd *cobra.Command, docs []engine.Document, outcomes []engine.Outcome) error {
	out := cmd.OutOrStdout()
	for i, o := range outcomes {
		status := "unchanged"
		if o.Changed(docs[i]) {
			status = "would change"
		}
		counts := o.Rewrite.Counts()
		if _, err := fmt.Fprintf(out, "%s: %s (%d replacements%s)\n", o.Source, status, len(o.Rewrite.Applied), formatCounts(counts)); err != nil {
			return err
		}
	}
	return nil
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return "; " + strings.Join(parts, ", ")
}
