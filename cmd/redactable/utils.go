package redactable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/engine"
	"github.com/redactable/redactable/internal/files"
)

const stdinSource = "-"

// Precedence helpers: a non-zero CLI value wins, then the local file, then
// the global file.

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickFloat(cli float64, local, global *float64) float64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickBoolFlag is pickBool for flags whose default is true: an explicitly
// set flag wins in either direction.
func pickBoolFlag(cmd *cobra.Command, name string, cli bool, local, global *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f any) bool {
	fd, ok := f.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fd.Fd()))
}

// colorEnabled turns color off for --no-color, config and non-TTY output.
func colorEnabled(cmd *cobra.Command) bool {
	if pickBool(flagNoColor, localCfg.NoColor, globalCfg.NoColor) {
		return false
	}
	return isTerminal(cmd.OutOrStdout())
}

// detectFlags are the detection and input-selection flags shared by scan,
// apply and baseline.
type detectFlags struct {
	include          string
	exclude          string
	maxBytes         int64
	defaultExcludes  bool
	enable           string
	disable          string
	entropyThreshold float64
	minTokenLength   int
	honorIgnore      bool
}

func addDetectFlags(cmd *cobra.Command, f *detectFlags) {
	cmd.Flags().StringVar(&f.include, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&f.exclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", 0, "skip files larger than this (0 = no limit)")
	cmd.Flags().BoolVar(&f.defaultExcludes, "default-excludes", true, "skip VCS, dependency and binary paths when walking directories")
	cmd.Flags().StringVar(&f.enable, "enable", "", "only report these kinds (comma-separated)")
	cmd.Flags().StringVar(&f.disable, "disable", "", "disable these detectors (comma-separated)")
	cmd.Flags().Float64Var(&f.entropyThreshold, "entropy-threshold", 0, "bits per character for high_entropy_token (default 3.5)")
	cmd.Flags().IntVar(&f.minTokenLength, "min-token-length", 0, "minimum length for high_entropy_token (default 24)")
	cmd.Flags().BoolVar(&f.honorIgnore, "honor-ignore", false, "skip findings on lines marked redactable:ignore")
}

func (f *detectFlags) selection(cmd *cobra.Command) files.Selection {
	return files.Selection{
		IncludeGlobs:    pickString(f.include, localCfg.Include, globalCfg.Include),
		ExcludeGlobs:    pickString(f.exclude, localCfg.Exclude, globalCfg.Exclude),
		MaxBytes:        pickInt64(f.maxBytes, localCfg.MaxBytes, globalCfg.MaxBytes),
		DefaultExcludes: pickBoolFlag(cmd, "default-excludes", f.defaultExcludes, localCfg.DefaultExcludes, globalCfg.DefaultExcludes),
	}
}

func (f *detectFlags) region() string {
	return strings.ToUpper(pickString(flagRegion, localCfg.Region, globalCfg.Region))
}

func (f *detectFlags) registry() (*detectors.Registry, error) {
	var pv detectors.PhoneValidator
	switch v := strings.ToLower(pickString(flagPhoneValidator, localCfg.PhoneValidator, globalCfg.PhoneValidator)); v {
	case "", "libphonenumber", "lib":
		pv = detectors.LibPhoneValidator{}
	case "fallback":
		pv = detectors.FallbackPhoneValidator{}
	default:
		return nil, fmt.Errorf("unknown phone validator %q (want libphonenumber or fallback)", v)
	}
	disable := pickString(f.disable, localCfg.Disable, globalCfg.Disable)
	return detectors.NewBuilder().
		Region(f.region()).
		PhoneValidator(pv).
		Defaults().
		Disable(strings.Split(disable, ",")...).
		HonorIgnoreMarkers(pickBool(f.honorIgnore, localCfg.HonorIgnore, globalCfg.HonorIgnore)).
		Logger(logger).
		Metrics(collector).
		Build(), nil
}

func (f *detectFlags) engineConfig(dryRun bool) engine.Config {
	return engine.Config{
		Threads:          pickInt(flagThreads, localCfg.Threads, globalCfg.Threads),
		MinConfidence:    pickFloat(flagMinConfidence, localCfg.MinConfidence, globalCfg.MinConfidence),
		EnableDetectors:  pickString(f.enable, localCfg.Enable, globalCfg.Enable),
		DisableDetectors: pickString(f.disable, localCfg.Disable, globalCfg.Disable),
		Detect: &detectors.Context{
			Region:           f.region(),
			EntropyThreshold: pickFloat(f.entropyThreshold, localCfg.EntropyThreshold, globalCfg.EntropyThreshold),
			MinTokenLength:   pickInt(f.minTokenLength, localCfg.MinTokenLength, globalCfg.MinTokenLength),
		},
		DryRun: dryRun,
	}
}

// loadDocuments reads every input named by args, or stdin when there are
// none. In line mode each line becomes its own document named source:N.
// Binary files are skipped with a warning.
func loadDocuments(cmd *cobra.Command, args []string, sel files.Selection, lines bool) ([]engine.Document, error) {
	var docs []engine.Document
	add := func(source, text string) {
		if !lines {
			docs = append(docs, engine.Document{Source: source, Text: text})
			return
		}
		for i, line := range files.SplitLines(text) {
			docs = append(docs, engine.Document{Source: fmt.Sprintf("%s:%d", source, i+1), Text: line})
		}
	}

	if len(args) == 0 {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			logger.Info("reading from stdin (Ctrl-D to finish)")
		}
		text, err := files.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		add(stdinSource, text)
		return docs, nil
	}

	paths, err := files.Expand(args, sel)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		text, err := files.Read(p)
		if errors.Is(err, files.ErrBinary) {
			logger.Warn("skipping binary input", "path", p)
			continue
		}
		if err != nil {
			return nil, err
		}
		add(p, text)
	}
	return docs, nil
}

// documentText is the text an outcome leaves behind: the rewrite when one
// happened, the input otherwise.
func documentText(o engine.Outcome, doc engine.Document) string {
	if o.Changed(doc) {
		return o.Rewrite.Text
	}
	return doc.Text
}

// signalContext is the command context, cancelled on SIGINT.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

func writeOut(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
func floatPtr(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool { return &v }
