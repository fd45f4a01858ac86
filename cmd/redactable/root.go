package redactable

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/config"
	"github.com/redactable/redactable/internal/metrics"
)

var (
	flagRegion         string
	flagThreads        int
	flagNoColor        bool
	flagMinConfidence  float64
	flagLogLevel       string
	flagPhoneValidator string
	flagMetricsFile    string

	version = "0.1.0"

	// Populated by the root PersistentPreRunE for every subcommand.
	logger    = log.New(os.Stderr)
	collector *metrics.Collector
	localCfg  config.FileConfig
	globalCfg config.FileConfig
)

// errFindings signals that findings were reported and the caller asked for a
// failing exit status.
var errFindings = errors.New("sensitive data found")

// rootCmd is the base Cobra command for the Redactable CLI.
var rootCmd = &cobra.Command{
	Use:   "redactable",
	Short: "Detect and redact personal data in text",
	Long: "Redactable finds personal and secret data (emails, phone numbers, cards, IBANs, NHS and SSN numbers, " +
		"high-entropy tokens) in text and rewrites it according to redaction policies.",
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the Redactable CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFindings) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "default region for national phone numbers (default GB)")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().Float64Var(&flagMinConfidence, "min-confidence", 0.0, "only keep findings with confidence >= value (0-1)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")
	rootCmd.PersistentFlags().StringVar(&flagPhoneValidator, "phone-validator", "", "phone validation: libphonenumber|fallback")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write prometheus metrics to this textfile on exit")
}

// setup loads config files (CLI > local > global) and builds the logger and
// metrics collector shared by subcommands.
func setup(cmd *cobra.Command, _ []string) error {
	globalCfg, localCfg = config.FileConfig{}, config.FileConfig{}
	if c, err := config.LoadGlobal(); err == nil {
		globalCfg = c
	}
	if c, err := config.LoadLocal("."); err == nil {
		localCfg = c
	}
	level := pickString(flagLogLevel, localCfg.LogLevel, globalCfg.LogLevel)
	if level == "" {
		level = "warn"
	}
	logger = newLogger(cmd.ErrOrStderr(), level)
	collector = metrics.NewCollector(nil)
	return nil
}

// flushMetrics writes the metrics textfile when one is configured.
func flushMetrics() {
	path := pickString(flagMetricsFile, localCfg.MetricsFile, globalCfg.MetricsFile)
	if path == "" {
		return
	}
	if err := collector.WriteTextfile(path); err != nil {
		logger.Warn("metrics export failed", "path", path, "err", err)
		return
	}
	logger.Debug("metrics written", "path", path)
}
