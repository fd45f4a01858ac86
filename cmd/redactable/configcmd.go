package redactable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redactable/redactable/internal/config"
	"github.com/redactable/redactable/internal/files"
	"github.com/redactable/redactable/internal/policy"
)

var (
	cfgOutput          string
	cfgGlobal          bool
	cfgForce           bool
	cfgPolicy          string
	cfgRegion          string
	cfgDisable         string
	cfgThreads         int
	cfgMaxBytes        int64
	cfgMinConfidence   float64
	cfgNoColor         bool
	cfgDefaultExcludes bool
	cfgAuditPath       string
	cfgIgnoreAudit     bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .redactable.yml with the selected options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config ($XDG_CONFIG_HOME/redactable/config.yml) instead")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&cfgPolicy, "policy", "gdpr", "default policy for apply (template name or file)")
	initCmd.Flags().StringVar(&cfgRegion, "region", "GB", "default phone region")
	initCmd.Flags().StringVar(&cfgDisable, "disable", "", "comma-separated detectors to disable")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	initCmd.Flags().Float64Var(&cfgMinConfidence, "min-confidence", 0.0, "minimum detector confidence (0.0-1.0)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "enable default ignore patterns")
	initCmd.Flags().StringVar(&cfgAuditPath, "audit", "", "audit log path for apply (empty disables auditing)")
	initCmd.Flags().BoolVar(&cfgIgnoreAudit, "gitignore-audit", true, "add the audit log to .gitignore")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !policy.IsBuiltin(cfgPolicy) {
		if _, err := os.Stat(cfgPolicy); err != nil {
			return fmt.Errorf("policy %q is neither a built-in template nor a file", cfgPolicy)
		}
	}

	fc := config.FileConfig{
		Region:          strPtr(cfgRegion),
		Policy:          strPtr(cfgPolicy),
		MaxBytes:        int64Ptr(cfgMaxBytes),
		Disable:         optStrPtr(cfgDisable),
		Threads:         intPtr(cfgThreads),
		MinConfidence:   floatPtr(cfgMinConfidence),
		NoColor:         boolPtr(cfgNoColor),
		DefaultExcludes: boolPtr(cfgDefaultExcludes),
	}
	if cfgAuditPath != "" {
		fc.Audit = &config.AuditConfig{Path: strPtr(cfgAuditPath), Values: boolPtr(false)}
	}

	path := cfgOutput
	if cfgGlobal {
		path = config.GlobalPath()
		if path == "" {
			return fmt.Errorf("cannot determine the global config directory")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)

	if cfgAuditPath != "" && cfgIgnoreAudit && !cfgGlobal {
		if err := files.AppendIgnore(".", cfgAuditPath); err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
	}
	return nil
}
