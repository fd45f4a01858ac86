package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".redactable.yml", ".redactable.yaml", "redactable.yml", "redactable.yaml"}

// FileConfig is the on-disk YAML configuration shape for Redactable.
// Pointer fields distinguish "unset" from zero values so that local files
// can override global ones field by field.
type FileConfig struct {
	Region          *string  `yaml:"region,omitempty"`
	Policy          *string  `yaml:"policy,omitempty"`
	Format          *string  `yaml:"format,omitempty"`
	Include         *string  `yaml:"include,omitempty"`
	Exclude         *string  `yaml:"exclude,omitempty"`
	MaxBytes        *int64   `yaml:"max_bytes,omitempty"`
	Enable          *string  `yaml:"enable,omitempty"`
	Disable         *string  `yaml:"disable,omitempty"`
	Threads         *int     `yaml:"threads,omitempty"`
	MinConfidence   *float64 `yaml:"min_confidence,omitempty"`
	NoColor         *bool    `yaml:"no_color,omitempty"`
	DefaultExcludes *bool    `yaml:"default_excludes,omitempty"`
	HonorIgnore     *bool    `yaml:"honor_ignore,omitempty"`
	LogLevel        *string  `yaml:"log_level,omitempty"`
	MetricsFile     *string  `yaml:"metrics_file,omitempty"`
	FailOn          *string  `yaml:"fail_on,omitempty"`

	// PhoneValidator selects "libphonenumber" (default) or "fallback".
	PhoneValidator *string `yaml:"phone_validator,omitempty"`

	// High-entropy detector tuning
	EntropyThreshold *float64 `yaml:"entropy_threshold,omitempty"`
	MinTokenLength   *int     `yaml:"min_token_length,omitempty"`

	Audit *AuditConfig `yaml:"audit,omitempty"`
}

// AuditConfig controls the JSONL audit trail written by apply.
type AuditConfig struct {
	// Path of the audit file. Empty disables auditing.
	Path *string `yaml:"path,omitempty"`

	// Values keeps raw values in audit records instead of scrubbing them.
	Values *bool `yaml:"values,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It supports .redactable.yml/.yaml and redactable.yml/.yaml.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns the global config location under the XDG config dir
// (or ~/.config). It returns "" when neither can be determined.
func GlobalPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "redactable", "config.yml")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p := GlobalPath()
	if p == "" {
		return cfg, errors.New("no config dir")
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// AuditPath returns the configured audit path or "".
func (fc FileConfig) AuditPath() string {
	if fc.Audit == nil || fc.Audit.Path == nil {
		return ""
	}
	return *fc.Audit.Path
}

// AuditValues reports whether audit records keep raw values. Unset means
// values are scrubbed.
func (fc FileConfig) AuditValues() *bool {
	if fc.Audit == nil {
		return nil
	}
	return fc.Audit.Values
}
