package redactable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ciTemplates maps a provider to the pipeline file it reads and a job that
// fails the build when new findings appear.
var ciTemplates = map[string]struct {
	path    string
	content string
}{
	"github": {
		path: ".github/workflows/redactable.yml",
		content: `name: redactable
on: [push, pull_request]
jobs:
  scan:
    runs-on: ubuntu-latest
    permissions:
      security-events: write
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-go@v5
        with:
          go-version: '1.25.x'
      - run: go install github.com/redactable/redactable@latest
      - run: redactable scan --format sarif . > redactable.sarif
      - uses: github/codeql-action/upload-sarif@v3
        if: always()
        with:
          sarif_file: redactable.sarif
      - run: redactable scan --fail-on-findings --fail-on medium .
`,
	},
	"gitlab": {
		path: ".gitlab-ci.yml",
		content: `stages: [scan]
redactable:
  stage: scan
  image: golang:1.25
  script:
    - go install github.com/redactable/redactable@latest
    - redactable scan --format json . | tee redactable-findings.json
    - redactable scan --fail-on-findings --fail-on medium --format text .
  artifacts:
    when: always
    paths:
      - redactable-findings.json
`,
	},
	"bitbucket": {
		path: "bitbucket-pipelines.yml",
		content: `pipelines:
  default:
    - step:
        name: Redactable Scan
        image: golang:1.25
        caches:
          - go
        script:
          - go install github.com/redactable/redactable@latest
          - redactable scan --format json . | tee redactable-findings.json
          - redactable scan --fail-on-findings --fail-on medium --format text .
        artifacts:
          - redactable-findings.json
`,
	},
}

func init() {
	ci := &cobra.Command{Use: "ci", Short: "CI template helpers for multiple providers"}
	rootCmd.AddCommand(ci)

	var provider string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a CI pipeline template for your provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, ok := ciTemplates[provider]
			if !ok {
				return fmt.Errorf("unknown --provider %q. Supported: github, gitlab, bitbucket", provider)
			}
			if err := os.MkdirAll(filepath.Dir(tpl.path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(tpl.path, []byte(tpl.content), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", tpl.path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&provider, "provider", "", "CI provider: github | gitlab | bitbucket")
	if err := initCmd.MarkFlagRequired("provider"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not mark --provider as required:", err)
	}
	ci.AddCommand(initCmd)
}
