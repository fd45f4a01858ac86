package redactable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redactable/redactable/internal/policy"
)

var (
	flagShowPolicy string
	flagPolicyYAML bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List built-in policy templates or describe one policy",
		RunE:  runPolicies,
	}
	cmd.Flags().StringVar(&flagShowPolicy, "show", "", "describe the rules of a template name or policy file")
	cmd.Flags().BoolVar(&flagPolicyYAML, "yaml", false, "with --show, print the policy as YAML")
	rootCmd.AddCommand(cmd)
}

func runPolicies(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if flagShowPolicy == "" {
		descs := policy.DescribeBuiltins()
		table := tablewriter.NewWriter(out)
		table.Header("NAME", "DESCRIPTION")
		for _, name := range policy.BuiltinNames() {
			if err := table.Append([]string{name, descs[name]}); err != nil {
				return err
			}
		}
		return table.Render()
	}

	p, err := policy.Resolve(flagShowPolicy)
	if err != nil {
		return err
	}
	if flagPolicyYAML {
		b, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	}
	fmt.Fprintf(out, "%s (version %d)\n", p.Name, p.Version)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	table := tablewriter.NewWriter(out)
	table.Header("ID", "FIELD", "ACTION", "PARAMETERS", "WHERE")
	for _, r := range p.Rules {
		if err := table.Append([]string{r.ID, r.Field, string(r.Action), ruleParameters(r), describeWhere(r.Where)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func ruleParameters(r policy.Rule) string {
	switch r.Action {
	case policy.ActionRedact:
		return "replacement=" + strconv.Quote(r.Replacement)
	case policy.ActionMask:
		return fmt.Sprintf("keep_head=%d keep_tail=%d glyph=%q", r.KeepHead, r.KeepTail, r.MaskGlyph)
	case policy.ActionTokenize:
		if r.Salt == "" {
			return "unsalted"
		}
		return "salted"
	default:
		return ""
	}
}

func describeWhere(w *policy.Where) string {
	if w == nil {
		return "-"
	}
	var parts []string
	if w.MinConfidence != nil {
		parts = append(parts, fmt.Sprintf("confidence>=%.2f", *w.MinConfidence))
	}
	if w.MaxConfidence != nil {
		parts = append(parts, fmt.Sprintf("confidence<=%.2f", *w.MaxConfidence))
	}
	if w.ValueMatches != "" {
		parts = append(parts, "value~"+w.ValueMatches)
	}
	if w.NormalizedMatches != "" {
		parts = append(parts, "normalized~"+w.NormalizedMatches)
	}
	keys := make([]string, 0, len(w.Metadata))
	for k := range w.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := w.Metadata[k]
		if m.Equals != nil {
			parts = append(parts, fmt.Sprintf("%s=%v", k, m.Equals))
		}
		if m.Matches != "" {
			parts = append(parts, k+"~"+m.Matches)
		}
	}
	return strings.Join(parts, " ")
}
