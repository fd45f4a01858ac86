package redactable

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/audit"
)

var (
	flagHistoryPath  string
	flagHistoryLimit int
)

func init() {
	cmd := &cobra.Command{Use: "audit", Short: "Inspect the apply audit log"}
	rootCmd.AddCommand(cmd)

	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent audit records, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flagHistoryPath
			if path == "" {
				path = localCfg.AuditPath()
			}
			if path == "" {
				path = globalCfg.AuditPath()
			}
			if path == "" {
				path = audit.DefaultPath
			}
			records, err := audit.NewAuditLog(path).LoadHistory()
			if err != nil {
				return err
			}
			if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
				records = records[:flagHistoryLimit]
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No audit records in %s\n", path)
				return nil
			}
			table := tablewriter.NewWriter(out)
			table.Header("TIME", "RUN", "COMMAND", "SOURCE", "POLICY", "FINDINGS", "REPLACEMENTS")
			for _, r := range records {
				policyName := r.Policy
				if policyName != "" {
					policyName += " v" + strconv.Itoa(r.PolicyVersion)
				}
				row := []string{
					r.Timestamp.Local().Format(time.DateTime),
					shortID(r.RunID),
					r.Command,
					r.Source,
					policyName,
					strconv.Itoa(len(r.Findings)),
					strconv.Itoa(r.Replacements),
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	history.Flags().StringVar(&flagHistoryPath, "path", "", "audit log path (default from config or "+audit.DefaultPath+")")
	history.Flags().IntVar(&flagHistoryLimit, "limit", 20, "show at most this many records (0 = all)")
	cmd.AddCommand(history)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
