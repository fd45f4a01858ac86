package redactable

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/redactable/redactable/internal/ctxparse"
	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/files"
)

func init() {
	cmd := &cobra.Command{
		Use:   "hints <file.json|file.yaml>",
		Short: "Flag fields whose names suggest personal data",
		Long: "Hints flattens a JSON or YAML document into field paths and reports fields whose names " +
			"look like personal data (email, phone, date of birth, card, IBAN, address...). Values are not inspected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := files.Read(args[0])
			if err != nil {
				return err
			}
			fields := ctxparse.FieldsFor(args[0], []byte(text))
			if fields == nil {
				return fmt.Errorf("%s: not a JSON or YAML document", args[0])
			}
			found, err := detectors.NewFieldHints().DetectFields(fields)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "No personal-data field names found ✅")
				return nil
			}
			table := tablewriter.NewWriter(out)
			table.Header("FIELD", "LINE", "KIND", "HINT")
			for _, f := range found {
				line, _ := f.Extra("line")
				hint, _ := f.Extra("hint")
				if err := table.Append([]string{f.Value, strconv.Itoa(toInt(line)), f.Kind, fmt.Sprint(hint)}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	rootCmd.AddCommand(cmd)
}

func toInt(v any) int {
	if n, ok := v.(int); ok {
		return n
	}
	return 0
}
