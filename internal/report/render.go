package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

type PrintOptions struct {
	NoColor       bool
	ShowValues    bool
	Duration      time.Duration
	InputsScanned int
	// Failures counts detector runs that failed across the scan.
	Failures int
}

var (
	kindStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	highStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	medStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	lowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Source != items[j].Source {
			return items[i].Source < items[j].Source
		}
		return items[i].Finding.Span.Start < items[j].Finding.Span.Start
	})
}

// PrintTable renders items as a bordered table.
func PrintTable(w io.Writer, items []Item, opts PrintOptions) error {
	sortItems(items)
	if len(items) == 0 {
		fmt.Fprintln(w, "No sensitive data found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("KIND", "CONFIDENCE", "LOCATION", "SPAN", "VALUE")
		for _, it := range items {
			f := it.Finding
			row := []string{
				f.Kind,
				strconv.FormatFloat(f.Confidence, 'f', 2, 64),
				fmt.Sprintf("%s:%d:%d", it.Source, it.Line, it.Column),
				fmt.Sprintf("%d-%d", f.Span.Start, f.Span.End),
				displayValue(f, opts.ShowValues),
			}
			if err := table.Append(row); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printFooter(w, items, opts)
	return nil
}

// PrintText renders one line per item, colored unless NoColor is set.
func PrintText(w io.Writer, items []Item, opts PrintOptions) {
	sortItems(items)
	if len(items) == 0 {
		fmt.Fprintln(w, "No sensitive data found ✅")
	} else {
		maxKind := 8
		for _, it := range items {
			maxKind = max(maxKind, len(it.Finding.Kind))
		}
		fmt.Fprintf(w, "Findings: %d\n", len(items))
		for _, it := range items {
			f := it.Finding
			kind := fmt.Sprintf("%-*s", maxKind, f.Kind)
			conf := fmt.Sprintf("%.2f", f.Confidence)
			val := displayValue(f, opts.ShowValues)
			if !opts.NoColor {
				kind = kindStyle.Render(kind)
				conf = confidenceStyle(f.Confidence).Render(conf)
				val = valueStyle.Render(val)
			}
			fmt.Fprintf(w, "%s %s %s:%d:%d  %s\n", kind, conf, it.Source, it.Line, it.Column, val)
		}
	}
	printFooter(w, items, opts)
}

func confidenceStyle(c float64) lipgloss.Style {
	switch {
	case c >= 0.9:
		return highStyle
	case c >= 0.6:
		return medStyle
	default:
		return lowStyle
	}
}

func printFooter(w io.Writer, items []Item, opts PrintOptions) {
	if opts.Duration <= 0 && opts.InputsScanned <= 0 {
		return
	}
	counts := map[string]int{}
	for _, it := range items {
		counts[it.Finding.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d", len(items))
	for i, k := range kinds {
		sep := ", "
		if i == 0 {
			sep = " ("
		}
		fmt.Fprintf(w, "%s%s: %d", sep, k, counts[k])
	}
	if len(kinds) > 0 {
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
	if opts.Failures > 0 {
		fmt.Fprintf(w, "Detector failures: %d\n", opts.Failures)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.InputsScanned > 0 {
		fmt.Fprintf(w, "Inputs scanned: %d\n", opts.InputsScanned)
	}
}
