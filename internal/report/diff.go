package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line-level unified diff of before and after for
// source. It returns "" when the texts are equal.
func UnifiedDiff(source, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, l := range splitKeep(d.Text) {
			all = append(all, diffLine{op: d.Type, text: l})
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", source, source)
	for _, h := range hunks(all) {
		writeHunk(&sb, all, h)
	}
	return sb.String()
}

// WriteDiff writes UnifiedDiff output to w.
func WriteDiff(w io.Writer, source, before, after string) error {
	_, err := io.WriteString(w, UnifiedDiff(source, before, after))
	return err
}

type hunk struct {
	from, to int // indexes into the line list, to exclusive
}

func hunks(all []diffLine) []hunk {
	var out []hunk
	for i := 0; i < len(all); i++ {
		if all[i].op == diffmatchpatch.DiffEqual {
			continue
		}
		start := max(0, i-diffContext)
		end := i
		// extend over changes separated by at most 2*context equal lines
		for j := i; j < len(all); j++ {
			if all[j].op != diffmatchpatch.DiffEqual {
				end = j
				continue
			}
			if j-end > 2*diffContext {
				break
			}
		}
		stop := min(len(all), end+diffContext+1)
		if n := len(out); n > 0 && out[n-1].to >= start {
			out[n-1].to = stop
		} else {
			out = append(out, hunk{from: start, to: stop})
		}
		i = end
	}
	return out
}

func writeHunk(sb *strings.Builder, all []diffLine, h hunk) {
	oldStart, newStart := 1, 1
	for _, l := range all[:h.from] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}
	oldLen, newLen := 0, 0
	for _, l := range all[h.from:h.to] {
		if l.op != diffmatchpatch.DiffInsert {
			oldLen++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newLen++
		}
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen)
	for _, l := range all[h.from:h.to] {
		prefix := " "
		switch l.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		sb.WriteString(prefix + l.text)
		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\n\\ No newline at end of file\n")
		}
	}
}

func splitKeep(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
