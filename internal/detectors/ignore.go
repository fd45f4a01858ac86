package detectors

import (
	"strings"

	"github.com/redactable/redactable/internal/types"
)

// Inline markers that exclude parts of a text from scanning.
const (
	markerIgnore      = "redactable:ignore"
	markerIgnoreStart = "redactable:ignore-start"
	markerIgnoreEnd   = "redactable:ignore-end"
	markerIgnoreNext  = "redactable:ignore-next-line"
)

// IgnoredRegions returns the byte ranges covered by ignore markers: whole
// lines carrying "redactable:ignore", the line after
// "redactable:ignore-next-line", and every line between
// "redactable:ignore-start" and "redactable:ignore-end". An unterminated
// start marker runs to the end of the text.
func IgnoredRegions(text string) []types.Span {
	if !strings.Contains(text, markerIgnore) {
		return nil
	}
	var out []types.Span
	inRegion := false
	skipNext := false
	pos := 0
	for pos <= len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += pos
		}
		line := text[pos:end]
		cover := false
		switch {
		case strings.Contains(line, markerIgnoreStart):
			inRegion, cover = true, true
		case strings.Contains(line, markerIgnoreEnd):
			inRegion, cover = false, true
		case inRegion || skipNext:
			skipNext, cover = false, true
		case strings.Contains(line, markerIgnoreNext):
			skipNext, cover = true, true
		case strings.Contains(line, markerIgnore):
			cover = true
		}
		if cover {
			if n := len(out); n > 0 && out[n-1].End >= pos-1 {
				out[n-1].End = end
			} else {
				out = append(out, types.Span{Start: pos, End: end})
			}
		}
		if end == len(text) {
			break
		}
		pos = end + 1
	}
	return out
}

func insideAny(sp types.Span, regions []types.Span) bool {
	for _, r := range regions {
		if sp.Start < r.End && sp.End > r.Start || sp.Start == sp.End && sp.Start >= r.Start && sp.Start <= r.End {
			return true
		}
	}
	return false
}
