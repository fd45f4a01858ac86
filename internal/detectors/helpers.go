package detectors

import (
	"regexp"

	"github.com/redactable/redactable/internal/types"
)

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWord(c byte) bool { return isAlnum(c) || c == '_' }

// before returns the byte preceding i, or 0 at the start of text.
func before(text string, i int) byte {
	if i <= 0 {
		return 0
	}
	return text[i-1]
}

// after returns the byte at i, or 0 past the end of text.
func after(text string, i int) byte {
	if i >= len(text) {
		return 0
	}
	return text[i]
}

// guard decides whether a prefilter hit at [start,end) stands on its own.
type guard func(text string, start, end int) bool

func digitBounded(text string, start, end int) bool {
	return !isDigit(before(text, start)) && !isDigit(after(text, end))
}

func alnumBounded(text string, start, end int) bool {
	return !isAlnum(before(text, start)) && !isAlnum(after(text, end))
}

// findGuarded returns prefilter matches accepted by g. A rejected match does
// not consume its bytes: the search resumes one byte after its start, so a
// valid candidate overlapping a rejected one is still found.
func findGuarded(re *regexp.Regexp, text string, g guard) []types.Span {
	var out []types.Span
	pos := 0
	for pos < len(text) {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if g == nil || g(text, start, end) {
			out = append(out, types.Span{Start: start, End: end})
			if end == start {
				end++
			}
			pos = end
			continue
		}
		pos = start + 1
	}
	return out
}
