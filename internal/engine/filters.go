package engine

import (
	"strings"

	"github.com/redactable/redactable/internal/types"
)

func filterByConfidence(fs []types.Finding, min float64) []types.Finding {
	if min <= 0 {
		return fs
	}
	var out []types.Finding
	for _, f := range fs {
		if f.Confidence >= min {
			out = append(out, f)
		}
	}
	return out
}

// filterByKinds keeps findings whose kind is in enable (when set) and not in
// disable. Both are comma-separated lists.
func filterByKinds(fs []types.Finding, enable, disable string) []types.Finding {
	if enable == "" && disable == "" {
		return fs
	}
	allowed := parseList(enable)
	blocked := parseList(disable)
	var out []types.Finding
	for _, f := range fs {
		if enable != "" && !allowed[f.Kind] {
			continue
		}
		if blocked[f.Kind] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseList(s string) map[string]bool {
	out := map[string]bool{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			out[id] = true
		}
	}
	return out
}
