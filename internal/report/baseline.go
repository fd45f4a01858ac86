package report

import (
	"os"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
)

// Baseline is a set of accepted findings. Keys hash the matched value so
// the baseline file never holds the sensitive text itself.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, items []Item) error {
	b := Baseline{Items: map[string]bool{}}
	for _, it := range items {
		b.Items[key(it)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0600)
}

// FilterNew drops items already present in the baseline.
func FilterNew(items []Item, base Baseline) []Item {
	var out []Item
	for _, it := range items {
		if !base.Items[key(it)] {
			out = append(out, it)
		}
	}
	return out
}

func key(it Item) string {
	return it.Source + "|" + it.Finding.Kind + "|" + strconv.FormatUint(xxhash.Sum64String(it.Finding.Value), 16)
}

// ShouldFail reports whether any item reaches the failOn level: "low"
// (any finding), "medium" (confidence >= 0.6) or "high" (>= 0.9). Unknown
// levels behave like "medium".
func ShouldFail(items []Item, failOn string) bool {
	th := map[string]float64{"low": 0, "medium": 0.6, "high": 0.9}
	min, ok := th[failOn]
	if !ok {
		min = 0.6
	}
	for _, it := range items {
		if it.Finding.Confidence >= min {
			return true
		}
	}
	return false
}
