package report

import (
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID     string         `json:"ruleId"`
	RuleIndex  int            `json:"ruleIndex"`
	Level      string         `json:"level"`
	Message    sarifMessage   `json:"message"`
	Locations  []sarifLoc     `json:"locations"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	CharOffset  int `json:"charOffset"`
	CharLength  int `json:"charLength"`
}

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

func confidenceToLevel(c float64) string {
	switch {
	case c >= 0.9:
		return "error"
	case c >= 0.6:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes items as SARIF 2.1.0. Regions carry the byte offset
// and length of each span alongside line and column.
func WriteSARIF(w io.Writer, items []Item, version string) error {
	return WriteSARIFWithStats(w, items, version, nil)
}

// WriteSARIFWithStats is WriteSARIF with run-level properties attached.
func WriteSARIFWithStats(w io.Writer, items []Item, version string, stats map[string]int) error {
	sortItems(items)
	kinds := map[string]bool{}
	for _, it := range items {
		kinds[it.Finding.Kind] = true
	}
	ruleIDs := make([]string, 0, len(kinds))
	for k := range kinds {
		ruleIDs = append(ruleIDs, k)
	}
	sort.Strings(ruleIDs)
	index := make(map[string]int, len(ruleIDs))
	rules := make([]sarifRule, 0, len(ruleIDs))
	for i, id := range ruleIDs {
		index[id] = i
		rules = append(rules, sarifRule{ID: id, Name: id, ShortDescription: sarifMessage{Text: fmt.Sprintf("Sensitive data: %s", id)}})
	}

	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "redactable", Version: version, Rules: rules}},
		Results: []sarifResult{},
	}
	for _, it := range items {
		f := it.Finding
		run.Results = append(run.Results, sarifResult{
			RuleID:    f.Kind,
			RuleIndex: index[f.Kind],
			Level:     confidenceToLevel(f.Confidence),
			Message:   sarifMessage{Text: fmt.Sprintf("%s detected (confidence %.2f)", f.Kind, f.Confidence)},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: it.Source},
					Region: sarifRegion{
						StartLine:   it.Line,
						StartColumn: it.Column,
						CharOffset:  f.Span.Start,
						CharLength:  f.Span.Len(),
					},
				},
			}},
			Properties: map[string]any{"confidence": f.Confidence},
		})
	}
	if len(stats) > 0 {
		run.Properties = map[string]any{}
		for k, v := range stats {
			run.Properties[k] = v
		}
	}
	doc := sarif{Schema: sarifSchema, Version: "2.1.0", Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
