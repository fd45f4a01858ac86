package engine

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/redactable/redactable/internal/metrics"
	"github.com/redactable/redactable/internal/policy"
	"github.com/redactable/redactable/internal/redact"
	"github.com/redactable/redactable/internal/types"
)

// ErrUnsupportedAction is returned when a rule carries an action the engine
// has no transform for.
var ErrUnsupportedAction = errors.New("unsupported action")

// Replacement describes one rewrite performed while applying a policy.
type Replacement struct {
	RuleID string        `json:"rule_id"`
	Kind   string        `json:"kind"`
	Action policy.Action `json:"action"`
	// Original is the finding's span in the input text.
	Original types.Span `json:"original"`
	// Adjusted is where the span sat in the text when it was rewritten.
	Adjusted types.Span `json:"adjusted"`
	Text     string     `json:"-"`
	Delta    int        `json:"delta"`
}

// Result is the rewritten text plus every replacement in application order.
type Result struct {
	Text    string
	Applied []Replacement
}

// Counts tallies applied replacements by kind.
func (r Result) Counts() map[string]int {
	out := map[string]int{}
	for _, rep := range r.Applied {
		out[rep.Kind]++
	}
	return out
}

// Changed reports whether any replacement altered the text.
func (r Result) Changed(original string) bool { return r.Text != original }

// Engine applies policies. The zero value is not usable; call New.
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger  *log.Logger
	metrics *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithMetrics(c *metrics.Collector) Option { return func(e *Engine) { e.metrics = c } }

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

var std = New()

// Apply rewrites text with the package default engine.
func Apply(p *policy.Policy, findings []types.Finding, text string) (string, error) {
	return std.Apply(p, findings, text)
}

// ApplyDetailed is Apply that also reports each replacement.
func ApplyDetailed(p *policy.Policy, findings []types.Finding, text string) (Result, error) {
	return std.ApplyDetailed(p, findings, text)
}

// Apply rewrites text rule by rule and returns the result.
func (e *Engine) Apply(p *policy.Policy, findings []types.Finding, text string) (string, error) {
	res, err := e.ApplyDetailed(p, findings, text)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

type pending struct {
	finding  types.Finding
	adjusted types.Span
	text     string
}

// ApplyDetailed rewrites text rule by rule. Findings are grouped by kind;
// each rule takes the group named by its field, keeps what its where clause
// admits, maps every span into the current text through the ledger and
// rewrites right to left.
func (e *Engine) ApplyDetailed(p *policy.Policy, findings []types.Finding, text string) (Result, error) {
	if !p.Validated() {
		return Result{}, policy.ErrNotValidated
	}
	byKind := make(map[string][]types.Finding)
	for _, f := range findings {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}

	out := text
	var shifts ledger
	var applied []Replacement
	for _, rule := range p.Rules {
		group := byKind[rule.Field]
		if len(group) == 0 {
			continue
		}
		var batch []pending
		for _, f := range group {
			if !rule.Admits(f) {
				continue
			}
			adj := clamp(types.Span{
				Start: f.Span.Start + shifts.offset(f.Span.Start),
				End:   f.Span.End + shifts.offset(f.Span.End),
			}, len(out))
			repl, err := transform(rule, f, out[adj.Start:adj.End])
			if err != nil {
				return Result{}, err
			}
			batch = append(batch, pending{finding: f, adjusted: adj, text: repl})
		}
		if len(batch) == 0 {
			continue
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].adjusted.Start > batch[j].adjusted.Start
		})
		for _, b := range batch {
			out = out[:b.adjusted.Start] + b.text + out[b.adjusted.End:]
			delta := len(b.text) - b.adjusted.Len()
			shifts.record(b.finding.Span.Start, delta)
			applied = append(applied, Replacement{
				RuleID:   rule.ID,
				Kind:     b.finding.Kind,
				Action:   rule.Action,
				Original: b.finding.Span,
				Adjusted: b.adjusted,
				Text:     b.text,
				Delta:    delta,
			})
			e.metrics.Replaced(string(rule.Action), b.finding.Kind)
		}
		e.logger.Debug("rule applied", "rule", rule.ID, "field", rule.Field, "action", rule.Action, "replacements", len(batch))
	}
	return Result{Text: out, Applied: applied}, nil
}

// transform computes the replacement text for one finding. current is the
// finding's substring in the text as rewritten so far.
func transform(rule policy.Rule, f types.Finding, current string) (string, error) {
	switch rule.Action {
	case policy.ActionRedact:
		return redact.Placeholder(rule.Replacement, f.Kind), nil
	case policy.ActionMask:
		return redact.Mask(current, rule.KeepHead, rule.KeepTail, rule.MaskGlyph), nil
	case policy.ActionTokenize:
		v := f.Normalized
		if v == "" {
			v = f.Value
		}
		return redact.Token(v, rule.Salt), nil
	}
	return "", fmt.Errorf("%w: rule %s: %q", ErrUnsupportedAction, rule.ID, rule.Action)
}

func clamp(s types.Span, n int) types.Span {
	s.Start = min(max(s.Start, 0), n)
	s.End = min(max(s.End, s.Start), n)
	return s
}
