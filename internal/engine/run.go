package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/redactable/redactable/internal/detectors"
	"github.com/redactable/redactable/internal/policy"
	"github.com/redactable/redactable/internal/types"
)

// Config controls a batch run.
type Config struct {
	// Threads bounds how many documents are processed at once; <= 0 means
	// GOMAXPROCS.
	Threads          int
	MinConfidence    float64
	EnableDetectors  string
	DisableDetectors string
	// Detection tuning passed to every detector.
	Detect *detectors.Context
	// DryRun detects but never rewrites.
	DryRun bool
}

// Document is one unit of input: a file, a line or stdin.
type Document struct {
	Source string
	Text   string
}

// Outcome is what happened to one document.
type Outcome struct {
	Source      string
	Fingerprint string
	Findings    []types.Finding
	Failures    []detectors.Result
	// Rewrite is zero when no policy was given or DryRun is set.
	Rewrite Result
	Err     error
}

// Changed reports whether the document text was rewritten.
func (o Outcome) Changed(doc Document) bool {
	return len(o.Rewrite.Applied) > 0 && o.Rewrite.Text != doc.Text
}

// RunResult contains per-document outcomes, in input order, and basic stats.
type RunResult struct {
	Outcomes         []Outcome
	DocumentsScanned int
	Duration         time.Duration
}

// Findings returns every finding across the run.
func (r RunResult) Findings() []types.Finding {
	var out []types.Finding
	for _, o := range r.Outcomes {
		out = append(out, o.Findings...)
	}
	return out
}

// Run scans every document with reg and, when p is non-nil, rewrites it with
// p. Documents are processed concurrently but outcomes keep input order. A
// per-document rewrite error is recorded on its Outcome; Run itself only
// fails when ctx is cancelled.
func (e *Engine) Run(ctx context.Context, cfg Config, reg *detectors.Registry, p *policy.Policy, docs []Document) (RunResult, error) {
	started := time.Now()
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if p != nil && !p.Validated() {
		return RunResult{}, policy.ErrNotValidated
	}

	outcomes := make([]Outcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = e.process(gctx, cfg, reg, p, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, err
	}
	res := RunResult{Outcomes: outcomes, DocumentsScanned: len(docs), Duration: time.Since(started)}
	e.logger.Debug("run complete", "documents", len(docs), "findings", len(res.Findings()), "elapsed", res.Duration)
	return res, nil
}

func (e *Engine) process(ctx context.Context, cfg Config, reg *detectors.Registry, p *policy.Policy, doc Document) Outcome {
	out := Outcome{Source: doc.Source, Fingerprint: Fingerprint([]byte(doc.Text))}
	report := reg.ScanReport(ctx, doc.Text, cfg.Detect)
	out.Failures = report.Failed()
	findings := filterByConfidence(report.Findings, cfg.MinConfidence)
	out.Findings = filterByKinds(findings, cfg.EnableDetectors, cfg.DisableDetectors)
	if p == nil || cfg.DryRun {
		return out
	}
	out.Rewrite, out.Err = e.ApplyDetailed(p, out.Findings, doc.Text)
	if out.Err != nil {
		e.logger.Error("apply failed", "source", doc.Source, "err", out.Err)
	}
	return out
}

// Fingerprint is a short stable hash of an input, used to correlate audit
// records without storing the input.
func Fingerprint(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
