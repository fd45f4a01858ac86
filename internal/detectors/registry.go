package detectors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/redactable/redactable/internal/metrics"
	"github.com/redactable/redactable/internal/types"
)

var (
	// ErrDetectorFailed wraps any error, panic or invalid output from one detector.
	ErrDetectorFailed = errors.New("detector failed")
	// ErrSpanMismatch marks a finding whose span does not address its value.
	ErrSpanMismatch = errors.New("finding span does not match input")
)

// Result is the outcome of running one detector during a scan. When Err is
// set, Findings is nil: nothing from a failed detector is trusted.
type Result struct {
	Detector string
	Findings []types.Finding
	Err      error
	Duration time.Duration
}

// OK reports whether the detector completed without error.
func (r Result) OK() bool { return r.Err == nil }

// Report is the full outcome of a scan.
type Report struct {
	// Findings from every successful detector, sorted by (start, end).
	Findings []types.Finding
	// Results in registration order.
	Results []Result
}

// Failed returns the results whose detector failed.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Registry holds an ordered set of detectors. It is safe for concurrent
// use; Register and Unregister never race with an in-flight scan.
type Registry struct {
	mu        sync.RWMutex
	detectors []Detector

	region      string
	workers     int
	honorIgnore bool
	logger      *log.Logger
	metrics     *metrics.Collector
}

// Default returns a registry holding the built-in detectors for region.
func Default(region string) *Registry {
	return NewBuilder().Region(region).Defaults().Build()
}

// Register appends d, replacing any detector already registered under the
// same name in place.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.detectors {
		if existing.Name() == d.Name() {
			r.detectors[i] = d
			return
		}
	}
	r.detectors = append(r.detectors, d)
}

// Unregister removes the detector named name and reports whether it existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.detectors {
		if d.Name() == name {
			r.detectors = slices.Delete(r.detectors, i, i+1)
			return true
		}
	}
	return false
}

// Detectors returns a snapshot of the registered detectors.
func (r *Registry) Detectors() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.detectors)
}

// Names returns the registered detector names in order.
func (r *Registry) Names() []string {
	ds := r.Detectors()
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name()
	}
	return out
}

// Region is the default phone region applied when a scan has no context.
func (r *Registry) Region() string { return r.region }

// Scan runs every detector over text and returns the merged findings.
func (r *Registry) Scan(text string) []types.Finding {
	return r.ScanReport(context.Background(), text, nil).Findings
}

// ScanReport runs every detector and returns the per-detector outcome
// alongside the merged findings. Detectors not started before ctx is
// cancelled are recorded as failed with ctx's error.
func (r *Registry) ScanReport(ctx context.Context, text string, dctx *Context) Report {
	started := time.Now()
	ds := r.Detectors()
	dctx = r.withDefaults(dctx)

	results := make([]Result, len(ds))
	if r.workers > 1 && len(ds) > 1 {
		g := new(errgroup.Group)
		g.SetLimit(r.workers)
		for i, d := range ds {
			g.Go(func() error {
				results[i] = r.run(ctx, d, text, dctx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, d := range ds {
			results[i] = r.run(ctx, d, text, dctx)
		}
	}

	var ignored []types.Span
	if r.honorIgnore {
		ignored = IgnoredRegions(text)
	}
	var merged []types.Finding
	for _, res := range results {
		if !res.OK() {
			r.logger.Warn("detector failed", "detector", res.Detector, "err", res.Err)
			r.metrics.DetectorFailed(res.Detector)
			continue
		}
		for _, f := range res.Findings {
			if ignored != nil && insideAny(f.Span, ignored) {
				continue
			}
			merged = append(merged, f)
			r.metrics.AddFindings(f.Kind, 1)
		}
	}
	sortFindings(merged)
	r.metrics.ObserveScan(time.Since(started))
	r.logger.Debug("scan complete", "detectors", len(ds), "findings", len(merged), "elapsed", time.Since(started))
	return Report{Findings: merged, Results: results}
}

func (r *Registry) withDefaults(dctx *Context) *Context {
	if dctx != nil && dctx.Region != "" {
		return dctx
	}
	c := Context{}
	if dctx != nil {
		c = *dctx
	}
	c.Region = r.region
	return &c
}

// run executes one detector, converting errors, panics and span violations
// into a failed Result.
func (r *Registry) run(ctx context.Context, d Detector, text string, dctx *Context) (res Result) {
	res.Detector = d.Name()
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrDetectorFailed, err)
		return res
	}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Findings = nil
			res.Err = fmt.Errorf("%w: panic: %v", ErrDetectorFailed, p)
		}
		res.Duration = time.Since(start)
	}()

	found, err := d.Detect(text, dctx)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrDetectorFailed, err)
		return res
	}
	for _, f := range found {
		if !f.Matches(text) {
			res.Err = fmt.Errorf("%w: %w: %s at [%d,%d)", ErrDetectorFailed, ErrSpanMismatch, f.Kind, f.Span.Start, f.Span.End)
			return res
		}
	}
	res.Findings = found
	return res
}

// sortFindings orders by (start, end); equal spans keep their input order.
func sortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Span.Start != fs[j].Span.Start {
			return fs[i].Span.Start < fs[j].Span.Start
		}
		return fs[i].Span.End < fs[j].Span.End
	})
}
