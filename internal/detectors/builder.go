package detectors

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/redactable/redactable/internal/metrics"
)

// Builder assembles a Registry. Detectors are registered in the order they
// were added, with the built-in set (if requested) placed where Defaults
// was called.
type Builder struct {
	region      string
	phone       PhoneValidator
	steps       []func(region string, phone PhoneValidator) []Detector
	disabled    map[string]bool
	workers     int
	honorIgnore bool
	logger      *log.Logger
	metrics     *metrics.Collector
}

func NewBuilder() *Builder {
	return &Builder{region: DefaultRegion, disabled: map[string]bool{}}
}

// Region sets the default phone region.
func (b *Builder) Region(region string) *Builder {
	if region != "" {
		b.region = strings.ToUpper(region)
	}
	return b
}

// PhoneValidator selects the phone validation strategy for the built-in set.
func (b *Builder) PhoneValidator(v PhoneValidator) *Builder {
	b.phone = v
	return b
}

// Defaults adds the built-in detectors.
func (b *Builder) Defaults() *Builder {
	b.steps = append(b.steps, Defaults)
	return b
}

// Add appends custom detectors.
func (b *Builder) Add(ds ...Detector) *Builder {
	b.steps = append(b.steps, func(string, PhoneValidator) []Detector { return ds })
	return b
}

// Disable drops detectors by name at Build time.
func (b *Builder) Disable(names ...string) *Builder {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			b.disabled[n] = true
		}
	}
	return b
}

// Concurrency runs up to n detectors at once; n <= 1 scans sequentially.
func (b *Builder) Concurrency(n int) *Builder {
	b.workers = n
	return b
}

// HonorIgnoreMarkers drops findings on lines carrying redactable:ignore markers.
func (b *Builder) HonorIgnoreMarkers(on bool) *Builder {
	b.honorIgnore = on
	return b
}

func (b *Builder) Logger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) Metrics(c *metrics.Collector) *Builder {
	b.metrics = c
	return b
}

// Build returns the configured registry.
func (b *Builder) Build() *Registry {
	r := &Registry{
		region:      b.region,
		workers:     b.workers,
		honorIgnore: b.honorIgnore,
		logger:      b.logger,
		metrics:     b.metrics,
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	for _, step := range b.steps {
		for _, d := range step(b.region, b.phone) {
			if !b.disabled[d.Name()] {
				r.Register(d)
			}
		}
	}
	return r
}
