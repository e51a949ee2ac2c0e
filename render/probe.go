package render

import (
	"context"
	"sync"

	"github.com/xterra/fieldreport/report"
)

// probeResult is the outcome of one natural-size probe.
type probeResult struct {
	Size Size
	Err  error
}

// OK reports whether the probe produced usable dimensions.
func (r probeResult) OK() bool { return r.Err == nil && r.Size.Width > 0 && r.Size.Height > 0 }

// probeAll probes every reference with at most limit probes in flight.
// Results keep the order of refs; one failure does not affect the others.
// It returns early only if ctx is done before the probes start.
func probeAll(ctx context.Context, src ImageSource, refs []report.ImageRef, limit int) ([]probeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}
	results := make([]probeResult, len(refs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, ref := range refs {
		if ref == "" {
			results[i] = probeResult{Err: errNoImage}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ref report.ImageRef) {
			defer wg.Done()
			defer func() { <-sem }()
			size, err := src.Probe(ctx, ref)
			results[i] = probeResult{Size: size, Err: err}
		}(i, ref)
	}
	wg.Wait()
	return results, nil
}
