// Package batch runs one rule set over many sources concurrently.
package batch

import (
	"context"
	"net/url"
	"time"

	"github.com/sd2595101/querylist"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Runner.Concurrency is not positive.
const DefaultConcurrency = 4

// Runner fetches sources, extracts records from each and optionally stores
// and exports the results.
type Runner struct {
	// Fetcher retrieves http and https sources.
	Fetcher querylist.Fetcher
	// Files retrieves every other source as a local path.
	Files querylist.Fetcher

	// Limiter, if set, spaces out requests to the same host, retries
	// included.
	Limiter querylist.DomainLimiter

	Extractor querylist.Extractor

	// Transform, if set, returns a per-source post-processor applied to
	// every record with querylist.MapCollection.
	Transform func(source string) querylist.RecordFunc

	// Extractions, if set, stores every successful extraction.
	Extractions querylist.ExtractionService
	// Writer, if set, exports every successful extraction.
	Writer querylist.ExtractionWriter

	// RulesPath and Range are recorded on every extraction.
	RulesPath string
	Range     string

	Concurrency int
	RetryDelays []time.Duration
	Logf        LogFunc
}

// Outcome is the result for one source. Exactly one of Extraction and Err
// is set.
type Outcome struct {
	Source     string
	Extraction *querylist.Extraction
	Err        error
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Source    string
	Records   int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress. It is never called
// concurrently.
type ProgressFunc func(event ProgressEvent)

// IsURL reports whether source is fetched over HTTP rather than read from
// disk.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Run processes every source and returns one outcome per source, in input
// order. A failing source does not stop the others.
func (r *Runner) Run(ctx context.Context, sources []string, progress ProgressFunc) []Outcome {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(sources)
	notify := func(e ProgressEvent) {
		if progress != nil {
			progress(e)
		}
	}
	notify(ProgressEvent{Type: ProgressStarted, Total: total})

	outcomes := make([]Outcome, total)
	done := make(chan int, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, source := range sources {
			g.Go(func() error {
				outcomes[i] = r.process(gctx, source)
				done <- i
				return nil
			})
		}
		_ = g.Wait()
		close(done)
	}()

	completed := 0
	for i := range done {
		completed++
		n := completed
		o := outcomes[i]
		if o.Err != nil {
			notify(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, Source: o.Source, Error: o.Err})
			continue
		}
		notify(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, Source: o.Source, Records: len(o.Extraction.Records)})
	}

	// Storage writes run in source order on the caller's goroutine.
	for i := range outcomes {
		o := &outcomes[i]
		if o.Err != nil {
			continue
		}
		if r.Extractions != nil {
			if err := r.Extractions.CreateExtraction(ctx, o.Extraction); err != nil {
				o.Extraction, o.Err = nil, err
				continue
			}
		}
		if r.Writer != nil {
			if err := r.Writer.WriteExtraction(ctx, o.Extraction); err != nil {
				o.Extraction, o.Err = nil, err
			}
		}
	}

	notify(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	return outcomes
}

func (r *Runner) process(ctx context.Context, source string) Outcome {
	out := Outcome{Source: source}

	fetcher := r.Files
	remote := IsURL(source)
	if remote {
		fetcher = r.Fetcher
	}
	if fetcher == nil {
		out.Err = querylist.Errorf(querylist.EINVALID, "no fetcher configured for %q", source)
		return out
	}

	fetch := fetcher.Fetch
	if remote && r.Limiter != nil {
		fetch = func(ctx context.Context, source string) (string, error) {
			u, _ := url.Parse(source)
			if err := r.Limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
			return fetcher.Fetch(ctx, source)
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetryDelays(ctx, source, fetch, r.Logf, delays)
	if err != nil {
		out.Err = err
		return out
	}

	records, err := r.Extractor.Extract(html)
	if err != nil {
		out.Err = err
		return out
	}

	if r.Transform != nil {
		if records, err = querylist.MapCollection(records, r.Transform(source)); err != nil {
			out.Err = err
			return out
		}
	}

	out.Extraction = &querylist.Extraction{
		SourceURL: source,
		RulesPath: r.RulesPath,
		Range:     r.Range,
		Records:   records,
	}
	return out
}

// Failed returns the number of outcomes with an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
