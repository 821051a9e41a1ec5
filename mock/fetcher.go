package mock

import (
	"context"

	"github.com/sd2595101/querylist"
)

var _ querylist.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of querylist.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ querylist.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of querylist.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
