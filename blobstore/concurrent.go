package blobstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RequestShaper bounds how many concurrent object-store requests Upload
// and Load may issue, and how fast they may issue them — grounded on
// resource/controller.go's semaphore.Weighted + rate.Limiter pair, applied
// here to chunk-level object-store calls instead of background-worker
// scheduling.
type RequestShaper struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewRequestShaper returns a shaper allowing at most maxConcurrency
// in-flight requests and, if requestsPerSecond > 0, at most that many new
// requests per second. maxConcurrency <= 0 means unlimited.
func NewRequestShaper(maxConcurrency int64, requestsPerSecond float64) *RequestShaper {
	s := &RequestShaper{}
	if maxConcurrency > 0 {
		s.sem = semaphore.NewWeighted(maxConcurrency)
	}
	if requestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1)
	}
	return s
}

func (s *RequestShaper) acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

func (s *RequestShaper) release() {
	if s != nil && s.sem != nil {
		s.sem.Release(1)
	}
}

// ReadAll fetches every path concurrently, bounded by shaper (nil means
// unbounded), and returns path → bytes. It cancels the remaining reads on
// the first error, matching errgroup's fail-fast behavior.
func ReadAll(ctx context.Context, store ObjectStore, paths []string, shaper *RequestShaper) (map[string][]byte, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[string][]byte, len(paths))

	for _, p := range paths {
		p := p
		g.Go(func() error {
			if err := shaper.acquire(ctx); err != nil {
				return err
			}
			defer shaper.release()

			data, err := store.Read(ctx, p)
			if err != nil {
				return err
			}
			mu.Lock()
			out[p] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteAll writes every path → bytes entry concurrently, bounded by
// shaper.
func WriteAll(ctx context.Context, store ObjectStore, blobs map[string][]byte, shaper *RequestShaper) error {
	g, ctx := errgroup.WithContext(ctx)

	for path, data := range blobs {
		path, data := path, data
		g.Go(func() error {
			if err := shaper.acquire(ctx); err != nil {
				return err
			}
			defer shaper.release()
			return store.Write(ctx, path, data)
		})
	}
	return g.Wait()
}

// ObjectStore mirrors the collaborator interface the index package
// declares (spec §6.4). Declared again here, structurally identical, so
// this package's helpers can be used or tested without importing the
// index's root package.
type ObjectStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	ListWithSizes(ctx context.Context, prefix string) (map[string]int64, error)
}
