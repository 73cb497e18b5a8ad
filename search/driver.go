package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
)

// ErrCancelled is returned when the coordinator sees ctx cancelled before
// every query finishes. No partial results are returned: a cancelled search reports
// nothing.
var ErrCancelled = errors.New("search: cancelled")

// abort coordinates cancellation across the query-parallel fan-out the way
// Search.c's single shared `abort` int does under OpenMP: 0 means keep
// going, a negative value means the caller cancelled, and a positive value
// is 1-based the index of the query whose hit count overflowed.
type abortState struct {
	v int64 // 0 = running; <0 = cancelled; >0 = 1-based overflowing query index
}

func (a *abortState) set(v int64) {
	for {
		cur := atomic.LoadInt64(&a.v)
		if cur != 0 {
			return // first abort reason wins
		}
		if atomic.CompareAndSwapInt64(&a.v, 0, v) {
			return
		}
	}
}

func (a *abortState) get() int64 { return atomic.LoadInt64(&a.v) }

// progressCoordinator gates cancellation polling and progress callbacks to
// at most once per wall-clock second, run from whichever goroutine happens
// to finish a query right after the gate opens — analogous to the
// omp_get_thread_num()==0 "master thread" check in the original
// OpenMP-parallel loop, except here any worker may win the race to act as
// coordinator for that tick.
type progressCoordinator struct {
	last        int64 // unix nanos of the last tick, via atomic swap
	n           int64 // completed query count
	total       int64
	lastPercent int64 // last integer percentage reported, -1 until first report
	progress    func(float64)
}

func newProgressCoordinator(total int, progress func(float64)) *progressCoordinator {
	return &progressCoordinator{total: int64(total), lastPercent: -1, progress: progress}
}

func (p *progressCoordinator) completeOne(ctx context.Context, ab *abortState) {
	n := atomic.AddInt64(&p.n, 1)
	now := time.Now().UnixNano()
	last := atomic.LoadInt64(&p.last)
	if now-last < int64(time.Second) {
		return
	}
	if !atomic.CompareAndSwapInt64(&p.last, last, now) {
		return // another goroutine is already the coordinator for this tick
	}
	select {
	case <-ctx.Done():
		ab.set(-1)
	default:
	}
	if ab.get() != 0 || p.progress == nil {
		return
	}
	percent := n * 100 / p.total
	if prev := atomic.LoadInt64(&p.lastPercent); percent > prev && atomic.CompareAndSwapInt64(&p.lastPercent, prev, percent) {
		p.progress(float64(percent) / 100)
	}
}

// runParallel dispatches fn(i) for i in [0,n) across the available
// parallelism, stopping early (and returning ErrCancelled or an
// ErrTooManyHits-wrapped error) as soon as any query aborts. It reports
// progress at most once a second via progress, if non-nil.
func runParallel(ctx context.Context, n int, progress func(float64), fn func(i int) error) error {
	ab := &abortState{}
	coord := newProgressCoordinator(n, progress)

	err := traverse.Each(n, func(i int) error {
		if ab.get() != 0 {
			return nil
		}
		if err := fn(i); err != nil {
			if overflow, ok := err.(overflowError); ok {
				ab.set(int64(overflow.queryIndex))
			}
			return err
		}
		coord.completeOne(ctx, ab)
		return nil
	})

	switch v := ab.get(); {
	case v < 0:
		return ErrCancelled
	case v > 0:
		return errors.Wrapf(ErrTooManyHits, "query %d", v)
	}
	if err != nil {
		log.Printf("search: unexpected per-query error: %v", err)
		return err
	}
	return nil
}

// overflowError tags an ErrTooManyHits occurrence with its 1-based query
// index so runParallel can record it in the shared abort state.
type overflowError struct {
	queryIndex int
}

func (overflowError) Error() string { return ErrTooManyHits.Error() }
