package ratelimiting

import (
	"context"
	"slices"
	"sync"
	"time"
)

// RequestLimiter bounds how often an operation may run
type RequestLimiter interface {
	// Limit runs operation once allowed to. Returns false if the operation did not run,
	// either because ctx was cancelled or because waiting would exceed the ctx deadline.
	Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool
}

// windowLimitRequestLimiter allows at most limit operations to finish within any window.
//
// It keeps the finish times of the last limit operations sorted ascending. An operation
// claims the oldest finish time, waits until it is a full window old, runs, and puts back
// its own finish time.
type windowLimitRequestLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	slots    chan struct{}
	finished []time.Time
	mutex    sync.Mutex
}

func NewWindowLimitRequestLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *windowLimitRequestLimiter {
	if limit <= 0 {
		panic("window limit must be positive")
	}

	slots := make(chan struct{}, limit)
	finished := make([]time.Time, 0, limit)
	longAgo := nowFunc().Add(-window)
	for range limit {
		slots <- struct{}{}
		finished = append(finished, longAgo)
	}

	return &windowLimitRequestLimiter{
		limit:     limit,
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,

		slots:    slots,
		finished: finished,
	}
}

func (l *windowLimitRequestLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case <-l.slots:
		defer func() {
			l.slots <- struct{}{}
		}()
	case <-ctx.Done():
		return false
	}

	oldest, ok := l.claimOldest(ctx, maxOperationTime)
	if !ok {
		return false
	}
	// Put back the claimed time unless the operation runs
	finishedAt := oldest
	defer func() {
		l.release(finishedAt)
	}()

	if wait := l.window - l.nowFunc().Sub(oldest); wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-l.afterFunc(wait):
		}
	}

	operation()

	finishedAt = l.nowFunc()
	return true
}

func (l *windowLimitRequestLimiter) claimOldest(ctx context.Context, maxOperationTime time.Duration) (time.Time, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	oldest := l.finished[0]

	if deadline, ok := ctx.Deadline(); ok {
		wait := l.window - l.nowFunc().Sub(oldest)
		if wait+maxOperationTime > deadline.Sub(l.nowFunc()) {
			return time.Time{}, false
		}
	}

	l.finished = l.finished[1:]
	return oldest, true
}

func (l *windowLimitRequestLimiter) release(finishedAt time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	i, _ := slices.BinarySearchFunc(l.finished, finishedAt, func(a, b time.Time) int {
		return a.Compare(b)
	})
	l.finished = slices.Insert(l.finished, i, finishedAt)
}

// Type assertion
var _ RequestLimiter = (*windowLimitRequestLimiter)(nil)
