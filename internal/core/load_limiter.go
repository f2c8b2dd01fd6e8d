package core

// load_limiter.go bounds how many uploads are decoded at once.
//
// Loading holds the whole file plus its parsed columns in memory, so the
// limiter is a semaphore sized by UPLOAD_MAX_CONCURRENT. A request waits up
// to maxWait for a slot before failing with ErrTooManyLoads.

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyLoads is returned when every load slot stays busy for the whole
// wait period. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many uploads in progress, please try again later")

const (
	DefaultMaxConcurrentLoads = 5
	DefaultMaxLoadWait        = 30 * time.Second
)

// LoadLimiter is a counting semaphore with a bounded wait.
type LoadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewLoadLimiter allows at most maxConcurrent loads. Non-positive arguments
// fall back to the defaults.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxLoadWait
	}
	return &LoadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it when the load is done.
// A cancelled ctx returns ctx.Err(); an exhausted wait returns
// ErrTooManyLoads.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyLoads
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *LoadLimiter) Release() {
	<-l.slots
}

// LoadLimiterStatus is a snapshot of the limiter.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current slot usage.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	active := len(l.slots)
	return LoadLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until every acquired slot is released or ctx ends.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for len(l.slots) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
