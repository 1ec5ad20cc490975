// Package worker contains the background reaper that reclaims seats
// from expired holds on a fixed schedule.
package worker

import (
	"context"
	"log"
	"time"
)

// ExpiredReaper is the operation the reaper drives.  It returns the
// number of reservations released for the given cutoff.
type ExpiredReaper interface {
	ReapExpired(ctx context.Context, now time.Time) (int, error)
}

// Reaper periodically releases expired holds.  A hold is not
// guaranteed to be released at its exact expiration instant, only by
// the first run after it; a failed run rolls back in full and is
// retried on the next tick.
type Reaper struct {
	service  ExpiredReaper
	interval time.Duration
}

// NewReaper returns a Reaper invoking service every interval.
func NewReaper(service ExpiredReaper, interval time.Duration) *Reaper {
	if service == nil {
		panic("nil service passed to NewReaper")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{service: service, interval: interval}
}

// Run blocks, reaping on every tick until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	log.Printf("reaper: started, interval=%s", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("reaper: stopped")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	released, err := r.service.ReapExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("reaper: run failed, retrying next tick: %v", err)
		return
	}
	if released > 0 {
		log.Printf("reaper: released %d expired reservations", released)
	}
}
