package capture

import (
	"context"
	"time"
)

// Stepper advances a match by one round and reports whether it is over.
type Stepper interface {
	PerformRound() bool
}

// Driver advances a match on its own goroutine until the match is over or
// the driver is stopped.
type Driver struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartDriver resolves a round, waits delay, and repeats. Cancellation is
// checked between rounds, so a round already being resolved completes.
func StartDriver(ctx context.Context, s Stepper, delay time.Duration) *Driver {
	ctx, cancel := context.WithCancel(ctx)
	d := &Driver{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(d.done)
		timer := time.NewTimer(delay)
		defer timer.Stop()

		for {
			if ctx.Err() != nil || s.PerformRound() {
				return
			}
			timer.Reset(delay)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}()

	return d
}

// Stop requests the driver to end and waits for its goroutine to exit.
func (d *Driver) Stop() {
	d.cancel()
	<-d.done
}

// Done is closed once the driver goroutine has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}
