package effectchain

import (
	"context"
	"time"
)

// DefaultPollInterval is the parameter polling period (about 60 Hz).
const DefaultPollInterval = time.Second / 60

// PollParameterChanges clears the change flag of every module's parameter
// block and requests a coefficient update for those that changed. It returns
// the number of modules updated.
func (r *Rack) PollParameterChanges() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, m := range r.chain.Users() {
		if m.block != nil && m.block.TakeChanged() {
			m.RequestUpdate()
			n++
		}
	}

	return n
}

// Run polls parameter changes every interval until ctx ends.
func (r *Rack) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.PollParameterChanges()
		}
	}
}
