package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ElapseFunc consumes n whole seconds of exam time and reports whether the
// countdown should stop.
type ElapseFunc func(n int) (done bool)

// Countdown drives an exam clock from wall time. It converts the time that
// actually passed between ticker fires into whole intervals, so a stalled
// process catches up instead of drifting.
type Countdown struct {
	interval time.Duration
	elapse   ElapseFunc
	now      func() time.Time
	log      zerolog.Logger
}

// NewCountdown creates a new Countdown firing every interval.
func NewCountdown(interval time.Duration, elapse ElapseFunc, log zerolog.Logger) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		interval: interval,
		elapse:   elapse,
		now:      time.Now,
		log:      log.With().Str("component", "countdown").Logger(),
	}
}

// Start blocks until ctx is cancelled or elapse reports done.
func (c *Countdown) Start(ctx context.Context) {
	// Seeded before the ticker so the first fire is never short of an interval.
	last := c.now()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Debug().Dur("interval", c.interval).Msg("Countdown started")

	for {
		select {
		case <-ctx.Done():
			c.log.Debug().Msg("Countdown cancelled")
			return

		case <-ticker.C:
			n := c.due(last, c.now())
			if n < 1 {
				continue
			}
			if n > 1 {
				c.log.Warn().Int("intervals", n).Msg("Countdown fell behind, catching up")
			}
			last = last.Add(time.Duration(n) * c.interval)

			if c.elapse(n) {
				c.log.Debug().Msg("Countdown finished")
				return
			}
		}
	}
}

// due counts the whole intervals that have passed since last. A partial
// interval is never charged.
func (c *Countdown) due(last, now time.Time) int {
	passed := now.Sub(last)
	if passed <= 0 {
		return 0
	}
	return int(passed / c.interval)
}
