package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hueshift/hueshift/pkg/log"
)

// TimeoutError indicates the candidate never became ready before the
// deployment deadline. The deployer treats this as fatal: the candidate is
// removed and no traffic switch occurs.
type TimeoutError struct {
	Elapsed     time.Duration
	Attempts    int
	LastMessage string
}

func (e *TimeoutError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("readiness deadline elapsed after %v before any probe completed", e.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("readiness deadline elapsed after %v (%d probes, last: %s)",
		e.Elapsed.Round(time.Millisecond), e.Attempts, e.LastMessage)
}

// Prober polls a Checker until it reports ready or the context is
// cancelled. The overall deadline comes from the caller's context; the
// interval and the optional start period are the prober's own.
type Prober struct {
	checker     Checker
	interval    time.Duration
	startPeriod time.Duration
}

// NewProber creates a prober polling checker every interval, after an
// optional startPeriod grace delay for slow-starting containers.
func NewProber(checker Checker, interval, startPeriod time.Duration) *Prober {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Prober{
		checker:     checker,
		interval:    interval,
		startPeriod: startPeriod,
	}
}

// WaitReady blocks until a probe succeeds. It returns the number of probes
// performed, and a *TimeoutError when ctx expires first.
func (p *Prober) WaitReady(ctx context.Context) (int, error) {
	logger := log.WithComponent("prober")
	start := time.Now()
	attempts := 0
	lastMessage := ""

	if p.startPeriod > 0 {
		logger.Debug().Dur("start_period", p.startPeriod).Msg("waiting before first probe")
		select {
		case <-time.After(p.startPeriod):
		case <-ctx.Done():
			return 0, &TimeoutError{Elapsed: time.Since(start)}
		}
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		attempts++
		result := p.checker.Check(ctx)
		if result.Healthy {
			logger.Info().Int("attempts", attempts).
				Dur("elapsed", time.Since(start)).Msg("candidate ready")
			return attempts, nil
		}
		lastMessage = result.Message
		logger.Debug().Int("attempt", attempts).Str("result", result.Message).Msg("probe failed")

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return attempts, &TimeoutError{
				Elapsed:     time.Since(start),
				Attempts:    attempts,
				LastMessage: lastMessage,
			}
		}
	}
}
