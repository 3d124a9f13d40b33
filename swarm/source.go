// Package swarm is the orchestrator: one worker per watched symbol polling a
// signal source, all actionable signals funneled through a single serializing
// arbitrator that consults the risk manager and the broker.
package swarm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is one analysis verdict from the external signal source.
type Signal struct {
	Action     Action
	Confidence float64
	Price      float64
	Reason     string
}

// Source is the external signal-generation collaborator: opaque, possibly
// slow, possibly failing. Every error is treated as HOLD for the cycle.
type Source interface {
	Analyze(ctx context.Context, symbol string) (Signal, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbol string) (Signal, error)

func (f SourceFunc) Analyze(ctx context.Context, symbol string) (Signal, error) {
	return f(ctx, symbol)
}

// Market regimes, consumed not computed. CRASH halts approvals; CHOP raises
// the confidence bar.
type Regime string

const (
	RegimeTrend Regime = "TREND"
	RegimeChop  Regime = "CHOP"
	RegimeCrash Regime = "CRASH"
)

type RegimeSource interface {
	Regime(ctx context.Context) (Regime, error)
}

// GuardedSource wraps a Source with a shared rate limiter, a per-call
// timeout, and a circuit breaker, so one flapping provider is shed instead
// of hammered and concurrent workers stay polite.
type GuardedSource struct {
	inner   Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewGuardedSource(inner Source, rps float64, timeout time.Duration) *GuardedSource {
	settings := gobreaker.Settings{Name: "signal-source"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 60 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
	}

	return &GuardedSource{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: timeout,
	}
}

func (g *GuardedSource) Analyze(ctx context.Context, symbol string) (Signal, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return Signal{}, err
	}

	v, err := g.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return g.inner.Analyze(callCtx, symbol)
	})
	if err != nil {
		return Signal{}, err
	}
	return v.(Signal), nil
}
