package swarm

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/market"
)

// Scan interval bands by time of day: tight around open and close, relaxed
// mid-session, with jitter so the workers never fall into lockstep.
const (
	scanOpenMin  = 15 * time.Second
	scanOpenMax  = 30 * time.Second
	scanMidMin   = 60 * time.Second
	scanMidMax   = 120 * time.Second
	scanCloseMin = 15 * time.Second
	scanCloseMax = 30 * time.Second

	scanJitter    = 2 * time.Second
	scanFloor     = 5 * time.Second
	pausedSleep   = 5 * time.Second
	closedRecheck = 15 * time.Minute
)

// Band boundaries, minutes from midnight exchange time.
const (
	openBandEnd = 10*60 + 15 // 10:15
	midBandEnd  = 14*60 + 30 // 14:30
)

// Worker is one long-lived scanning loop bound to a single symbol. Its watch
// state (poll interval, RNG) is private; the only shared state it touches is
// behind the hive's critical section.
type Worker struct {
	symbol string
	hive   *Hive
	source Source
	sched  *market.Schedule
	rng    *rand.Rand
	log    zerolog.Logger
}

func NewWorker(symbol string, hive *Hive, source Source, sched *market.Schedule, log zerolog.Logger) *Worker {
	return &Worker{
		symbol: symbol,
		hive:   hive,
		source: source,
		sched:  sched,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(len(symbol)))),
		log:    log.With().Str("component", "worker").Str("symbol", symbol).Logger(),
	}
}

// Run scans until ctx is cancelled. Source errors and timeouts count as HOLD
// for the cycle; the normal sleep schedule provides the backoff.
func (w *Worker) Run(ctx context.Context) {
	w.log.Info().Msg("worker launched")

	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("worker stopped")
			return
		}

		if w.hive.Killed() {
			if !sleepCtx(ctx, pausedSleep) {
				return
			}
			continue
		}

		now := w.sched.Now()
		if !w.sched.IsOpen(now) {
			wait := w.sched.UntilOpen(now)
			if wait > closedRecheck || wait == 0 {
				wait = closedRecheck
			}
			w.log.Debug().Str("status", w.sched.Status(now)).Dur("sleep", wait).Msg("market closed")
			if !sleepCtx(ctx, wait) {
				return
			}
			continue
		}

		sig, err := w.source.Analyze(ctx, w.symbol)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			w.log.Warn().Err(err).Msg("analysis failed, holding this cycle")
		case sig.Action != ActionHold:
			w.log.Info().
				Str("action", string(sig.Action)).
				Float64("confidence", sig.Confidence).
				Str("reason", sig.Reason).
				Msg("signal detected")
			w.hive.RequestAction(ctx, w.symbol, sig)
		}

		if !sleepCtx(ctx, w.scanInterval(w.sched.Now())) {
			return
		}
	}
}

// scanInterval draws the next poll delay from the band for the current time
// of day plus jitter.
func (w *Worker) scanInterval(now time.Time) time.Duration {
	minD, maxD := scanMidMin, scanMidMax
	switch m := now.Hour()*60 + now.Minute(); {
	case m < openBandEnd:
		minD, maxD = scanOpenMin, scanOpenMax
	case m >= midBandEnd:
		minD, maxD = scanCloseMin, scanCloseMax
	}

	d := minD + time.Duration(w.rng.Int63n(int64(maxD-minD)))
	d += time.Duration(w.rng.Int63n(int64(2*scanJitter))) - scanJitter

	if d < scanFloor {
		d = scanFloor
	}
	return d
}

// sleepCtx sleeps for d or until ctx is cancelled; false means cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Swarm runs one worker per watchlist symbol and waits for all of them to
// drain on shutdown.
type Swarm struct {
	workers []*Worker
	log     zerolog.Logger
}

func New(watchlist []string, hive *Hive, source Source, sched *market.Schedule, log zerolog.Logger) *Swarm {
	workers := make([]*Worker, 0, len(watchlist))
	for _, symbol := range watchlist {
		workers = append(workers, NewWorker(symbol, hive, source, sched, log))
	}
	return &Swarm{workers: workers, log: log.With().Str("component", "swarm").Logger()}
}

// Run blocks until ctx is cancelled and every worker has exited. In-flight
// source calls finish naturally; only new approvals stop immediately.
func (s *Swarm) Run(ctx context.Context) {
	s.log.Info().Int("workers", len(s.workers)).Msg("deploying workers")

	var wg sync.WaitGroup
	for _, w := range s.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Run(ctx)
		}(w)
	}
	wg.Wait()

	s.log.Info().Msg("all workers returned")
}
