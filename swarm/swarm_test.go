package swarm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker/paper"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/market"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/risk"
)

func testLimits() risk.Limits {
	return risk.Limits{
		MaxDailyLoss:      5000,
		DailyProfitTarget: 50000,
		MaxTradeAmount:    10000,
		MinConfidence:     0.60,
		MaxTradesPerDay:   100,
	}
}

func newTestHive(t *testing.T, startBalance float64, limits risk.Limits) (*Hive, *paper.Engine) {
	t.Helper()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine, err := paper.NewEngine(store, startBalance, zerolog.Nop())
	require.NoError(t, err)

	manager, err := risk.NewManager(store, limits, zerolog.Nop())
	require.NoError(t, err)

	return NewHive(engine, manager, "", zerolog.Nop()), engine
}

func TestRequestAction_ConfidenceGate(t *testing.T) {
	t.Parallel()

	hive, engine := newTestHive(t, 100000, testLimits())

	hive.RequestAction(context.Background(), "ITC.NS", Signal{
		Action: ActionBuy, Confidence: 0.50, Price: 100,
	})

	assert.Equal(t, 100000.0, engine.Balance())
}

func TestRequestAction_BuyThenSellRoundTrip(t *testing.T) {
	t.Parallel()

	hive, engine := newTestHive(t, 100000, testLimits())
	ctx := context.Background()

	hive.RequestAction(ctx, "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.90, Price: 100})

	port, err := engine.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	assert.Equal(t, 100, port["ITC.NS"]) // 10000 budget / 100

	hive.RequestAction(ctx, "ITC.NS", Signal{Action: ActionSell, Confidence: 0.90, Price: 110})

	port, err = engine.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	assert.Empty(t, port)
}

func TestRequestAction_SellWithoutHoldings(t *testing.T) {
	t.Parallel()

	hive, engine := newTestHive(t, 100000, testLimits())

	hive.RequestAction(context.Background(), "SBIN.NS", Signal{
		Action: ActionSell, Confidence: 0.90, Price: 600,
	})

	assert.Equal(t, 100000.0, engine.Balance())
}

func TestRequestAction_BuyTooExpensive(t *testing.T) {
	t.Parallel()

	hive, engine := newTestHive(t, 100000, testLimits())

	// Price above the per-trade budget sizes to zero and must not trade.
	hive.RequestAction(context.Background(), "MRF.NS", Signal{
		Action: ActionBuy, Confidence: 0.95, Price: 120000,
	})

	assert.Equal(t, 100000.0, engine.Balance())
}

func TestRequestAction_KillSwitch(t *testing.T) {
	t.Parallel()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer store.Close()

	engine, err := paper.NewEngine(store, 100000, zerolog.Nop())
	require.NoError(t, err)
	manager, err := risk.NewManager(store, testLimits(), zerolog.Nop())
	require.NoError(t, err)

	killFile := filepath.Join(t.TempDir(), "STOP.flag")
	hive := NewHive(engine, manager, killFile, zerolog.Nop())

	require.NoError(t, os.WriteFile(killFile, nil, 0o644))
	hive.RequestAction(context.Background(), "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.95, Price: 100})
	assert.Equal(t, 100000.0, engine.Balance())

	// Removing the flag resumes approvals without a restart.
	require.NoError(t, os.Remove(killFile))
	hive.RequestAction(context.Background(), "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.95, Price: 100})
	assert.Less(t, engine.Balance(), 100000.0)
}

func TestRequestAction_RegimeGate(t *testing.T) {
	t.Parallel()

	hive, engine := newTestHive(t, 100000, testLimits())

	regime := RegimeCrash
	hive.SetRegimeSource(regimeFunc(func(context.Context) (Regime, error) { return regime, nil }))

	hive.RequestAction(context.Background(), "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.95, Price: 100})
	assert.Equal(t, 100000.0, engine.Balance())

	// CHOP raises the bar to 0.85; a 0.70 signal no longer clears it.
	regime = RegimeChop
	hive.RequestAction(context.Background(), "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.70, Price: 100})
	assert.Equal(t, 100000.0, engine.Balance())

	hive.RequestAction(context.Background(), "ITC.NS", Signal{Action: ActionBuy, Confidence: 0.90, Price: 100})
	assert.Less(t, engine.Balance(), 100000.0)

	// A failing regime source must not block trading.
	hive.SetRegimeSource(regimeFunc(func(context.Context) (Regime, error) { return "", errors.New("down") }))
	hive.RequestAction(context.Background(), "BEL.NS", Signal{Action: ActionBuy, Confidence: 0.90, Price: 100})
	port, err := engine.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	assert.Contains(t, port, "BEL.NS")
}

type regimeFunc func(ctx context.Context) (Regime, error)

func (f regimeFunc) Regime(ctx context.Context) (Regime, error) { return f(ctx) }

// Concurrent submissions through the hive must approve exactly what a
// single-threaded replay of the same inputs approves, and land on the same
// balance: the critical section never lets two orders spend the same risk
// budget.
func TestRequestAction_SerializedApprovalMatchesReplay(t *testing.T) {
	t.Parallel()

	const startBalance = 25000.0

	limits := testLimits()
	limits.MaxTradesPerDay = 0

	// Ten workers all see the same BUY at once, but the wallet only affords
	// two positions of this size.
	signals := make([]struct {
		symbol string
		sig    Signal
	}, 10)
	for i := range signals {
		signals[i].symbol = fmt.Sprintf("SYM%d.NS", i)
		signals[i].sig = Signal{Action: ActionBuy, Confidence: 0.95, Price: 100}
	}

	concurrent, concurrentEngine := newTestHive(t, startBalance, limits)

	var wg sync.WaitGroup
	for _, s := range signals {
		wg.Add(1)
		go func(symbol string, sig Signal) {
			defer wg.Done()
			concurrent.RequestAction(context.Background(), symbol, sig)
		}(s.symbol, s.sig)
	}
	wg.Wait()

	replay, replayEngine := newTestHive(t, startBalance, limits)
	for _, s := range signals {
		replay.RequestAction(context.Background(), s.symbol, s.sig)
	}

	concurrentPort, err := concurrentEngine.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	replayPort, err := replayEngine.Portfolio(broker.OriginBot)
	require.NoError(t, err)

	assert.Len(t, concurrentPort, len(replayPort))
	assert.InDelta(t, replayEngine.Balance(), concurrentEngine.Balance(), 1e-6)
}

func TestGuardedSource_TimeoutTripsBreaker(t *testing.T) {
	t.Parallel()

	slow := SourceFunc(func(ctx context.Context, symbol string) (Signal, error) {
		<-ctx.Done()
		return Signal{}, ctx.Err()
	})

	g := NewGuardedSource(slow, 1000, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := g.Analyze(context.Background(), "ITC.NS")
		require.Error(t, err)
	}

	// Breaker is open now: the call fails fast without reaching the source.
	start := time.Now()
	_, err := g.Analyze(context.Background(), "ITC.NS")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestGuardedSource_PassesSignalsThrough(t *testing.T) {
	t.Parallel()

	g := NewGuardedSource(SourceFunc(func(ctx context.Context, symbol string) (Signal, error) {
		return Signal{Action: ActionBuy, Confidence: 0.9, Price: 42}, nil
	}), 1000, time.Second)

	sig, err := g.Analyze(context.Background(), "ITC.NS")
	require.NoError(t, err)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, 42.0, sig.Price)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	t.Parallel()

	hive, _ := newTestHive(t, 100000, testLimits())

	source := SourceFunc(func(ctx context.Context, symbol string) (Signal, error) {
		return Signal{Action: ActionHold}, nil
	})

	// Override keeps the market "open" so the worker reaches the source.
	sched := market.NewSchedule(true)
	w := NewWorker("ITC.NS", hive, source, sched, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop on cancellation")
	}
}
