package paper

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/taxes"
)

func newTestEngine(t *testing.T, startBalance float64) (*Engine, *journal.SQLite) {
	t.Helper()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	e, err := NewEngine(store, startBalance, zerolog.Nop())
	require.NoError(t, err)
	return e, store
}

func buy(symbol string, qty int, price float64) broker.OrderRequest {
	return broker.OrderRequest{Symbol: symbol, Qty: qty, Side: broker.Buy, Price: price, Origin: broker.OriginBot}
}

func sell(symbol string, qty int, price float64) broker.OrderRequest {
	return broker.OrderRequest{Symbol: symbol, Qty: qty, Side: broker.Sell, Price: price, Origin: broker.OriginBot}
}

func TestBuy_DebitsExactCost(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	res, err := e.PlaceOrder(ctx, buy("ITC.NS", 100, 100))
	require.NoError(t, err)
	require.True(t, res.Accepted)

	charges := taxes.Compute(100, 0, 100).TotalCharges
	wantBalance := 100000 - (100*100 + charges)

	assert.InDelta(t, wantBalance, e.Balance(), 1e-9)
	assert.InDelta(t, charges, res.Charges, 1e-9)
	assert.InDelta(t, -(100*100 + charges), res.CashDelta, 1e-9)
	assert.Contains(t, res.OrderID, "ORD-")
	assert.Contains(t, res.OrderID, "-ITC.NS")
}

func TestBuy_InsufficientFundsLeavesAccountUntouched(t *testing.T) {
	t.Parallel()

	e, store := newTestEngine(t, 500)
	ctx := context.Background()

	res, err := e.PlaceOrder(ctx, buy("MARUTI.NS", 10, 100))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, broker.ReasonInsufficientFunds, res.Reason)

	assert.Equal(t, 500.0, e.Balance())
	fills, err := store.ListFills(0)
	require.NoError(t, err)
	assert.Empty(t, fills)
}

func TestBuy_BankruptcyFloor(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 40)
	ctx := context.Background()

	res, err := e.PlaceOrder(ctx, buy("ITC.NS", 1, 10))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, broker.ReasonBankrupt, res.Reason)
	assert.Equal(t, -1000, e.Score())

	// Every further BUY is refused regardless of size, and keeps penalizing.
	res, err = e.PlaceOrder(ctx, buy("ITC.NS", 1, 1))
	require.NoError(t, err)
	assert.Equal(t, broker.ReasonBankrupt, res.Reason)
	assert.Equal(t, -2000, e.Score())
}

func TestSell_CreditsProceedsMinusCharges(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	_, err := e.PlaceOrder(ctx, buy("ITC.NS", 100, 100))
	require.NoError(t, err)
	afterBuy := e.Balance()

	res, err := e.PlaceOrder(ctx, sell("ITC.NS", 100, 110))
	require.NoError(t, err)
	require.True(t, res.Accepted)

	charges := taxes.Compute(110, 110, 100).TotalCharges
	assert.InDelta(t, afterBuy+(100*110-charges), e.Balance(), 1e-9)
	assert.InDelta(t, 100*110-charges, res.CashDelta, 1e-9)

	// Realized P&L is measured against the true average entry cost.
	assert.InDelta(t, (110-100)*100-charges, res.RealizedPL, 1e-9)
}

func TestSell_BotRequiresHoldings(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	res, err := e.PlaceOrder(ctx, sell("SBIN.NS", 10, 600))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, broker.ReasonNoHoldings, res.Reason)
	assert.Equal(t, 100000.0, e.Balance())
}

func TestSell_BotClampsToHeldQuantity(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	_, err := e.PlaceOrder(ctx, buy("BEL.NS", 5, 300))
	require.NoError(t, err)

	res, err := e.PlaceOrder(ctx, sell("BEL.NS", 50, 310))
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.Equal(t, 5, res.Qty)

	port, err := e.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	assert.Empty(t, port)
}

func TestSell_ManualMayShort(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	res, err := e.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: "NTPC.NS", Qty: 10, Side: broker.Sell, Price: 350, Origin: broker.OriginManual,
	})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.Zero(t, res.RealizedPL)

	port, err := e.Portfolio("")
	require.NoError(t, err)
	assert.Equal(t, -10, port["NTPC.NS"])
}

func TestPortfolio_OriginIsolation(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 100000)
	ctx := context.Background()

	_, err := e.PlaceOrder(ctx, buy("ITC.NS", 10, 400))
	require.NoError(t, err)
	_, err = e.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: "SBIN.NS", Qty: 5, Side: broker.Buy, Price: 600, Origin: broker.OriginManual,
	})
	require.NoError(t, err)

	bot, err := e.Portfolio(broker.OriginBot)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ITC.NS": 10}, bot)

	manual, err := e.Portfolio(broker.OriginManual)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SBIN.NS": 5}, manual)
}

func TestRestart_ReloadsBalanceAndPositions(t *testing.T) {
	t.Parallel()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer store.Close()

	e1, err := NewEngine(store, 100000, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = e1.PlaceOrder(ctx, buy("ITC.NS", 10, 100))
	require.NoError(t, err)
	balance := e1.Balance()

	// A second engine over the same store sees the same world, not a fresh
	// seed.
	e2, err := NewEngine(store, 999999, zerolog.Nop())
	require.NoError(t, err)
	assert.InDelta(t, balance, e2.Balance(), 1e-9)

	res, err := e2.PlaceOrder(ctx, sell("ITC.NS", 10, 110))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.InDelta(t, (110-100)*10-taxes.Compute(110, 110, 10).TotalCharges, res.RealizedPL, 1e-9)
}

func TestPlaceOrder_BadRequest(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, 1000)
	ctx := context.Background()

	for _, req := range []broker.OrderRequest{
		{Symbol: "ITC.NS", Qty: 0, Side: broker.Buy, Price: 100},
		{Symbol: "ITC.NS", Qty: 10, Side: broker.Buy, Price: 0},
		{Symbol: "", Qty: 10, Side: broker.Buy, Price: 100},
		{Symbol: "ITC.NS", Qty: 10, Side: "HOLD", Price: 100},
	} {
		res, err := e.PlaceOrder(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, broker.ReasonBadRequest, res.Reason)
	}
	assert.Equal(t, 1000.0, e.Balance())
}
