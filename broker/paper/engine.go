// Package paper is the simulated brokerage: a single cash wallet, net
// holdings per symbol, and an append-only journal, with exact transaction
// charges deducted on every fill.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/pkg/id"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/taxes"
)

// Once the wallet drops to the floor the account is treated as bankrupt:
// every further BUY is refused and the score takes a penalty. Only SELL
// proceeds can lift the balance back out.
const (
	bankruptcyFloor   = 50.0
	bankruptcyPenalty = 1000
)

type position struct {
	qty int
	avg float64
}

// Engine implements broker.Broker against a journal.Store. All mutations run
// under one mutex and commit in a single store transaction, so a rejected or
// failed order leaves the account untouched.
type Engine struct {
	mu        sync.Mutex
	store     journal.Store
	balance   float64
	score     int
	positions map[string]*position
	now       func() time.Time
	log       zerolog.Logger
}

var _ broker.Broker = (*Engine)(nil)

// NewEngine loads the persisted account, seeding startBalance on first run,
// and rebuilds net holdings by replaying the journal.
func NewEngine(store journal.Store, startBalance float64, log zerolog.Logger) (*Engine, error) {
	balance, score, found, err := store.LoadAccount()
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !found {
		balance, score = startBalance, 0
		if err := store.SaveAccount(balance, score); err != nil {
			return nil, fmt.Errorf("seed account: %w", err)
		}
	}

	held, err := store.Positions()
	if err != nil {
		return nil, fmt.Errorf("replay positions: %w", err)
	}
	positions := make(map[string]*position, len(held))
	for _, p := range held {
		positions[p.Symbol] = &position{qty: p.Qty, avg: p.AvgPrice}
	}

	return &Engine{
		store:     store,
		balance:   balance,
		score:     score,
		positions: positions,
		now:       time.Now,
		log:       log.With().Str("component", "paper-broker").Logger(),
	}, nil
}

func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// Score returns the running reward/penalty counter.
func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

func (e *Engine) Portfolio(origin broker.Origin) (map[string]int, error) {
	return e.store.Portfolio(string(origin))
}

func (e *Engine) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return broker.OrderResult{}, err
	}
	if req.Qty <= 0 || req.Price <= 0 || req.Symbol == "" {
		return broker.OrderResult{Reason: broker.ReasonBadRequest}, nil
	}
	if req.Origin == "" {
		req.Origin = broker.OriginBot
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch req.Side {
	case broker.Buy:
		return e.buyLocked(req)
	case broker.Sell:
		return e.sellLocked(req)
	default:
		return broker.OrderResult{Reason: broker.ReasonBadRequest}, nil
	}
}

func (e *Engine) buyLocked(req broker.OrderRequest) (broker.OrderResult, error) {
	if e.balance <= bankruptcyFloor {
		e.score -= bankruptcyPenalty
		if err := e.store.SaveAccount(e.balance, e.score); err != nil {
			return broker.OrderResult{}, fmt.Errorf("persist bankruptcy penalty: %w", err)
		}
		e.log.Error().
			Str("symbol", req.Symbol).
			Float64("balance", e.balance).
			Int("score", e.score).
			Msg("wallet empty, simulated bankruptcy, buy refused")
		return broker.OrderResult{Reason: broker.ReasonBankrupt}, nil
	}

	charges := taxes.Compute(req.Price, 0, req.Qty).TotalCharges
	cost := float64(req.Qty)*req.Price + charges

	if e.balance < cost {
		e.log.Warn().
			Str("symbol", req.Symbol).
			Float64("need", cost).
			Float64("have", e.balance).
			Msg("buy rejected, insufficient funds")
		return broker.OrderResult{Reason: broker.ReasonInsufficientFunds}, nil
	}

	orderID := id.Order(req.Symbol)
	newBalance := e.balance - cost

	f := journal.Fill{
		OrderID:   orderID,
		Symbol:    req.Symbol,
		Side:      string(broker.Buy),
		Qty:       req.Qty,
		Price:     req.Price,
		Charges:   charges,
		CashDelta: -cost,
		Origin:    string(req.Origin),
		StopLoss:  req.StopLoss,
		Target:    req.Target,
		Time:      e.now(),
	}
	if err := e.store.CommitFill(f, newBalance); err != nil {
		return broker.OrderResult{}, fmt.Errorf("commit buy: %w", err)
	}

	e.balance = newBalance
	e.applyFillLocked(req.Symbol, req.Qty, req.Price)

	e.log.Info().
		Str("order_id", orderID).
		Str("symbol", req.Symbol).
		Int("qty", req.Qty).
		Float64("price", req.Price).
		Float64("charges", charges).
		Float64("balance", e.balance).
		Str("origin", string(req.Origin)).
		Msg("buy filled")

	return broker.OrderResult{
		Accepted:  true,
		OrderID:   orderID,
		Qty:       req.Qty,
		Charges:   charges,
		CashDelta: -cost,
	}, nil
}

func (e *Engine) sellLocked(req broker.OrderRequest) (broker.OrderResult, error) {
	qty := req.Qty
	held := 0
	var avg float64
	if p, ok := e.positions[req.Symbol]; ok {
		held, avg = p.qty, p.avg
	}

	// Automated trading is long-only: never short, never oversell.
	if req.Origin == broker.OriginBot {
		if held <= 0 {
			e.log.Warn().
				Str("symbol", req.Symbol).
				Msg("sell rejected, no holdings")
			return broker.OrderResult{Reason: broker.ReasonNoHoldings}, nil
		}
		if qty > held {
			e.log.Warn().
				Str("symbol", req.Symbol).
				Int("requested", qty).
				Int("held", held).
				Msg("sell quantity clamped to held quantity")
			qty = held
		}
	}

	// Sell-side charges reuse the sell price for both legs. This mirrors the
	// production fee model; entry-price-correct costs would change results.
	charges := taxes.Compute(req.Price, req.Price, qty).TotalCharges
	credit := float64(qty)*req.Price - charges

	// Realized P&L against average entry cost, for the closing portion only.
	var realized float64
	if closed := min(qty, held); held > 0 && closed > 0 {
		realized = (req.Price-avg)*float64(closed) - charges
	}

	orderID := id.Order(req.Symbol)
	newBalance := e.balance + credit

	f := journal.Fill{
		OrderID:   orderID,
		Symbol:    req.Symbol,
		Side:      string(broker.Sell),
		Qty:       qty,
		Price:     req.Price,
		Charges:   charges,
		CashDelta: credit,
		Origin:    string(req.Origin),
		StopLoss:  req.StopLoss,
		Target:    req.Target,
		Time:      e.now(),
	}
	if err := e.store.CommitFill(f, newBalance); err != nil {
		return broker.OrderResult{}, fmt.Errorf("commit sell: %w", err)
	}

	e.balance = newBalance
	e.applyFillLocked(req.Symbol, -qty, req.Price)

	e.log.Info().
		Str("order_id", orderID).
		Str("symbol", req.Symbol).
		Int("qty", qty).
		Float64("price", req.Price).
		Float64("charges", charges).
		Float64("realized_pl", realized).
		Float64("balance", e.balance).
		Str("origin", string(req.Origin)).
		Msg("sell filled")

	return broker.OrderResult{
		Accepted:   true,
		OrderID:    orderID,
		Qty:        qty,
		Charges:    charges,
		CashDelta:  credit,
		RealizedPL: realized,
	}, nil
}

// applyFillLocked folds a signed quantity into the in-memory book, keeping
// the same average-cost rules the journal replay uses.
func (e *Engine) applyFillLocked(symbol string, signed int, price float64) {
	p, ok := e.positions[symbol]
	if !ok {
		p = &position{}
		e.positions[symbol] = p
	}

	next := p.qty + signed
	switch {
	case p.qty >= 0 && signed > 0:
		p.avg = (p.avg*float64(p.qty) + price*float64(signed)) / float64(next)
	case p.qty <= 0 && signed < 0:
		p.avg = (p.avg*float64(-p.qty) + price*float64(-signed)) / float64(-next)
	case (p.qty > 0 && next < 0) || (p.qty < 0 && next > 0):
		p.avg = price
	case next == 0:
		p.avg = 0
	}
	p.qty = next

	if next == 0 {
		delete(e.positions, symbol)
	}
}
