package swarm

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/risk"
)

// Confidence floor applied on top of the risk manager's bar while the market
// regime is choppy.
const chopConfidenceFloor = 0.85

// Hive is the arbitrator. RequestAction runs under a single exclusive
// critical section shared by every worker: risk checks and the ledger
// mutation happen inside the same lock acquisition, so no two orders are
// ever approved against a stale balance or risk snapshot.
type Hive struct {
	mu       sync.Mutex
	broker   broker.Broker
	risk     *risk.Manager
	regime   RegimeSource // optional
	killFile string
	log      zerolog.Logger
}

func NewHive(b broker.Broker, r *risk.Manager, killFile string, log zerolog.Logger) *Hive {
	return &Hive{
		broker:   b,
		risk:     r,
		killFile: killFile,
		log:      log.With().Str("component", "hive").Logger(),
	}
}

// SetRegimeSource installs an optional market-regime collaborator. Without
// one, no regime gating is applied.
func (h *Hive) SetRegimeSource(rs RegimeSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.regime = rs
}

// Killed reports whether the kill-switch marker file is present. Removal
// resumes operation without a restart.
func (h *Hive) Killed() bool {
	if h.killFile == "" {
		return false
	}
	_, err := os.Stat(h.killFile)
	return err == nil
}

// RequestAction is the single entry point for workers. Every rejection is a
// logged decision with a reason; failures are logged and dropped, never
// retried.
func (h *Hive) RequestAction(ctx context.Context, symbol string, sig Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := h.log.With().
		Str("symbol", symbol).
		Str("action", string(sig.Action)).
		Float64("confidence", sig.Confidence).
		Float64("price", sig.Price).
		Logger()

	// Kill switch outranks everything.
	if h.Killed() {
		logger.Warn().Str("deny", "KILL_SWITCH").Msg("request denied")
		return
	}

	required := h.risk.RequiredConfidence()

	if h.regime != nil {
		switch regime, err := h.regime.Regime(ctx); {
		case err != nil:
			logger.Warn().Err(err).Msg("regime check failed, continuing without it")
		case regime == RegimeCrash:
			logger.Warn().Str("deny", "REGIME_CRASH").Msg("request denied")
			return
		case regime == RegimeChop && required < chopConfidenceFloor:
			required = chopConfidenceFloor
		}
	}

	if sig.Confidence < required {
		logger.Info().
			Str("deny", "LOW_CONFIDENCE").
			Float64("required", required).
			Msg("request denied")
		return
	}

	if !h.risk.CanTrade() {
		logger.Info().Str("deny", "RISK_HALTED").Msg("request denied")
		return
	}

	switch sig.Action {
	case ActionBuy:
		h.executeBuy(ctx, symbol, sig, logger)
	case ActionSell:
		h.executeSell(ctx, symbol, sig, logger)
	default:
		logger.Debug().Msg("nothing to do")
	}
}

func (h *Hive) executeBuy(ctx context.Context, symbol string, sig Signal, logger zerolog.Logger) {
	qty := h.risk.PositionSize(sig.Price)
	if qty == 0 {
		logger.Info().Str("deny", "TOO_EXPENSIVE").Msg("position sizes to zero, request denied")
		return
	}

	res, err := h.broker.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: symbol,
		Qty:    qty,
		Side:   broker.Buy,
		Price:  sig.Price,
		Origin: broker.OriginBot,
	})
	if err != nil {
		logger.Error().Err(err).Msg("buy failed")
		return
	}
	if !res.Accepted {
		logger.Warn().Str("deny", res.Reason).Msg("buy rejected by broker")
		return
	}

	// Count the opening trade against the daily cap; P&L realizes on close.
	if err := h.risk.UpdatePnL(0); err != nil {
		logger.Error().Err(err).Msg("record trade count failed")
	}

	logger.Info().
		Str("order_id", res.OrderID).
		Int("qty", res.Qty).
		Str("reason", sig.Reason).
		Msg("opened position")
}

func (h *Hive) executeSell(ctx context.Context, symbol string, sig Signal, logger zerolog.Logger) {
	portfolio, err := h.broker.Portfolio(broker.OriginBot)
	if err != nil {
		logger.Error().Err(err).Msg("portfolio check failed")
		return
	}

	held := portfolio[symbol]
	if held <= 0 {
		logger.Info().Str("deny", "NO_HOLDINGS").Msg("sell signal ignored")
		return
	}

	// Close the whole position.
	res, err := h.broker.PlaceOrder(ctx, broker.OrderRequest{
		Symbol: symbol,
		Qty:    held,
		Side:   broker.Sell,
		Price:  sig.Price,
		Origin: broker.OriginBot,
	})
	if err != nil {
		logger.Error().Err(err).Msg("sell failed")
		return
	}
	if !res.Accepted {
		logger.Warn().Str("deny", res.Reason).Msg("sell rejected by broker")
		return
	}

	if err := h.risk.UpdatePnL(res.RealizedPL); err != nil {
		logger.Error().Err(err).Msg("record realized pnl failed")
	}

	logger.Info().
		Str("order_id", res.OrderID).
		Int("qty", res.Qty).
		Float64("realized_pl", res.RealizedPL).
		Str("reason", sig.Reason).
		Msg("closed position")
}
