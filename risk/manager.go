// Package risk owns the per-day trading statistics and every hard safety
// limit: the daily loss cap, the profit target, the trade-count cap, the
// confidence bar, and position sizing.
package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
)

// Extra confidence demanded while recovering from a losing day.
const cautiousConfidenceBump = 0.05

// Limits are the configured hard limits, consumed read-only.
type Limits struct {
	MaxDailyLoss      float64
	DailyProfitTarget float64
	MaxTradeAmount    float64 // per-trade budget cap
	MinConfidence     float64
	MaxTradesPerDay   int // 0 disables the cap
}

// Manager owns the current day's statistics. Rollover is lazy: the first
// call on a new day supersedes the stored record, and cautious mode is set
// iff yesterday closed at a loss.
type Manager struct {
	mu     sync.Mutex
	store  journal.Store
	limits Limits
	now    func() time.Time
	stats  journal.DailyStats
	log    zerolog.Logger
}

// Option tweaks a Manager; used by tests to inject clocks.
type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager reloads the latest persisted day and rolls it over if the date
// has changed.
func NewManager(store journal.Store, limits Limits, log zerolog.Logger, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:  store,
		limits: limits,
		now:    time.Now,
		log:    log.With().Str("component", "risk-manager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	stats, found, err := store.LatestDailyStats()
	if err != nil {
		return nil, fmt.Errorf("load daily stats: %w", err)
	}
	if found {
		m.stats = stats
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rolloverLocked(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) today() string {
	return m.now().Format("2006-01-02")
}

// rolloverLocked starts a fresh record when the stored date is stale. The
// superseded day's P&L becomes YesterdayPnL and drives cautious mode.
func (m *Manager) rolloverLocked() error {
	today := m.today()
	if m.stats.Date == today {
		return nil
	}

	yesterdayPnL := m.stats.PnL
	m.stats = journal.DailyStats{
		Date:         today,
		Cautious:     yesterdayPnL < 0,
		YesterdayPnL: yesterdayPnL,
		Status:       journal.StatusActive,
	}

	if m.stats.Cautious {
		m.log.Warn().
			Float64("yesterday_pnl", yesterdayPnL).
			Msg("recovering from a losing day, cautious mode active")
	}

	return m.store.SaveDailyStats(m.stats)
}

// CanTrade is the gatekeeper called before every trade. False once the day's
// status is terminal, the P&L has left the allowed band, or the trade-count
// cap is spent.
func (m *Manager) CanTrade() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rolloverLocked(); err != nil {
		m.log.Error().Err(err).Msg("daily rollover failed, refusing to trade")
		return false
	}

	if m.stats.Status != journal.StatusActive {
		return false
	}
	if m.stats.PnL <= -m.limits.MaxDailyLoss {
		return false
	}
	if m.stats.PnL >= m.limits.DailyProfitTarget {
		return false
	}
	if m.limits.MaxTradesPerDay > 0 && m.stats.TradeCount >= m.limits.MaxTradesPerDay {
		return false
	}
	return true
}

// UpdatePnL folds a realized amount into today's total and checks the hard
// limits. Breaching either flips the status terminally for the day.
func (m *Manager) UpdatePnL(amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rolloverLocked(); err != nil {
		return err
	}

	m.stats.PnL += amount
	m.stats.TradeCount++

	switch {
	case m.stats.PnL <= -m.limits.MaxDailyLoss:
		m.stats.Status = journal.StatusStopLoss
		m.log.Error().
			Float64("daily_pnl", m.stats.PnL).
			Msg("max daily loss hit, trading halted for the day")
	case m.stats.PnL >= m.limits.DailyProfitTarget:
		m.stats.Status = journal.StatusTargetHit
		m.log.Info().
			Float64("daily_pnl", m.stats.PnL).
			Msg("daily profit target hit, trading done for the day")
	}

	return m.store.SaveDailyStats(m.stats)
}

// RequiredConfidence returns the confidence bar for new signals, raised
// while cautious mode is active.
func (m *Manager) RequiredConfidence() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rolloverLocked(); err != nil {
		m.log.Error().Err(err).Msg("daily rollover failed")
	}

	if m.stats.Cautious {
		return m.limits.MinConfidence + cautiousConfidenceBump
	}
	return m.limits.MinConfidence
}

// PositionSize returns how many shares the per-trade budget affords at
// price. Zero means the asset is too expensive to size safely and must not
// be traded.
func (m *Manager) PositionSize(price float64) int {
	if price <= 0 {
		return 0
	}

	qty := int(math.Floor(m.limits.MaxTradeAmount / price))
	if qty < 1 {
		return 0
	}
	return qty
}

// Stats returns a copy of today's record for reporting.
func (m *Manager) Stats() journal.DailyStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rolloverLocked(); err != nil {
		m.log.Error().Err(err).Msg("daily rollover failed")
	}
	return m.stats
}

// SizeByStop sizes a position so that riskFrac of equity is lost if the stop
// is hit: floor(equity·riskFrac / |price−stop|).
func SizeByStop(equity, riskFrac, price, stop float64) int {
	dist := math.Abs(price - stop)
	if dist <= 0 || equity <= 0 || riskFrac <= 0 {
		return 0
	}
	return int(math.Floor(equity * riskFrac / dist))
}
