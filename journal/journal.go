// Package journal persists the trading record: an append-only fills table,
// the equity curve, the account snapshot, and per-day risk statistics.
//
// The fills table is the sole source of truth for portfolio and equity-curve
// reconstruction; nothing ever updates or deletes a fill.
package journal

import "time"

// Fill is one executed order. Created at acceptance, immutable thereafter.
type Fill struct {
	OrderID   string
	Symbol    string
	Side      string // BUY or SELL
	Qty       int
	Price     float64
	Charges   float64
	CashDelta float64 // signed wallet change: -(cost+charges) or +(proceeds-charges)
	Origin    string  // BOT or MANUAL
	StopLoss  *float64
	Target    *float64
	Time      time.Time
}

// EquityPoint is one sample of the wallet balance over time.
type EquityPoint struct {
	Time    time.Time
	Balance float64
}

// Position is a symbol's net holding with its average entry cost.
type Position struct {
	Symbol   string
	Qty      int
	AvgPrice float64
}

// Daily risk status values. STOP_LOSS and TARGET_HIT are terminal for the
// rest of the day.
const (
	StatusActive    = "ACTIVE"
	StatusStopLoss  = "STOP_LOSS"
	StatusTargetHit = "TARGET_HIT"
)

// DailyStats is one calendar day of realized risk accounting. Superseded by
// the next day's record at rollover, never deleted.
type DailyStats struct {
	Date         string // YYYY-MM-DD in exchange time
	PnL          float64
	TradeCount   int
	Cautious     bool
	YesterdayPnL float64
	Status       string
}

// Store is the persistence boundary injected into the broker and the risk
// manager. Implementations must make CommitFill atomic: the fill, the equity
// sample, and the balance move together or not at all.
type Store interface {
	// CommitFill appends the fill and an equity sample and stores the new
	// balance in a single transaction.
	CommitFill(f Fill, newBalance float64) error

	// LoadAccount returns the persisted balance and score. found is false
	// when no snapshot exists yet.
	LoadAccount() (balance float64, score int, found bool, err error)
	SaveAccount(balance float64, score int) error

	// LatestDailyStats returns the most recent day's record.
	LatestDailyStats() (DailyStats, bool, error)
	SaveDailyStats(DailyStats) error

	// Portfolio replays the fills into net quantity per symbol, optionally
	// restricted to one origin ("" means all). Flat symbols are omitted;
	// negative quantities are legal (manual shorts).
	Portfolio(origin string) (map[string]int, error)

	// Positions replays the fills into net holdings with average entry cost.
	Positions() ([]Position, error)

	ListFills(limit int) ([]Fill, error)
	EquityCurve() ([]EquityPoint, error)

	Close() error
}
