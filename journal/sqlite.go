package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite implements Store on an embedded SQLite database. One writer at a
// time is assumed (the broker serializes all mutations); reads are safe
// alongside appends because fills and equity are append-only.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) CommitFill(f Fill, newBalance float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO fills
		(order_id, symbol, side, qty, price, charges, cash_delta, origin, stop_loss, target, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.OrderID, f.Symbol, f.Side, f.Qty, f.Price, f.Charges,
		f.CashDelta, f.Origin, f.StopLoss, f.Target, f.Time,
	)
	if err != nil {
		return fmt.Errorf("append fill: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO equity (time, balance) VALUES (?, ?)`, f.Time, newBalance); err != nil {
		return fmt.Errorf("append equity: %w", err)
	}

	if _, err := tx.Exec(`UPDATE account SET balance = ? WHERE id = 1`, newBalance); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	return tx.Commit()
}

func (s *SQLite) LoadAccount() (float64, int, bool, error) {
	var balance float64
	var score int

	err := s.db.QueryRow(`SELECT balance, score FROM account WHERE id = 1`).Scan(&balance, &score)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return balance, score, true, nil
}

func (s *SQLite) SaveAccount(balance float64, score int) error {
	_, err := s.db.Exec(`
		INSERT INTO account (id, balance, score) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, score = excluded.score`,
		balance, score,
	)
	return err
}

func (s *SQLite) LatestDailyStats() (DailyStats, bool, error) {
	var d DailyStats
	var cautious int

	row := s.db.QueryRow(`
		SELECT date, pnl, trade_count, cautious, yesterday_pnl, status
		FROM daily_stats
		ORDER BY date DESC
		LIMIT 1`)

	err := row.Scan(&d.Date, &d.PnL, &d.TradeCount, &cautious, &d.YesterdayPnL, &d.Status)
	if err == sql.ErrNoRows {
		return DailyStats{}, false, nil
	}
	if err != nil {
		return DailyStats{}, false, err
	}

	d.Cautious = cautious != 0
	return d, true, nil
}

func (s *SQLite) SaveDailyStats(d DailyStats) error {
	cautious := 0
	if d.Cautious {
		cautious = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO daily_stats (date, pnl, trade_count, cautious, yesterday_pnl, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			pnl = excluded.pnl,
			trade_count = excluded.trade_count,
			cautious = excluded.cautious,
			yesterday_pnl = excluded.yesterday_pnl,
			status = excluded.status`,
		d.Date, d.PnL, d.TradeCount, cautious, d.YesterdayPnL, d.Status,
	)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
