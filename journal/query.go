package journal

import "fmt"

// Portfolio computes net quantity held per symbol by replaying the fills
// table. Pass origin "" for all trades, or "BOT"/"MANUAL" to isolate
// automated from manual activity.
func (s *SQLite) Portfolio(origin string) (map[string]int, error) {
	query := `
		SELECT symbol, SUM(CASE side WHEN 'BUY' THEN qty ELSE -qty END) AS net
		FROM fills`
	args := []any{}
	if origin != "" {
		query += ` WHERE origin = ?`
		args = append(args, origin)
	}
	query += ` GROUP BY symbol HAVING net != 0`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("portfolio query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var symbol string
		var net int
		if err := rows.Scan(&symbol, &net); err != nil {
			return nil, err
		}
		out[symbol] = net
	}
	return out, rows.Err()
}

// Positions replays the fills in order into net holdings with average entry
// cost. Buys blend into the running average; sells reduce quantity at the
// same average. A sell that crosses through zero opens the short at its own
// price.
func (s *SQLite) Positions() ([]Position, error) {
	rows, err := s.db.Query(`SELECT symbol, side, qty, price FROM fills ORDER BY time ASC, order_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("positions query: %w", err)
	}
	defer rows.Close()

	type acc struct {
		qty int
		avg float64
	}
	book := make(map[string]*acc)
	var order []string

	for rows.Next() {
		var symbol, side string
		var qty int
		var price float64
		if err := rows.Scan(&symbol, &side, &qty, &price); err != nil {
			return nil, err
		}

		a, ok := book[symbol]
		if !ok {
			a = &acc{}
			book[symbol] = a
			order = append(order, symbol)
		}

		signed := qty
		if side == "SELL" {
			signed = -qty
		}

		next := a.qty + signed
		switch {
		case a.qty >= 0 && signed > 0:
			a.avg = (a.avg*float64(a.qty) + price*float64(signed)) / float64(next)
		case a.qty <= 0 && signed < 0:
			a.avg = (a.avg*float64(-a.qty) + price*float64(-signed)) / float64(-next)
		case (a.qty > 0 && next < 0) || (a.qty < 0 && next > 0):
			a.avg = price
		case next == 0:
			a.avg = 0
		}
		a.qty = next
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []Position
	for _, symbol := range order {
		a := book[symbol]
		if a.qty == 0 {
			continue
		}
		out = append(out, Position{Symbol: symbol, Qty: a.qty, AvgPrice: a.avg})
	}
	return out, nil
}

// ListFills returns the most recent fills, newest first. limit <= 0 returns
// everything.
func (s *SQLite) ListFills(limit int) ([]Fill, error) {
	query := `
		SELECT order_id, symbol, side, qty, price, charges, cash_delta, origin, stop_loss, target, time
		FROM fills
		ORDER BY time DESC, order_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fills: %w", err)
	}
	defer rows.Close()

	var out []Fill
	for rows.Next() {
		var f Fill
		err := rows.Scan(
			&f.OrderID, &f.Symbol, &f.Side, &f.Qty, &f.Price, &f.Charges,
			&f.CashDelta, &f.Origin, &f.StopLoss, &f.Target, &f.Time,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// EquityCurve returns every balance sample in time order.
func (s *SQLite) EquityCurve() ([]EquityPoint, error) {
	rows, err := s.db.Query(`SELECT time, balance FROM equity ORDER BY time ASC`)
	if err != nil {
		return nil, fmt.Errorf("equity curve: %w", err)
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var p EquityPoint
		if err := rows.Scan(&p.Time, &p.Balance); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
