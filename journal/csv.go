package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// ExportFillsCSV writes every fill to w in chronological order, one row per
// fill, so external reporting tools can read the journal without the bot
// running.
func ExportFillsCSV(s Store, w io.Writer) error {
	fills, err := s.ListFills(0)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"timestamp", "order_id", "symbol", "side", "price", "quantity",
		"charges", "cash_delta", "origin",
	}); err != nil {
		return err
	}

	// ListFills returns newest first; the export reads better oldest first.
	for i := len(fills) - 1; i >= 0; i-- {
		f := fills[i]
		err := cw.Write([]string{
			f.Time.Format(time.RFC3339),
			f.OrderID,
			f.Symbol,
			f.Side,
			fmtFloat(f.Price),
			strconv.Itoa(f.Qty),
			fmtFloat(f.Charges),
			fmtFloat(f.CashDelta),
			f.Origin,
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
