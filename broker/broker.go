// Package broker defines the order-placement boundary between the
// orchestrator and whatever executes trades, paper or real.
package broker

import "context"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Origin tags who placed a trade. Automated trades are long-only; manual
// trades may short.
type Origin string

const (
	OriginBot    Origin = "BOT"
	OriginManual Origin = "MANUAL"
)

// Rejection reason codes. These are decisions, not errors: a rejected order
// returns a nil error and one of these in OrderResult.Reason.
const (
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	ReasonNoHoldings        = "NO_HOLDINGS"
	ReasonBankrupt          = "BANKRUPT"
	ReasonBadRequest        = "BAD_REQUEST"
)

type OrderRequest struct {
	Symbol   string
	Qty      int
	Side     Side
	Price    float64
	Origin   Origin
	StopLoss *float64
	Target   *float64
}

type OrderResult struct {
	Accepted bool
	OrderID  string
	Reason   string

	// Fill details, meaningful only when Accepted. Qty may be lower than
	// requested when an automated sell is clamped to the held quantity.
	Qty        int
	Charges    float64
	CashDelta  float64
	RealizedPL float64 // set on position-reducing sells
}

type Broker interface {
	Balance() float64
	Portfolio(origin Origin) (map[string]int, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}
