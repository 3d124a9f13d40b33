// Package taxes computes exact Indian equity-delivery transaction costs.
//
// The schedule follows the Union Budget 2025-26 rates. Everything here is
// pure: the broker calls Compute for real debits/credits and the sizing
// helpers call it for what-if searches without touching the ledger.
package taxes

// Government and exchange rates, as fractions of turnover.
const (
	STTRate          = 0.001     // 0.1% on buy and sell (equity delivery)
	StampDutyRate    = 0.00015   // 0.015% on buy only
	ExchangeTxnRate  = 0.0000345 // NSE transaction charge, combined turnover
	SEBITurnoverRate = 0.000001  // SEBI fee, combined turnover
	GSTRate          = 0.18      // on service charges, not on capital levies
	STCGRate         = 0.20      // short-term capital gains, profits only
)

// Broker-specific charges (discount broker, delivery).
const (
	DPChargeSell = 12.50 // flat CDSL/NSDL fee per sell order, GST extra
	Brokerage    = 0.0
)

// Breakdown is the full cost and profit decomposition of a buy/sell pair.
type Breakdown struct {
	STT         float64
	StampDuty   float64
	ExchangeFee float64
	SEBIFee     float64
	GST         float64
	DPCharge    float64 // includes its own GST

	TotalCharges    float64
	GrossProfit     float64
	NetProfitPreTax float64
	IncomeTax       float64
	NetProfitFinal  float64
}

// Compute returns the charge breakdown for buying qty at buyPrice and selling
// at sellPrice. A zero sellPrice prices a buy-only leg; the sell-side flat
// DP charge applies only when sell turnover is present.
func Compute(buyPrice, sellPrice float64, qty int) Breakdown {
	turnoverBuy := buyPrice * float64(qty)
	turnoverSell := sellPrice * float64(qty)

	var b Breakdown

	b.STT = (turnoverBuy + turnoverSell) * STTRate
	b.StampDuty = turnoverBuy * StampDutyRate
	b.ExchangeFee = (turnoverBuy + turnoverSell) * ExchangeTxnRate
	b.SEBIFee = (turnoverBuy + turnoverSell) * SEBITurnoverRate

	// GST applies to service charges only. STT and stamp duty are exempt.
	b.GST = (b.ExchangeFee + b.SEBIFee + Brokerage) * GSTRate

	if turnoverSell > 0 {
		b.DPCharge = DPChargeSell * (1 + GSTRate)
	}

	b.TotalCharges = b.STT + b.StampDuty + b.ExchangeFee + b.SEBIFee + b.GST + b.DPCharge

	b.GrossProfit = turnoverSell - turnoverBuy
	b.NetProfitPreTax = b.GrossProfit - b.TotalCharges

	if b.NetProfitPreTax > 0 {
		b.IncomeTax = b.NetProfitPreTax * STCGRate
	}
	b.NetProfitFinal = b.NetProfitPreTax - b.IncomeTax

	return b
}

// Search parameters for the price-target helpers. Prices move in 5 paise
// steps; the iteration bound keeps pathological inputs from spinning.
const (
	searchStep    = 0.05
	searchMaxIter = 10000
)

// BreakevenSellPrice returns the minimum sell price at which the round trip
// stops losing money (net profit before income tax >= 0). The search starts
// just above the buy price and returns its best estimate if the iteration
// bound is exhausted.
func BreakevenSellPrice(buyPrice float64, qty int) float64 {
	if qty <= 0 {
		return buyPrice
	}

	sellPrice := buyPrice * 1.001
	for i := 0; i < searchMaxIter; i++ {
		if Compute(buyPrice, sellPrice, qty).NetProfitPreTax > 0 {
			return sellPrice
		}
		sellPrice += searchStep
	}
	return sellPrice
}

// TargetSellPrice returns the sell price needed for a net, post-tax profit of
// netFraction times the invested capital. The search starts from an estimate
// that already covers the flat STCG rate, so only charges remain to walk over.
func TargetSellPrice(buyPrice float64, qty int, netFraction float64) float64 {
	if qty <= 0 || buyPrice <= 0 {
		return 0
	}

	desired := buyPrice * float64(qty) * netFraction

	sellPrice := buyPrice * (1 + netFraction/(1-STCGRate))
	for i := 0; i < searchMaxIter; i++ {
		if Compute(buyPrice, sellPrice, qty).NetProfitFinal >= desired {
			return sellPrice
		}
		sellPrice += searchStep
	}
	return sellPrice
}
