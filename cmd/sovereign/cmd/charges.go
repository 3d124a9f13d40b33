package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/taxes"
)

var chargesCmd = &cobra.Command{
	Use:   "charges",
	Short: "Compute transaction charges for a hypothetical trade",
	Long: `Show the full charge breakdown, breakeven price, and target sell
price for a hypothetical buy/sell pair, without touching the ledger.

Example:
  sovereign charges --buy 100 --sell 110 --qty 100 --target 0.05`,
	RunE: runCharges,
}

var (
	chargesBuy    float64
	chargesSell   float64
	chargesQty    int
	chargesTarget float64
)

func init() {
	rootCmd.AddCommand(chargesCmd)

	chargesCmd.Flags().Float64Var(&chargesBuy, "buy", 0, "buy price (required)")
	chargesCmd.Flags().Float64Var(&chargesSell, "sell", 0, "sell price (0 for a buy-only leg)")
	chargesCmd.Flags().IntVar(&chargesQty, "qty", 0, "quantity (required)")
	chargesCmd.Flags().Float64Var(&chargesTarget, "target", 0.05, "desired net return fraction for the target price")
	chargesCmd.MarkFlagRequired("buy")
	chargesCmd.MarkFlagRequired("qty")
}

func runCharges(cmd *cobra.Command, args []string) error {
	if chargesBuy <= 0 || chargesQty <= 0 {
		return fmt.Errorf("buy price and quantity must be positive")
	}

	b := taxes.Compute(chargesBuy, chargesSell, chargesQty)

	fmt.Printf("Charges for %d @ %.2f", chargesQty, chargesBuy)
	if chargesSell > 0 {
		fmt.Printf(" -> %.2f", chargesSell)
	}
	fmt.Println()

	fmt.Printf("  STT:              %10.2f\n", b.STT)
	fmt.Printf("  Stamp Duty:       %10.2f\n", b.StampDuty)
	fmt.Printf("  Exchange Fee:     %10.2f\n", b.ExchangeFee)
	fmt.Printf("  SEBI Fee:         %10.2f\n", b.SEBIFee)
	fmt.Printf("  GST:              %10.2f\n", b.GST)
	fmt.Printf("  DP Charge:        %10.2f\n", b.DPCharge)
	fmt.Printf("  Total Charges:    %10.2f\n", b.TotalCharges)

	if chargesSell > 0 {
		fmt.Println()
		fmt.Printf("  Gross Profit:     %10.2f\n", b.GrossProfit)
		fmt.Printf("  Net (pre-tax):    %10.2f\n", b.NetProfitPreTax)
		fmt.Printf("  Income Tax:       %10.2f\n", b.IncomeTax)
		fmt.Printf("  Net (in hand):    %10.2f\n", b.NetProfitFinal)
	}

	fmt.Println()
	fmt.Printf("  Breakeven sell:   %10.2f\n", taxes.BreakevenSellPrice(chargesBuy, chargesQty))
	fmt.Printf("  Target sell (%2.0f%%): %8.2f\n",
		chargesTarget*100, taxes.TargetSellPrice(chargesBuy, chargesQty, chargesTarget))

	return nil
}
