package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker/paper"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Place a manual paper order",
	Long: `Place a single paper order against the journal, tagged MANUAL so
automated and manual activity stay separable. Manual sells may go short;
the bot itself never can.

Example:
  sovereign order --symbol ITC.NS --side BUY --qty 10 --price 412.50`,
	RunE: runOrder,
}

var (
	orderSymbol string
	orderSide   string
	orderQty    int
	orderPrice  float64
	orderStop   float64
	orderTarget float64
)

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	orderCmd.Flags().StringVar(&orderSymbol, "symbol", "", "symbol to trade (required)")
	orderCmd.Flags().StringVar(&orderSide, "side", "", "BUY or SELL (required)")
	orderCmd.Flags().IntVar(&orderQty, "qty", 0, "quantity (required)")
	orderCmd.Flags().Float64Var(&orderPrice, "price", 0, "fill price (required)")
	orderCmd.Flags().Float64Var(&orderStop, "stop", 0, "optional stop-loss price")
	orderCmd.Flags().Float64Var(&orderTarget, "target", 0, "optional target price")
	orderCmd.MarkFlagRequired("symbol")
	orderCmd.MarkFlagRequired("side")
	orderCmd.MarkFlagRequired("qty")
	orderCmd.MarkFlagRequired("price")
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	side := broker.Side(strings.ToUpper(orderSide))
	if side != broker.Buy && side != broker.Sell {
		return fmt.Errorf("side must be BUY or SELL, got %q", orderSide)
	}

	store, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	engine, err := paper.NewEngine(store, cfg.Account.Balance, log.Logger)
	if err != nil {
		return fmt.Errorf("start paper broker: %w", err)
	}

	req := broker.OrderRequest{
		Symbol: orderSymbol,
		Qty:    orderQty,
		Side:   side,
		Price:  orderPrice,
		Origin: broker.OriginManual,
	}
	if orderStop > 0 {
		req.StopLoss = &orderStop
	}
	if orderTarget > 0 {
		req.Target = &orderTarget
	}

	res, err := engine.PlaceOrder(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	if !res.Accepted {
		return fmt.Errorf("order rejected: %s", res.Reason)
	}

	fmt.Printf("Filled %s %d %s @ %.2f\n", side, res.Qty, orderSymbol, orderPrice)
	fmt.Printf("  Receipt:  %s\n", res.OrderID)
	fmt.Printf("  Charges:  %.2f\n", res.Charges)
	fmt.Printf("  Balance:  %.2f\n", engine.Balance())
	return nil
}
