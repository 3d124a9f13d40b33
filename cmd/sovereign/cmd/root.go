package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sovereign",
	Short: "An autonomous paper-trading agent for NSE equities",
	Long: `Sovereign is an autonomous trading agent for NSE equity delivery.

It scans a watchlist concurrently, turns external buy/sell signals into
risk-checked paper orders, and keeps an exact account ledger with real
Indian transaction charges (STT, stamp duty, exchange fees, GST, DP
charges, STCG) deducted on every fill.

Hard safety limits are enforced before every order: a daily loss cap, a
daily profit target, a per-trade budget, a trade-count cap, and a
confidence bar that rises after a losing day.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(func() {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).Level(level)
	})
}
