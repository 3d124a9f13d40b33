package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the trade journal and account state",
	Long: `Print the account balance, current portfolio, and recent fills from
the journal database. The journal is readable while the bot is running.

Example:
  sovereign journal --config bot.yaml --limit 20
  sovereign journal --export trades.csv`,
	RunE: runJournal,
}

var (
	journalLimit  int
	journalExport string
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 10, "number of recent fills to show")
	journalCmd.Flags().StringVar(&journalExport, "export", "", "write all fills to a CSV file and exit")
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	if journalExport != "" {
		f, err := os.Create(journalExport)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()

		if err := journal.ExportFillsCSV(store, f); err != nil {
			return fmt.Errorf("export fills: %w", err)
		}
		fmt.Printf("Fills exported to %s\n", journalExport)
		return nil
	}

	balance, score, found, err := store.LoadAccount()
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if !found {
		fmt.Println("No account yet. Run the bot first.")
		return nil
	}

	fmt.Printf("Balance: %.2f  (score %d)\n\n", balance, score)

	if stats, ok, err := store.LatestDailyStats(); err != nil {
		return err
	} else if ok {
		fmt.Printf("Day %s: pnl %.2f, %d trades, status %s", stats.Date, stats.PnL, stats.TradeCount, stats.Status)
		if stats.Cautious {
			fmt.Print(" (cautious)")
		}
		fmt.Println()
		fmt.Println()
	}

	portfolio, err := store.Portfolio("")
	if err != nil {
		return err
	}
	if len(portfolio) > 0 {
		fmt.Println("Portfolio:")
		for symbol, qty := range portfolio {
			fmt.Printf("  %-16s %6d\n", symbol, qty)
		}
		fmt.Println()
	}

	fills, err := store.ListFills(journalLimit)
	if err != nil {
		return err
	}
	if len(fills) == 0 {
		fmt.Println("No fills recorded.")
		return nil
	}

	fmt.Println("Recent fills:")
	for _, f := range fills {
		fmt.Printf("  %s  %-4s %-16s %6d @ %9.2f  charges %8.2f  cash %10.2f  [%s]\n",
			f.Time.Format(time.DateTime), f.Side, f.Symbol, f.Qty, f.Price, f.Charges, f.CashDelta, f.Origin)
	}
	return nil
}
