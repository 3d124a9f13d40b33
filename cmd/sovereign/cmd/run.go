package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/broker/paper"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/config"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/journal"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/market"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/risk"
	"github.com/kxrthk/Sovereign-trading-Bot---Antigravity/swarm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading swarm",
	Long: `Launch one scanning worker per watchlist symbol and trade signals
through the serialized arbitrator until interrupted.

The signal source URL must point at a service answering
GET /analyze?symbol=SYM with a JSON verdict. Touch the kill-switch file
(STOP.flag by default) to pause order approval without stopping the
process; remove it to resume.

Example:
  sovereign run --config bot.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func loadConfig() (*config.Config, error) {
	if runConfigPath == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.LoadFromFile(runConfigPath)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Source.URL == "" {
		return fmt.Errorf("source.url must be set to run the swarm")
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

	manager, err := risk.NewManager(store, risk.Limits{
		MaxDailyLoss:      cfg.Risk.MaxDailyLoss,
		DailyProfitTarget: cfg.Risk.DailyProfitTarget,
		MaxTradeAmount:    cfg.Risk.MaxTradeAmount,
		MinConfidence:     cfg.Risk.MinConfidence,
		MaxTradesPerDay:   cfg.Risk.MaxTradesPerDay,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("start risk manager: %w", err)
	}

	timeout, err := cfg.Source.ParseTimeout()
	if err != nil {
		return err
	}
	source := swarm.NewGuardedSource(swarm.NewHTTPSource(cfg.Source.URL), cfg.Source.RPS, timeout)

	sched := market.NewSchedule(cfg.Market.Override)
	hive := swarm.NewHive(engine, manager, cfg.KillSwitch, log.Logger)

	log.Info().
		Int("watchlist", len(cfg.Watchlist)).
		Float64("balance", engine.Balance()).
		Str("market", sched.Status(sched.Now())).
		Msg("engaging autonomous trading systems")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	swarm.New(cfg.Watchlist, hive, source, sched, log.Logger).Run(ctx)

	log.Info().Float64("balance", engine.Balance()).Msg("shutdown complete")
	return nil
}
