package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/simulator"
)

// SimulateCmd plays headless games with a bot strategy.
type SimulateCmd struct {
	Games    int    `help:"Number of games, overriding the config file"`
	Strategy string `help:"Bot strategy (first, random, greedy), overriding the config file"`
	Workers  int    `help:"Parallel workers (0 for the config file or CPU count)"`
	Seed     int64  `help:"Base seed (0 for the config file or random)"`
	CardNum  int    `help:"Number of card types, overriding the config file"`
	Report   string `type:"path" help:"Write a JSON report to this path"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.logger(cfg, nil)

	sim := cfg.Simulation
	gameCfg := cfg.GameConfig()
	simCfg := simulator.Config{
		Games:       pick(c.Games, sim.Games),
		Strategy:    sim.Strategy,
		Seed:        pick(c.Seed, sim.Seed),
		Workers:     pick(c.Workers, sim.Workers),
		CardNum:     pick(c.CardNum, gameCfg.CardNum),
		Trap:        gameCfg.Trap,
		ShuffleMode: gameCfg.ShuffleMode,
		Logger:      logger,
	}
	if c.Strategy != "" {
		simCfg.Strategy = c.Strategy
	}
	if size, ok := gameCfg.Container.(game.Size); ok {
		simCfg.Width, simCfg.Height = size.Width, size.Height
	}
	if simCfg.Seed == 0 {
		simCfg.Seed = time.Now().UnixNano()
	}
	report := c.Report
	if report == "" {
		report = sim.Report
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("Starting simulation",
		"games", simCfg.Games,
		"strategy", simCfg.Strategy,
		"seed", simCfg.Seed,
		"card_num", simCfg.CardNum)

	s := simulator.New(simCfg)
	start := time.Now()
	stats, err := s.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation finished", "duration", time.Since(start).Round(time.Millisecond))

	simulator.PrintSummary(os.Stdout, stats, simCfg.Strategy)

	if report != "" {
		if err := simulator.WriteReport(report, s.NewReport(stats)); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", report)
	}
	return nil
}

// pick returns flag when it is set, otherwise fallback.
func pick[T comparable](flag, fallback T) T {
	var zero T
	if flag != zero {
		return flag
	}
	return fallback
}
