package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/randutil"
	"github.com/lox/triplestack/internal/tui"
)

// PlayCmd starts an interactive game in the terminal.
type PlayCmd struct {
	CardNum int    `help:"Number of card types, overriding the config file"`
	Seed    int64  `help:"Board seed (0 for random)"`
	Hint    string `default:"greedy" help:"Strategy used for hints (first, random, greedy, or none)"`
	LogFile string `type:"path" help:"Write logs to this file instead of discarding them"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := g.logger(cfg, out)

	gameCfg := cfg.GameConfig()
	gameCfg.Seed = randutil.Seed(c.Seed)
	gameCfg.Logger = logger
	if c.CardNum > 0 {
		gameCfg.CardNum = c.CardNum
	}

	gm, err := game.New(gameCfg)
	if err != nil {
		return err
	}

	var hint bot.Strategy
	if c.Hint != "none" {
		hint, err = bot.New(c.Hint, randutil.New(gameCfg.Seed), logger)
		if err != nil {
			return err
		}
	}

	logger.Info("Starting interactive game", "id", gm.ID(), "seed", gameCfg.Seed)
	return tui.Run(gm, hint, logger)
}
