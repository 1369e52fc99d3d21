package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/env"
	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/randutil"
)

// EpisodeCmd drives the agent environment with a bot strategy.
type EpisodeCmd struct {
	Strategy string `default:"greedy" help:"Bot strategy choosing actions (first, random, greedy)"`
	Seed     int64  `help:"Board seed (0 for random)"`
	CardNum  int    `default:"18" help:"Number of card types"`
	MaxSteps int    `default:"1000" help:"Stop after this many steps"`
}

func (c *EpisodeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.logger(cfg, nil)

	seed := randutil.Seed(c.Seed)
	e, err := env.New(env.Config{
		CardNum: c.CardNum,
		Trap:    *cfg.Game.Trap,
		Width:   cfg.Game.Width,
		Height:  cfg.Game.Height,
		Seed:    seed,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	strategy, err := bot.New(c.Strategy, randutil.New(seed), logger)
	if err != nil {
		return err
	}

	total, steps := runEpisode(e, strategy, c.MaxSteps)
	logger.Info("Episode finished", "seed", seed, "steps", steps, "reward", total)
	return printEpisode(os.Stdout, e, total, steps)
}

// runEpisode plays until the episode ends, the strategy passes or maxSteps
// is reached. Helper moves go straight to the game and earn no reward.
func runEpisode(e *env.Env, strategy bot.Strategy, maxSteps int) (float64, int) {
	var total float64
	steps := 0
	for ; steps < maxSteps && !e.Done(); steps++ {
		s := e.Game().Snapshot()
		move := strategy.Next(s)
		switch move.Kind {
		case bot.Pass:
			return total, steps
		case bot.Select:
			r, _ := e.Step(nodeIndex(s, move.CardID))
			total += r
		default:
			bot.Apply(e.Game(), move)
		}
	}
	return total, steps
}

func nodeIndex(s game.Snapshot, id string) int {
	for i, n := range s.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func printEpisode(w io.Writer, e *env.Env, total float64, steps int) error {
	if err := e.Render(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Status: %s  Steps: %d  Reward: %.1f\n", e.Game().Snapshot().Status, steps, total)
	return err
}
