package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/triplestack/internal/game"
)

// RandBot takes a uniformly random available card.
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger.WithPrefix("randbot")}
}

func (r *RandBot) Name() string { return "random" }

func (r *RandBot) Next(s game.Snapshot) Move {
	c := candidates(s)
	if len(c) == 0 {
		return Move{Kind: Pass}
	}
	m := c[r.rng.IntN(len(c))]
	r.logger.Debug("Random pick", "kind", m.Kind, "card", m.CardID, "of", len(c))
	return m
}
