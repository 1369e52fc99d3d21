package bot

import "github.com/lox/triplestack/internal/game"

// FirstBot takes the first available card in snapshot order.
type FirstBot struct{}

// NewFirstBot creates a FirstBot.
func NewFirstBot() *FirstBot {
	return &FirstBot{}
}

func (FirstBot) Name() string { return "first" }

func (FirstBot) Next(s game.Snapshot) Move {
	if c := candidates(s); len(c) > 0 {
		return c[0]
	}
	return Move{Kind: Pass}
}
