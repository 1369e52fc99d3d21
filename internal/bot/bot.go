// Package bot chooses moves from a game snapshot. Strategies back the hint
// endpoint, the simulator and the agent environment's baselines.
package bot

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/triplestack/internal/game"
)

// Kind is the action a Move performs.
type Kind int

const (
	// Pass means the strategy has nothing useful to do.
	Pass Kind = iota
	Select
	SelectReserve
	Undo
	Discard
	Shuffle
)

func (k Kind) String() string {
	switch k {
	case Select:
		return "select"
	case SelectReserve:
		return "select_reserve"
	case Undo:
		return "undo"
	case Discard:
		return "discard"
	case Shuffle:
		return "shuffle"
	default:
		return "pass"
	}
}

// Move is one decision. CardID is set for Select and SelectReserve.
type Move struct {
	Kind   Kind
	CardID string
	Type   int
}

// Strategy picks the next move for a snapshot.
type Strategy interface {
	Name() string
	Next(s game.Snapshot) Move
}

// ErrUnknownStrategy is returned by New for an unrecognised name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Names lists the strategies New accepts.
func Names() []string {
	return []string{"first", "random", "greedy"}
}

// New builds the named strategy. rng is only used by strategies that need
// randomness.
func New(name string, rng *rand.Rand, logger *log.Logger) (Strategy, error) {
	switch name {
	case "first":
		return NewFirstBot(), nil
	case "random":
		return NewRandBot(rng, logger), nil
	case "greedy":
		return NewGreedyBot(logger), nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownStrategy, name, Names())
	}
}

// Apply performs m on g.
func Apply(g *game.Game, m Move) {
	switch m.Kind {
	case Select:
		g.Select(m.CardID)
	case SelectReserve:
		g.SelectFromReserve(m.CardID)
	case Undo:
		g.Undo()
	case Discard:
		g.Discard()
	case Shuffle:
		g.Shuffle()
	}
}

// candidates returns every card the player could take right now: clickable
// field cards followed by the reserve display.
func candidates(s game.Snapshot) []Move {
	var out []Move
	for _, c := range s.Clickable() {
		out = append(out, Move{Kind: Select, CardID: c.ID, Type: c.Type})
	}
	if len(s.SelectedNodes) < game.HandCapacity {
		for _, c := range s.RemoveList {
			out = append(out, Move{Kind: SelectReserve, CardID: c.ID, Type: c.Type})
		}
	}
	return slices.Clip(out)
}
