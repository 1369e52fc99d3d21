package bot

import (
	"github.com/charmbracelet/log"

	"github.com/lox/triplestack/internal/game"
)

// GreedyBot prefers cards that complete or extend a run in the hand, then
// cards that uncover the most of the board. When the next card would fill
// the hand without matching it spends a discard first.
type GreedyBot struct {
	logger *log.Logger
}

// NewGreedyBot creates a GreedyBot.
func NewGreedyBot(logger *log.Logger) *GreedyBot {
	return &GreedyBot{logger: logger.WithPrefix("greedybot")}
}

func (g *GreedyBot) Name() string { return "greedy" }

func (g *GreedyBot) Next(s game.Snapshot) Move {
	cands := candidates(s)
	if len(cands) == 0 {
		return Move{Kind: Pass}
	}

	held := make(map[int]int)
	for _, c := range s.SelectedNodes {
		held[c.Type]++
	}
	for t, n := range held {
		held[t] = n % 3
	}

	onField := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		onField[n.ID] = n.State == game.Covered.String() || n.State == game.Clickable.String()
	}

	best, bestScore := cands[0], -1<<31
	for _, m := range cands {
		score := held[m.Type] * 100
		if m.Kind == Select {
			score += 10 * uncovers(s, m.CardID, onField)
		} else {
			score += 5
		}
		if held[m.Type] == 0 {
			score -= 50 * max(0, len(s.SelectedNodes)-4)
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}

	if held[best.Type] == 0 && len(s.SelectedNodes) >= game.HandCapacity-1 && s.CanDiscard {
		g.logger.Debug("Discarding before a risky pick", "hand", len(s.SelectedNodes))
		return Move{Kind: Discard}
	}

	g.logger.Debug("Greedy pick", "kind", best.Kind, "card", best.CardID, "score", bestScore)
	return best
}

// uncovers counts covered cards whose only remaining blocker is id.
func uncovers(s game.Snapshot, id string, onField map[string]bool) int {
	n := 0
	for _, c := range s.Nodes {
		if c.State != game.Covered.String() {
			continue
		}
		blockedOnlyByID := false
		for _, p := range c.Parents {
			if !onField[p] {
				continue
			}
			if p != id {
				blockedOnlyByID = false
				break
			}
			blockedOnlyByID = true
		}
		if blockedOnlyByID {
			n++
		}
	}
	return n
}
