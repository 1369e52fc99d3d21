package game

import "slices"

// matchTag labels match timers on the clock so tests can trap them.
const matchTag = "match"

// pendingMatch is a triple waiting out the match delay.
type pendingMatch struct {
	cards []int
	gen   int
}

func (g *Game) isPending(idx int) bool {
	for _, m := range g.pending {
		if slices.Contains(m.cards, idx) {
			return true
		}
	}
	return false
}

// PendingMatches returns the number of triples awaiting resolution.
func (g *Game) PendingMatches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// scheduleMatch queues a triple for elimination. Matches are never
// cancelled within a game and resolve strictly in the order scheduled.
func (g *Game) scheduleMatch(cards []int) {
	m := &pendingMatch{cards: slices.Clone(cards), gen: g.gen}
	g.pending = append(g.pending, m)
	g.logger.Debug("Match scheduled", "type", g.board.card(cards[0]).Type, "pending", len(g.pending))

	if g.cfg.MatchDelay <= 0 {
		g.resolveNext()
		return
	}

	gen := g.gen
	timer := g.clock.AfterFunc(g.cfg.MatchDelay, func() {
		g.run(func() {
			if g.gen != gen {
				return
			}
			if len(g.timers) > 0 {
				g.timers = g.timers[1:]
			}
			g.resolveNext()
		})
	}, matchTag)
	g.timers = append(g.timers, timer)
}

// resolveNext eliminates the oldest pending triple and evaluates the
// terminal conditions.
func (g *Game) resolveNext() {
	if len(g.pending) == 0 {
		return
	}
	m := g.pending[0]
	g.pending = g.pending[1:]

	b := g.board
	for _, idx := range m.cards {
		b.hand = removeIndex(b.hand, idx)
		b.card(idx).State = Eliminated
	}
	g.last = -1
	updateState(b)

	if b.Win() {
		g.status = StatusWon
		g.logger.Info("Game won", "id", g.id)
		g.emit(EventTypeWin, "")
	} else {
		g.emit(EventTypeDrop, b.card(m.cards[2]).ID)
	}
	g.refreshFlags()
}
