package game

import "slices"

// Undo returns the most recently selected card to where it came from. It is
// available MaxUndos times per game and only while that card is not part of
// a pending match.
func (g *Game) Undo() {
	g.run(func() {
		if !g.ready("undo") {
			return
		}
		if g.undos >= g.cfg.MaxUndos || g.last < 0 || g.isPending(g.last) {
			return
		}

		b := g.board
		idx := g.last
		pos := b.handPosition(idx)
		if pos < 0 {
			g.logger.Warn("Undo target is no longer in the hand", "card", b.card(idx).ID)
			g.last = -1
			g.refreshFlags()
			return
		}

		g.undos++
		g.last = -1
		b.hand = slices.Delete(b.hand, pos, pos+1)

		c := b.card(idx)
		if c.InReserve() {
			g.returnToReserve(idx)
		} else {
			if g.cfg.ConsumeOnSelect {
				b.field = append(b.field, idx)
			}
			if g.lastEpoch != g.epoch {
				relink(b, idx)
			}
			c.State = Covered
			updateState(b)
		}

		g.dirty = true
		g.logger.Debug("Undo", "card", c.ID, "undos", g.undos)
		g.refreshFlags()
	})
}

// relink rebuilds one card's occlusion edges against the live field, used
// when the layout was reshuffled while the card was out of play. Side-stack
// cards never move, so their pile edges stand.
func relink(b *Board, idx int) {
	c := b.card(idx)
	if c.Stack != StackNone {
		return
	}
	c.Parents = nil
	for _, other := range b.fieldCards() {
		o := b.card(other)
		if other == idx || o.Stack != StackNone {
			continue
		}
		if !overlaps(c.Position, o.Position) {
			continue
		}
		switch {
		case o.Position.ZIndex > c.Position.ZIndex:
			c.Parents = append(c.Parents, other)
		case o.Position.ZIndex < c.Position.ZIndex && !slices.Contains(o.Parents, idx):
			o.Parents = append(o.Parents, idx)
		}
	}
}
