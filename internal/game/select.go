package game

import "slices"

// Select moves a clickable field card into the hand. Unknown or blocked
// cards are logged and ignored; a full hand or finished game is a silent
// no-op.
func (g *Game) Select(id string) {
	g.run(func() {
		if !g.ready("select") {
			return
		}
		idx, ok := g.board.lookup(id)
		if !ok {
			g.logger.Warn("Select of unknown card", "card", id)
			return
		}
		c := g.board.card(idx)
		if !g.board.inField(idx) || !c.State.OnField() {
			g.logger.Warn("Select of card not on the field", "card", id, "state", c.State)
			return
		}
		if c.State != Clickable {
			g.logger.Warn("Select of covered card", "card", id)
			return
		}
		g.selectCard(idx)
	})
}

// selectCard performs the hand insertion shared by field and reserve
// selection.
func (g *Game) selectCard(idx int) {
	b := g.board
	if len(b.hand) >= HandCapacity {
		return
	}

	c := b.card(idx)
	c.State = InHand
	if g.cfg.ConsumeOnSelect {
		b.field = removeIndex(b.field, idx)
	}
	g.last = idx
	g.lastEpoch = g.epoch

	// Keep same-type cards contiguous: insert after the last one.
	pos := len(b.hand)
	for i := len(b.hand) - 1; i >= 0; i-- {
		if b.card(b.hand[i]).Type == c.Type {
			pos = i + 1
			break
		}
	}
	b.hand = slices.Insert(b.hand, pos, idx)
	g.dirty = true
	updateState(b)

	var run []int
	for _, h := range b.hand {
		if b.card(h).Type == c.Type && !g.isPending(h) {
			run = append(run, h)
		}
	}

	if len(run) == 3 {
		g.scheduleMatch(run)
		g.refreshFlags()
		return
	}

	g.emit(EventTypeClick, c.ID)
	if len(b.hand) == HandCapacity && len(g.pending) == 0 {
		g.status = StatusLost
		g.logger.Info("Game lost", "id", g.id)
		g.emit(EventTypeLose, c.ID)
	}
	g.refreshFlags()
}
