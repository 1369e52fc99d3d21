package game

import (
	"slices"

	"github.com/google/uuid"
)

// Discard moves the first three free hand cards into the reserve as a new
// committed triple. It needs at least three cards not already waiting on a
// match and is available MaxDiscards times per game.
func (g *Game) Discard() {
	g.run(func() {
		if !g.ready("discard") {
			return
		}
		if g.discards >= g.cfg.MaxDiscards {
			return
		}
		free := g.freeHand()
		if len(free) < 3 {
			return
		}

		b := g.board
		g.discards++
		setIndex := len(b.history)
		set := make(ReserveSet, 3)
		for p, idx := range free[:3] {
			c := b.card(idx)
			set[p] = ReserveSlot{Type: c.Type, Position: c.Position, SourceID: c.ID}
			c.State = Discarded
			b.hand = removeIndex(b.hand, idx)
			if idx == g.last {
				g.last = -1
			}
		}
		b.history = append(b.history, set)

		display := make([]int, 0, len(set))
		for p := range set {
			display = append(display, g.newReserveEntity(setIndex, p))
		}
		b.reserve = display

		// A reserve card can only be undone back onto the display it came
		// from, which has just been replaced.
		if g.last >= 0 && b.card(g.last).InReserve() {
			g.last = -1
		}

		g.dirty = true
		g.logger.Debug("Discard", "set", setIndex, "discards", g.discards)
		g.refreshFlags()
	})
}

// SelectFromReserve plays the top card of a reserve slot. The slot is
// refilled from the nearest earlier triple whose card at the same position
// is still in the reserve, or left empty.
func (g *Game) SelectFromReserve(id string) {
	g.run(func() {
		if !g.ready("selectFromReserve") {
			return
		}
		b := g.board
		idx, ok := b.lookup(id)
		if !ok {
			g.logger.Warn("Reserve select of unknown card", "card", id)
			return
		}
		c := b.card(idx)
		if !c.InReserve() {
			g.logger.Warn("Reserve select of card without reserve bookkeeping", "card", id)
			return
		}
		pos := b.reservePosition(idx)
		if pos < 0 {
			g.logger.Warn("Reserve select of card not on display", "card", id)
			return
		}
		if len(b.hand) >= HandCapacity {
			return
		}

		setIndex, slot := *c.SetIndex, *c.PositionInSet
		b.history[setIndex][slot].Played = true
		b.reserve = slices.Delete(b.reserve, pos, pos+1)

		if prev := g.previousUnplayed(setIndex, slot); prev >= 0 {
			g.insertReserve(g.newReserveEntity(prev, slot))
		}

		g.selectCard(idx)
	})
}

// previousUnplayed finds the nearest set before setIndex whose card at slot
// has not been played, or -1.
func (g *Game) previousUnplayed(setIndex, slot int) int {
	for k := setIndex - 1; k >= 0; k-- {
		set := g.board.history[k]
		if slot < len(set) && !set[slot].Played {
			return k
		}
	}
	return -1
}

// newReserveEntity copies a history slot into a fresh clickable card.
func (g *Game) newReserveEntity(setIndex, slot int) int {
	s := g.board.history[setIndex][slot]
	return g.board.add(&Card{
		ID:            "reserve-" + uuid.NewString(),
		Type:          s.Type,
		Index:         slot,
		Position:      s.Position,
		State:         Clickable,
		SetIndex:      intPtr(setIndex),
		PositionInSet: intPtr(slot),
	})
}

// insertReserve places a reserve card in display order by slot, replacing
// anything already shown in that slot.
func (g *Game) insertReserve(idx int) {
	b := g.board
	slot := *b.card(idx).PositionInSet
	b.reserve = slices.DeleteFunc(b.reserve, func(r int) bool {
		return *b.card(r).PositionInSet == slot
	})
	at := len(b.reserve)
	for i, r := range b.reserve {
		if *b.card(r).PositionInSet > slot {
			at = i
			break
		}
	}
	b.reserve = slices.Insert(b.reserve, at, idx)
}

// returnToReserve puts an undone reserve card back on top of its slot. The
// history slot becomes unplayed again.
func (g *Game) returnToReserve(idx int) {
	c := g.board.card(idx)
	g.board.history[*c.SetIndex][*c.PositionInSet].Played = false
	c.State = Clickable
	g.insertReserve(idx)
}
