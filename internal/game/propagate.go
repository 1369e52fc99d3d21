package game

// updateState recomputes Covered/Clickable for every field card from its
// parents. A parent blocks only while it is itself on the field; hand and
// eliminated cards never block. Cards off the field are left untouched.
func updateState(b *Board) {
	for _, idx := range b.field {
		c := b.cards[idx]
		if !c.State.OnField() {
			continue
		}
		c.State = derivedState(b, c)
	}
}

func derivedState(b *Board, c *Card) State {
	for _, p := range c.Parents {
		if b.cards[p].State.OnField() {
			return Covered
		}
	}
	return Clickable
}
