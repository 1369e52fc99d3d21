package game

// Shuffle redistributes the cards still in play according to the configured
// ShuffleMode. The hand is never touched.
func (g *Game) Shuffle() {
	g.run(func() {
		if !g.ready("shuffle") {
			return
		}
		switch g.cfg.ShuffleMode {
		case ShuffleTypes:
			g.shuffleTypes()
		default:
			g.shufflePositions()
		}
	})
}

// shufflePositions permutes positions among main-field cards, leaving the
// side stacks in their slots, then rebuilds occlusion from scratch.
func (g *Game) shufflePositions() {
	b := g.board
	var eligible []int
	for _, idx := range b.fieldCards() {
		if b.card(idx).Stack == StackNone {
			eligible = append(eligible, idx)
		}
	}
	if len(eligible) < 2 {
		g.logger.Debug("Not enough cards to shuffle", "eligible", len(eligible))
		return
	}

	positions := make([]Position, len(eligible))
	for i, idx := range eligible {
		positions[i] = b.card(idx).Position
	}
	g.rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	for i, idx := range eligible {
		b.card(idx).Position = positions[i]
	}

	rebuildOcclusion(b)
	updateState(b)
	g.epoch++
	g.dirty = true
	g.logger.Debug("Shuffled positions", "cards", len(eligible))
	g.refreshFlags()
}

// shuffleTypes permutes types among field cards in play and the reserve
// display. Positions and occlusion stay as they are.
func (g *Game) shuffleTypes() {
	b := g.board
	eligible := append(b.fieldCards(), b.reserve...)
	if len(eligible) < 2 {
		return
	}

	types := make([]int, len(eligible))
	for i, idx := range eligible {
		types[i] = b.card(idx).Type
	}
	g.rng.Shuffle(len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})
	for i, idx := range eligible {
		c := b.card(idx)
		c.Type = types[i]
		if c.InReserve() {
			b.history[*c.SetIndex][*c.PositionInSet].Type = c.Type
		}
	}

	g.dirty = true
	g.logger.Debug("Shuffled types", "cards", len(eligible))
	g.refreshFlags()
}

// rebuildOcclusion recomputes the parents of every pyramid card pairwise:
// an overlapping pyramid card with a strictly higher z-index blocks the
// lower one. Side-stack cards keep their pile order and never block or get
// blocked by pyramid cards. Pyramid cards no longer on the field lose their
// edges.
func rebuildOcclusion(b *Board) {
	var live []int
	for _, idx := range b.field {
		c := b.card(idx)
		if c.Stack != StackNone {
			continue
		}
		c.Parents = nil
		if c.State.OnField() {
			live = append(live, idx)
		}
	}
	for _, i := range live {
		child := b.card(i)
		for _, j := range live {
			if i == j {
				continue
			}
			parent := b.card(j)
			if parent.Position.ZIndex > child.Position.ZIndex && overlaps(parent.Position, child.Position) {
				child.Parents = append(child.Parents, j)
			}
		}
	}
}
