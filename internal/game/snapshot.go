package game

// CardView is the read-only presentation of a card.
type CardView struct {
	ID   string `json:"id"`
	Type int    `json:"type"`
	// State is one of covered, clickable, in_hand, eliminated or discarded.
	// Only hand cards report in_hand; a field card moved to the reserve
	// reports discarded.
	State string `json:"state"`
	Stack string `json:"stack"`
	Position
	Parents       []string `json:"parents,omitempty"`
	CanClick      bool     `json:"canClick"`
	SetIndex      *int     `json:"setIndex,omitempty"`
	PositionInSet *int     `json:"positionInSet,omitempty"`
}

// Snapshot is the externally visible game state after an operation has
// completed. JSON names follow the presentation layer's vocabulary.
type Snapshot struct {
	GameID         string     `json:"gameId"`
	Status         Status     `json:"status"`
	Trap           bool       `json:"trap"`
	Nodes          []CardView `json:"nodes"`
	SelectedNodes  []CardView `json:"selectedNodes"`
	RemoveList     []CardView `json:"removeList"`
	CanUndo        bool       `json:"canUndo"`
	CanDiscard     bool       `json:"canDiscard"`
	UndoCount      int        `json:"backCount"`
	DiscardCount   int        `json:"removeCount"`
	MaxUndos       int        `json:"maxBackCount"`
	MaxDiscards    int        `json:"maxRemoveCount"`
	PendingMatches int        `json:"pendingMatches"`
}

// Clickable returns the field cards that can currently be selected.
func (s Snapshot) Clickable() []CardView {
	var out []CardView
	for _, c := range s.Nodes {
		if c.CanClick {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		GameID:         g.id,
		Status:         g.status,
		CanUndo:        g.canUndo,
		CanDiscard:     g.canDiscard,
		UndoCount:      g.undos,
		DiscardCount:   g.discards,
		MaxUndos:       g.cfg.MaxUndos,
		MaxDiscards:    g.cfg.MaxDiscards,
		PendingMatches: len(g.pending),
	}
	b := g.board
	if b == nil {
		return s
	}
	s.Trap = b.trap
	s.Nodes = g.views(b.field)
	s.SelectedNodes = g.views(b.hand)
	s.RemoveList = g.views(b.reserve)
	return s
}

func (g *Game) views(list []int) []CardView {
	b := g.board
	out := make([]CardView, 0, len(list))
	for _, idx := range list {
		c := b.card(idx)
		v := CardView{
			ID:       c.ID,
			Type:     c.Type,
			State:    c.State.String(),
			Stack:    c.Stack.String(),
			Position: c.Position,
			CanClick: c.State == Clickable,
		}
		if c.InReserve() {
			v.SetIndex = intPtr(*c.SetIndex)
			v.PositionInSet = intPtr(*c.PositionInSet)
		}
		for _, p := range c.Parents {
			v.Parents = append(v.Parents, b.card(p).ID)
		}
		out = append(out, v)
	}
	return out
}
