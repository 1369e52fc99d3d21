package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_TripleOnDealtBoard(t *testing.T) {
	g, clock := newTestGame(t)
	rec := &eventRecorder{}
	g.Events().Subscribe(rec)

	// Find a type with three clickable cards.
	var ids []string
	byType := make(map[int][]string)
	for _, c := range g.Snapshot().Clickable() {
		byType[c.Type] = append(byType[c.Type], c.ID)
		if len(byType[c.Type]) == 3 {
			ids = byType[c.Type]
			break
		}
	}
	require.Len(t, ids, 3, "seeded board should expose a clickable triple")

	for _, id := range ids {
		g.Select(id)
	}
	s := g.Snapshot()
	assert.Len(t, s.SelectedNodes, 3)
	assert.Equal(t, 1, s.PendingMatches)
	assert.Equal(t, 2, rec.count(EventTypeClick))
	assert.Zero(t, rec.count(EventTypeDrop))

	fire(t, clock)

	s = g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Zero(t, s.PendingMatches)
	assert.Equal(t, 1, rec.count(EventTypeDrop))
	for _, n := range s.Nodes {
		for _, id := range ids {
			if n.ID == id {
				assert.Equal(t, Eliminated.String(), n.State)
			}
		}
	}
	requireOcclusionInvariant(t, g)
}

func TestSelect_InsertsAfterSameType(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 1, 3, 2)

	g.Select(ids[0])
	g.Select(ids[1])
	assert.Equal(t, []int{1, 2}, handTypes(g.Snapshot()))

	g.Select(ids[2])
	assert.Equal(t, []int{1, 1, 2}, handTypes(g.Snapshot()))

	g.Select(ids[3])
	g.Select(ids[4])
	s := g.Snapshot()
	assert.Equal(t, []int{1, 1, 2, 2, 3}, handTypes(s))
	assert.Equal(t, []string{ids[0], ids[2], ids[1], ids[4], ids[3]}, handIDs(s))
}

func TestSelect_RejectsInvalidTargets(t *testing.T) {
	g, _ := newTestGame(t)
	layPair(g, 1, 2)
	rec := &eventRecorder{}
	g.Events().Subscribe(rec)

	g.Select("missing")
	g.Select("bottom")
	assert.Empty(t, g.Snapshot().SelectedNodes)
	assert.Empty(t, rec.events)
	assert.Zero(t, rec.states)

	g.Select("top")
	g.Select("top")
	s := g.Snapshot()
	assert.Equal(t, []string{"top"}, handIDs(s))
	assert.Equal(t, 1, rec.count(EventTypeClick))
}

func TestSelect_RevealsCardBeneath(t *testing.T) {
	g, _ := newTestGame(t)
	layPair(g, 1, 2)

	before := g.Snapshot()
	require.Len(t, before.Clickable(), 1)
	assert.Equal(t, "top", before.Clickable()[0].ID)

	g.Select("top")
	after := g.Snapshot()
	require.Len(t, after.Clickable(), 1)
	assert.Equal(t, "bottom", after.Clickable()[0].ID)
	requireOcclusionInvariant(t, g)
}

func TestSelect_LoseOnFullHand(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4, 5, 6, 7, 8)
	lost := 0
	g.Events().Subscribe(Callbacks{Lose: func() { lost++ }})

	for _, id := range ids[:7] {
		g.Select(id)
	}
	s := g.Snapshot()
	assert.Equal(t, StatusLost, s.Status)
	assert.Len(t, s.SelectedNodes, HandCapacity)
	assert.Equal(t, 1, lost)

	g.Select(ids[7])
	g.Undo()
	g.Discard()
	s = g.Snapshot()
	assert.Len(t, s.SelectedNodes, HandCapacity)
	assert.Equal(t, 1, lost)
	assert.False(t, s.CanUndo)
	assert.False(t, s.CanDiscard)
}

func TestSelect_FullHandWithPendingMatchIsNotLost(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4, 5, 5, 5, 6)

	for _, id := range ids[:7] {
		g.Select(id)
	}
	s := g.Snapshot()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Len(t, s.SelectedNodes, HandCapacity)
	assert.Equal(t, 1, s.PendingMatches)

	// The hand is at capacity until the match resolves.
	g.Select(ids[7])
	assert.Len(t, g.Snapshot().SelectedNodes, HandCapacity)

	fire(t, clock)
	s = g.Snapshot()
	assert.Equal(t, []int{1, 2, 3, 4}, handTypes(s))

	g.Select(ids[7])
	assert.Equal(t, []int{1, 2, 3, 4, 6}, handTypes(g.Snapshot()))
}

func TestSelect_OverlappingMatches(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 1, 1, 2, 2, 2, 3)
	drops := 0
	g.Events().Subscribe(Callbacks{Drop: func() { drops++ }})

	for _, id := range ids[:6] {
		g.Select(id)
	}
	assert.Equal(t, 2, g.PendingMatches())

	g.Select(ids[6])
	assert.Len(t, g.Snapshot().SelectedNodes, 7)

	fire(t, clock)
	s := g.Snapshot()
	assert.Equal(t, []string{ids[6]}, handIDs(s))
	assert.Zero(t, s.PendingMatches)
	assert.Equal(t, 2, drops)
}

func TestSelect_FourthCardDuringPendingMatch(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 1, 1, 1)

	for _, id := range ids {
		g.Select(id)
	}
	s := g.Snapshot()
	assert.Equal(t, []int{1, 1, 1, 1}, handTypes(s))
	assert.Equal(t, 1, s.PendingMatches)

	fire(t, clock)
	assert.Equal(t, []string{ids[3]}, handIDs(g.Snapshot()))
}

func TestSelect_Win(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 3, 3, 3)
	won := 0
	g.Events().Subscribe(Callbacks{Win: func() { won++ }})

	for _, id := range ids {
		g.Select(id)
	}
	assert.Equal(t, StatusPlaying, g.Snapshot().Status)

	fire(t, clock)
	s := g.Snapshot()
	assert.Equal(t, StatusWon, s.Status)
	assert.Equal(t, 1, won)
}

func TestSelect_InlineMatches(t *testing.T) {
	g, _ := newTestGame(t, withInlineMatches)
	ids := layFlat(g, 1, 1, 1, 2)

	for _, id := range ids[:3] {
		g.Select(id)
	}
	s := g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Zero(t, s.PendingMatches)
	assert.Equal(t, StatusPlaying, s.Status)
}

func TestSelect_ConsumeOnSelect(t *testing.T) {
	g, _ := newTestGame(t, withConsume)
	ids := layFlat(g, 1, 2, 3)

	g.Select(ids[0])
	s := g.Snapshot()
	assert.Len(t, s.Nodes, 2)
	for _, n := range s.Nodes {
		assert.NotEqual(t, ids[0], n.ID)
	}

	g.Undo()
	assert.Len(t, g.Snapshot().Nodes, 3)
}

func TestSelect_StateEventAfterEachOperation(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2)

	var last Snapshot
	states := 0
	g.Events().Subscribe(subscriberFunc(func(e GameEvent) {
		if se, ok := e.(StateEvent); ok {
			states++
			last = se.Snapshot
		}
	}))

	g.Select(ids[0])
	assert.Equal(t, 1, states)
	assert.Equal(t, []string{ids[0]}, handIDs(last))

	g.Select(ids[1])
	assert.Equal(t, 2, states)
	assert.Len(t, last.SelectedNodes, 2)
}

func TestCallbacks_MayReenterGame(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2)

	var seen int
	g.Events().Subscribe(Callbacks{Click: func() {
		seen = len(g.Snapshot().SelectedNodes)
	}})

	g.Select(ids[0])
	assert.Equal(t, 1, seen)
}

func TestUnsubscribe_IgnoresFuncSubscribers(t *testing.T) {
	bus := NewEventBus()
	funcs, clicks := 0, 0
	fn := subscriberFunc(func(GameEvent) { funcs++ })
	rec := &eventRecorder{}
	bus.Subscribe(fn)
	bus.Subscribe(Callbacks{Click: func() { clicks++ }})
	bus.Subscribe(rec)

	require.NotPanics(t, func() {
		bus.Unsubscribe(rec)
		bus.Unsubscribe(fn)
		bus.Unsubscribe(Callbacks{})
	})

	bus.Publish(NewPlayEvent(EventTypeClick, "g", "c0", 1, time.Time{}))
	assert.Equal(t, 1, funcs)
	assert.Equal(t, 1, clicks)
	assert.Empty(t, rec.events)
}

type subscriberFunc func(GameEvent)

func (f subscriberFunc) OnEvent(e GameEvent) { f(e) }
