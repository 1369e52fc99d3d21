package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reserveTypes(s Snapshot) []int {
	out := make([]int, len(s.RemoveList))
	for i, c := range s.RemoveList {
		out[i] = c.Type
	}
	return out
}

func TestDiscard_NeedsThreeFreeCards(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3)

	g.Select(ids[0])
	g.Select(ids[1])
	assert.False(t, g.Snapshot().CanDiscard)

	g.Discard()
	s := g.Snapshot()
	assert.Len(t, s.SelectedNodes, 2)
	assert.Empty(t, s.RemoveList)
	assert.Zero(t, s.DiscardCount)

	g.Select(ids[2])
	assert.True(t, g.Snapshot().CanDiscard)
}

func TestDiscard_MovesFirstThreeToReserve(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4)
	for _, id := range ids {
		g.Select(id)
	}

	g.Discard()
	s := g.Snapshot()
	assert.Equal(t, []int{4}, handTypes(s))
	assert.Equal(t, []int{1, 2, 3}, reserveTypes(s))
	assert.Equal(t, 1, s.DiscardCount)

	for p, c := range s.RemoveList {
		assert.True(t, strings.HasPrefix(c.ID, "reserve-"), c.ID)
		assert.True(t, c.CanClick)
		require.NotNil(t, c.SetIndex)
		require.NotNil(t, c.PositionInSet)
		assert.Equal(t, 0, *c.SetIndex)
		assert.Equal(t, p, *c.PositionInSet)
	}

	// The last selected card stayed in the hand, so undo remains possible.
	assert.True(t, s.CanUndo)
}

func TestDiscard_MarksSourceCardsDiscarded(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4)
	for _, id := range ids {
		g.Select(id)
	}

	g.Discard()
	s := g.Snapshot()
	states := make(map[string]string)
	for _, n := range s.Nodes {
		states[n.ID] = n.State
		if n.State == Discarded.String() {
			assert.False(t, n.CanClick)
		}
	}
	for _, id := range ids[:3] {
		assert.Equal(t, "discarded", states[id], id)
	}
	assert.Equal(t, InHand.String(), states[ids[3]])
	assert.False(t, Discarded.OnField())
	requireOcclusionInvariant(t, g)
}

func TestDiscard_ConsumedCardsLeaveField(t *testing.T) {
	g, _ := newTestGame(t, withConsume)
	ids := layFlat(g, 1, 2, 3)
	for _, id := range ids {
		g.Select(id)
	}

	g.Discard()
	s := g.Snapshot()
	assert.Empty(t, s.Nodes)
	assert.Equal(t, []int{1, 2, 3}, reserveTypes(s))
}

func TestDiscard_ClearsUndoTargetItMoved(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3)
	for _, id := range ids {
		g.Select(id)
	}
	require.True(t, g.Snapshot().CanUndo)

	g.Discard()
	assert.False(t, g.Snapshot().CanUndo)
	g.Undo()
	assert.Zero(t, g.Snapshot().UndoCount)
}

func TestDiscard_Cap(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	for round := 0; round < 3; round++ {
		for _, id := range ids[round*3 : round*3+3] {
			g.Select(id)
		}
		g.Discard()
	}
	s := g.Snapshot()
	assert.Equal(t, 2, s.DiscardCount)
	assert.Equal(t, []int{7, 8, 9}, handTypes(s))
	assert.Equal(t, []int{4, 5, 6}, reserveTypes(s))
	assert.False(t, s.CanDiscard)
}

func TestDiscard_SkipsPendingCards(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 1, 1, 2, 3)
	for _, id := range ids {
		g.Select(id)
	}
	s := g.Snapshot()
	require.Equal(t, 1, s.PendingMatches)
	assert.False(t, s.CanDiscard)

	g.Discard()
	assert.Len(t, g.Snapshot().SelectedNodes, 5)
}

func TestReserve_PeelsEarlierSets(t *testing.T) {
	g, _ := newTestGame(t, func(cfg *Config) { cfg.MaxDiscards = 3 })
	ids := layFlat(g, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	for round := 0; round < 3; round++ {
		for _, id := range ids[round*3 : round*3+3] {
			g.Select(id)
		}
		g.Discard()
	}
	s := g.Snapshot()
	require.Equal(t, []int{7, 8, 9}, reserveTypes(s))

	// Peel the middle slot through sets C, B and A.
	g.SelectFromReserve(s.RemoveList[1].ID)
	s = g.Snapshot()
	assert.Equal(t, []int{7, 5, 9}, reserveTypes(s))
	assert.Equal(t, 1, *s.RemoveList[1].SetIndex)

	g.SelectFromReserve(s.RemoveList[1].ID)
	s = g.Snapshot()
	assert.Equal(t, []int{7, 2, 9}, reserveTypes(s))
	assert.Equal(t, 0, *s.RemoveList[1].SetIndex)

	g.SelectFromReserve(s.RemoveList[1].ID)
	s = g.Snapshot()
	assert.Equal(t, []int{7, 9}, reserveTypes(s))
	assert.Equal(t, []int{8, 5, 2}, handTypes(s))

	// A played slot is never revealed again.
	g.SelectFromReserve(s.RemoveList[0].ID)
	s = g.Snapshot()
	assert.Equal(t, []int{4, 9}, reserveTypes(s))
	assert.Equal(t, 0, *s.RemoveList[0].PositionInSet)
	assert.Equal(t, 1, *s.RemoveList[0].SetIndex)
}

func TestReserve_RejectsNonReserveCards(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4)
	for _, id := range ids[:3] {
		g.Select(id)
	}
	g.Discard()

	g.SelectFromReserve(ids[3])
	g.SelectFromReserve("reserve-missing")
	s := g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Len(t, s.RemoveList, 3)
}

func TestReserve_FullHandKeepsCard(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 4, 5, 6, 7, 7, 7, 8)
	for _, id := range ids[:3] {
		g.Select(id)
	}
	g.Discard()

	// Four singles plus a pending triple fill the hand without losing.
	for _, id := range ids[3:9] {
		g.Select(id)
	}
	require.Len(t, g.Snapshot().SelectedNodes, 6)
	g.Select(ids[9])
	s := g.Snapshot()
	require.Len(t, s.SelectedNodes, HandCapacity)
	require.Equal(t, StatusPlaying, s.Status)

	g.SelectFromReserve(s.RemoveList[0].ID)
	s = g.Snapshot()
	assert.Len(t, s.RemoveList, 3)
	assert.Len(t, s.SelectedNodes, HandCapacity)

	fire(t, clock)
	g.SelectFromReserve(g.Snapshot().RemoveList[0].ID)
	s = g.Snapshot()
	assert.Len(t, s.RemoveList, 2)
	assert.Contains(t, handTypes(s), 1)
}

func TestReserve_UndoReturnsCardToSlot(t *testing.T) {
	g, _ := newTestGame(t, func(cfg *Config) { cfg.MaxDiscards = 3 })
	ids := layFlat(g, 1, 2, 3, 4, 5, 6)
	for round := 0; round < 2; round++ {
		for _, id := range ids[round*3 : round*3+3] {
			g.Select(id)
		}
		g.Discard()
	}

	s := g.Snapshot()
	taken := s.RemoveList[2]
	g.SelectFromReserve(taken.ID)
	require.Equal(t, []int{4, 5, 3}, reserveTypes(g.Snapshot()))

	g.Undo()
	s = g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Equal(t, []int{4, 5, 6}, reserveTypes(s))
	assert.Equal(t, taken.ID, s.RemoveList[2].ID)
	assert.True(t, s.RemoveList[2].CanClick)
	assert.Equal(t, 1, s.UndoCount)
}

func TestReserve_WinRequiresEmptyReserve(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 2, 3, 1, 2, 3, 1, 2, 3)
	won := 0
	g.Events().Subscribe(Callbacks{Win: func() { won++ }})

	for _, id := range ids[:3] {
		g.Select(id)
	}
	g.Discard()
	for _, id := range ids[3:6] {
		g.Select(id)
	}
	for _, c := range g.Snapshot().RemoveList {
		g.SelectFromReserve(c.ID)
	}
	s := g.Snapshot()
	require.Empty(t, s.RemoveList)
	require.Equal(t, []int{1, 1, 2, 2, 3, 3}, handTypes(s))

	for _, id := range ids[6:] {
		g.Select(id)
		fire(t, clock)
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, StatusWon, g.Snapshot().Status)
}
