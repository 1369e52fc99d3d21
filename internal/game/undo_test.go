package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndo_RestoresCardAndCoversBeneath(t *testing.T) {
	g, _ := newTestGame(t)
	layPair(g, 1, 2)

	g.Select("top")
	require.Equal(t, "bottom", g.Snapshot().Clickable()[0].ID)
	require.True(t, g.Snapshot().CanUndo)

	g.Undo()
	s := g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Equal(t, 1, s.UndoCount)
	assert.False(t, s.CanUndo)
	require.Len(t, s.Clickable(), 1)
	assert.Equal(t, "top", s.Clickable()[0].ID)
	requireOcclusionInvariant(t, g)
}

func TestUndo_OnlyOncePerGame(t *testing.T) {
	g, _ := newTestGame(t)
	ids := layFlat(g, 1, 2, 3)

	g.Select(ids[0])
	g.Undo()
	g.Select(ids[1])
	assert.False(t, g.Snapshot().CanUndo)

	g.Undo()
	s := g.Snapshot()
	assert.Equal(t, []string{ids[1]}, handIDs(s))
	assert.Equal(t, 1, s.UndoCount)
}

func TestUndo_NoTarget(t *testing.T) {
	g, _ := newTestGame(t)
	layFlat(g, 1, 2)
	rec := &eventRecorder{}
	g.Events().Subscribe(rec)

	g.Undo()
	assert.Zero(t, g.Snapshot().UndoCount)
	assert.Zero(t, rec.states)
}

func TestUndo_NotAvailableForPendingOrResolvedMatch(t *testing.T) {
	g, clock := newTestGame(t)
	ids := layFlat(g, 1, 1, 1, 2)

	for _, id := range ids[:3] {
		g.Select(id)
	}
	assert.False(t, g.Snapshot().CanUndo)
	g.Undo()
	assert.Len(t, g.Snapshot().SelectedNodes, 3)

	fire(t, clock)
	g.Undo()
	s := g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Zero(t, s.UndoCount)
}

func TestUndo_NegativeCapDisables(t *testing.T) {
	g, _ := newTestGame(t, func(cfg *Config) {
		cfg.MaxUndos = -1
		cfg.MaxDiscards = -1
	})
	ids := layFlat(g, 1, 2, 3)
	for _, id := range ids {
		g.Select(id)
	}

	s := g.Snapshot()
	assert.False(t, s.CanUndo)
	assert.False(t, s.CanDiscard)

	g.Undo()
	g.Discard()
	assert.Len(t, g.Snapshot().SelectedNodes, 3)
}

func TestUndo_AfterShuffleRelinks(t *testing.T) {
	g, _ := newTestGame(t)
	s := g.Snapshot()
	target := s.Clickable()[0]
	if target.Stack != "field" {
		for _, c := range s.Clickable() {
			if c.Stack == "field" {
				target = c
				break
			}
		}
	}

	g.Select(target.ID)
	g.Shuffle()
	g.Undo()

	s = g.Snapshot()
	assert.Empty(t, s.SelectedNodes)
	assert.Equal(t, 1, s.UndoCount)
	requireOcclusionInvariant(t, g)
}
