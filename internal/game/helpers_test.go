package game

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

const testDelay = 100 * time.Millisecond

// newTestGame builds a seeded game on a mock clock.
func newTestGame(t *testing.T, opts ...func(*Config)) (*Game, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	cfg := DefaultConfig()
	cfg.Container = Size{Width: 800, Height: 600}
	cfg.Seed = 42
	cfg.Clock = clock
	cfg.MatchDelay = testDelay
	cfg.Logger = log.New(io.Discard)
	for _, opt := range opts {
		opt(&cfg)
	}
	g, err := New(cfg)
	require.NoError(t, err)
	return g, clock
}

func withConsume(cfg *Config)      { cfg.ConsumeOnSelect = true }
func withInlineMatches(cfg *Config) { cfg.MatchDelay = 0 }

// layFlat replaces the board with side-by-side field cards that do not
// overlap, so every card starts clickable. It returns the card ids in order.
func layFlat(g *Game, types ...int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := newBoard(800, 600)
	ids := make([]string, len(types))
	for i, typ := range types {
		ids[i] = fmt.Sprintf("c%d", i)
		idx := b.add(&Card{
			ID:    ids[i],
			Type:  typ,
			Index: i,
			Position: Position{
				Column: i,
				Top:    100,
				Left:   float64(i) * CardSize * 2,
			},
			State: Clickable,
		})
		b.field = append(b.field, idx)
	}
	g.resetForTest(b)
	return ids
}

// layPair replaces the board with one card "top" sitting over "bottom".
func layPair(g *Game, topType, bottomType int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := newBoard(800, 600)
	bottom := b.add(&Card{ID: "bottom", Type: bottomType, Position: Position{Top: 100, Left: 100, ZIndex: 0}, State: Covered})
	top := b.add(&Card{ID: "top", Type: topType, Position: Position{Top: 110, Left: 110, ZIndex: 1}, State: Covered})
	b.card(bottom).Parents = []int{top}
	b.field = []int{bottom, top}
	updateState(b)
	g.resetForTest(b)
}

func (g *Game) resetForTest(b *Board) {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
	g.pending = nil
	g.gen++
	g.board = b
	g.status = StatusPlaying
	g.last = -1
	g.undos = 0
	g.discards = 0
	g.refreshFlags()
}

// fire advances the mock clock past the match delay and waits for the
// resolutions to run.
func fire(t *testing.T, clock *quartz.Mock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(testDelay).MustWait(ctx)
}

func handTypes(s Snapshot) []int {
	out := make([]int, len(s.SelectedNodes))
	for i, c := range s.SelectedNodes {
		out[i] = c.Type
	}
	return out
}

func handIDs(s Snapshot) []string {
	out := make([]string, len(s.SelectedNodes))
	for i, c := range s.SelectedNodes {
		out[i] = c.ID
	}
	return out
}

// requireOcclusionInvariant checks that every field card is clickable
// exactly when none of its parents is still on the field.
func requireOcclusionInvariant(t *testing.T, g *Game) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()

	b := g.board
	for _, idx := range b.field {
		c := b.card(idx)
		if !c.State.OnField() {
			continue
		}
		blocked := false
		for _, p := range c.Parents {
			if b.card(p).State.OnField() {
				blocked = true
				break
			}
		}
		require.Equal(t, !blocked, c.State == Clickable, "card %s state %s", c.ID, c.State)
	}
	require.LessOrEqual(t, len(b.hand), HandCapacity)
}

// eventRecorder collects play events by type.
type eventRecorder struct {
	events []EventType
	states int
}

func (r *eventRecorder) OnEvent(e GameEvent) {
	if e.EventType() == EventTypeState {
		r.states++
		return
	}
	r.events = append(r.events, e.EventType())
}

func (r *eventRecorder) count(t EventType) int {
	n := 0
	for _, e := range r.events {
		if e == t {
			n++
		}
	}
	return n
}
