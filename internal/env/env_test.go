package env

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/triplestack/internal/game"
)

func newEnv(t *testing.T, cardNum int) *Env {
	t.Helper()
	e, err := New(Config{CardNum: cardNum, Width: 800, Height: 600, Seed: 21, Logger: log.New(io.Discard)})
	require.NoError(t, err)
	return e
}

func clickableIndex(s game.Snapshot, skip func(game.CardView) bool) int {
	for i, n := range s.Nodes {
		if n.CanClick && (skip == nil || !skip(n)) {
			return i
		}
	}
	return -1
}

func TestObservation_Shape(t *testing.T) {
	e := newEnv(t, 18)
	obs := e.Observation()

	require.Len(t, obs.Global, 6+18)
	assert.Equal(t, float32(game.TotalCards), obs.Global[0])
	assert.Zero(t, obs.Global[1])
	assert.Equal(t, float32(1), obs.Global[4])
	assert.Equal(t, float32(2), obs.Global[5])

	var perType float32
	for _, v := range obs.Global[6:] {
		perType += v
	}
	assert.Equal(t, float32(game.TotalCards), perType)

	s := e.Game().Snapshot()
	for i := range MaxCards {
		want := int32(0)
		if s.Nodes[i].CanClick {
			want = 1
		}
		assert.Equal(t, want, obs.Mask[i], "mask %d", i)
		assert.InDelta(t, float64(s.Nodes[i].Type)/18, obs.Cards[i][0], 1e-6)
		assert.GreaterOrEqual(t, obs.Cards[i][3], float32(0))
	}
}

func TestStep_InvalidActions(t *testing.T) {
	e := newEnv(t, 18)

	r, done := e.Step(-1)
	assert.Equal(t, RewardOutOfRange, r)
	assert.False(t, done)

	r, _ = e.Step(game.TotalCards)
	assert.Equal(t, RewardOutOfRange, r)

	covered := -1
	for i, n := range e.Game().Snapshot().Nodes {
		if !n.CanClick {
			covered = i
			break
		}
	}
	require.GreaterOrEqual(t, covered, 0)
	r, done = e.Step(covered)
	assert.Equal(t, RewardNotClickable, r)
	assert.False(t, done)
	assert.Empty(t, e.Game().Snapshot().SelectedNodes)
}

func TestStep_SelectAndMatch(t *testing.T) {
	e := newEnv(t, 4)
	s := e.Game().Snapshot()

	byType := make(map[int][]int)
	var triple []int
	for i, n := range s.Nodes {
		if !n.CanClick {
			continue
		}
		byType[n.Type] = append(byType[n.Type], i)
		if len(byType[n.Type]) == 3 {
			triple = byType[n.Type]
			break
		}
	}
	require.Len(t, triple, 3)

	r, _ := e.Step(triple[0])
	assert.InDelta(t, RewardSelect, r, 1e-9)
	r, _ = e.Step(triple[1])
	assert.InDelta(t, RewardSelect, r, 1e-9)
	r, done := e.Step(triple[2])
	assert.InDelta(t, RewardMatch, r, 1e-9)
	assert.False(t, done)
	assert.Empty(t, e.Game().Snapshot().SelectedNodes)
	assert.Zero(t, e.Observation().Queue[0])
}

func TestStep_LoseEndsEpisode(t *testing.T) {
	e := newEnv(t, 18)

	var last float64
	done := false
	for step := 0; step < 400 && !done; step++ {
		s := e.Game().Snapshot()
		held := make(map[int]int)
		for _, c := range s.SelectedNodes {
			held[c.Type]++
		}
		i := clickableIndex(s, func(n game.CardView) bool { return held[n.Type] > 0 })
		if i < 0 {
			i = clickableIndex(s, nil)
		}
		require.GreaterOrEqual(t, i, 0)
		last, done = e.Step(i)
	}
	require.True(t, done)
	assert.True(t, e.Done())

	switch e.Game().Snapshot().Status {
	case game.StatusLost:
		assert.InDelta(t, RewardSelect+RewardLose, last, 1e-9)
	case game.StatusWon:
		assert.InDelta(t, RewardMatch+RewardWin, last, 1e-9)
	}

	r, d := e.Step(0)
	assert.Zero(t, r)
	assert.True(t, d)

	obs, err := e.Reset()
	require.NoError(t, err)
	assert.False(t, e.Done())
	assert.Zero(t, obs.Global[1])
	assert.Equal(t, game.StatusPlaying, e.Game().Snapshot().Status)
}

func TestRender(t *testing.T) {
	e := newEnv(t, 18)
	i := clickableIndex(e.Game().Snapshot(), nil)
	e.Step(i)

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "=== Game State ===")
	assert.Contains(t, out, "Selected cards: 1")
	assert.Contains(t, out, "Back count: 0/1")
	assert.Contains(t, out, "Clickable cards:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRender_WriteError(t *testing.T) {
	e := newEnv(t, 18)
	assert.Error(t, e.Render(failingWriter{}))
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{})
	require.NoError(t, err)
	assert.Len(t, e.Observation().Global, 6+DefaultConfig().CardNum)
}
