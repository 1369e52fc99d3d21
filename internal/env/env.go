// Package env wraps a game as a step/reward environment for training
// agents. Actions index the field cards in snapshot order; the observation
// is a fixed-size numeric encoding of the board.
package env

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/triplestack/internal/game"
)

// Observation dimensions.
const (
	MaxCards    = 80
	FeatureSize = 80
	QueueSize   = 30
)

// Rewards.
const (
	RewardOutOfRange   = -1.0
	RewardNotClickable = -0.5
	RewardSelect       = 0.1
	RewardMatch        = 1.0
	RewardWin          = 10.0
	RewardLose         = -5.0
)

// Config configures an Env.
type Config struct {
	CardNum int
	Trap    bool
	Width   float64
	Height  float64
	Seed    int64
	Logger  *log.Logger
}

// DefaultConfig mirrors the training setup: 18 types on an 800x600 board.
func DefaultConfig() Config {
	return Config{CardNum: 18, Width: 800, Height: 600}
}

// Observation is the structured state handed to an agent.
type Observation struct {
	// Global holds total field cards, hand size, undo and discard counts
	// with their caps, then the live card count for each type.
	Global []float32
	Cards  [MaxCards][FeatureSize]float32
	Queue  [QueueSize]float32
	Mask   [MaxCards]int32
}

// Env is a single-agent environment over one game.
type Env struct {
	cfg    Config
	game   *game.Game
	logger *log.Logger

	matches int
	done    bool
}

// New creates an environment and deals the first board.
func New(cfg Config) (*Env, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.CardNum <= 0 {
		cfg.CardNum = DefaultConfig().CardNum
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 800, 600
	}

	gc := game.DefaultConfig()
	gc.CardNum = cfg.CardNum
	gc.Trap = cfg.Trap
	gc.Container = game.Size{Width: cfg.Width, Height: cfg.Height}
	gc.MatchDelay = 0
	gc.Seed = cfg.Seed
	gc.Logger = cfg.Logger

	g, err := game.New(gc)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	e := &Env{cfg: cfg, game: g, logger: cfg.Logger.WithPrefix("env")}
	g.Events().Subscribe(e)
	return e, nil
}

// OnEvent counts resolved matches during a step.
func (e *Env) OnEvent(ev game.GameEvent) {
	switch ev.EventType() {
	case game.EventTypeDrop, game.EventTypeWin:
		e.matches++
	}
}

// Game exposes the underlying game, for helpers such as undo and discard.
func (e *Env) Game() *game.Game {
	return e.game
}

// Reset starts a new board and returns its observation.
func (e *Env) Reset() (Observation, error) {
	if err := e.game.InitData(nil); err != nil {
		return Observation{}, err
	}
	e.done = false
	e.matches = 0
	return e.Observation(), nil
}

// Step selects the field card at index action and returns the reward and
// whether the episode has ended.
func (e *Env) Step(action int) (float64, bool) {
	if e.done {
		return 0, true
	}
	s := e.game.Snapshot()
	if action < 0 || action >= len(s.Nodes) {
		return RewardOutOfRange, e.done
	}
	target := s.Nodes[action]
	if !target.CanClick {
		return RewardNotClickable, e.done
	}

	before := e.matches
	e.game.Select(target.ID)
	after := e.game.Snapshot()

	reward := RewardSelect
	if e.matches > before {
		reward = RewardMatch
	}
	switch after.Status {
	case game.StatusWon:
		reward += RewardWin
		e.done = true
	case game.StatusLost:
		reward += RewardLose
		e.done = true
	}

	e.logger.Debug("Step", "action", action, "card", target.ID, "reward", reward, "done", e.done)
	return reward, e.done
}

// Done reports whether the episode has ended, including games finished by
// helper moves made directly on Game.
func (e *Env) Done() bool {
	if e.done {
		return true
	}
	switch e.game.Snapshot().Status {
	case game.StatusWon, game.StatusLost:
		e.done = true
	}
	return e.done
}

// Observation encodes the current state.
func (e *Env) Observation() Observation {
	s := e.game.Snapshot()
	cardNum := float32(e.cfg.CardNum)

	var obs Observation
	perType := make([]float32, e.cfg.CardNum)
	for _, n := range s.Nodes {
		if isLive(n) && n.Type >= 1 && n.Type <= e.cfg.CardNum {
			perType[n.Type-1]++
		}
	}
	obs.Global = append([]float32{
		float32(len(s.Nodes)),
		float32(len(s.SelectedNodes)),
		float32(s.UndoCount),
		float32(s.DiscardCount),
		float32(s.MaxUndos),
		float32(s.MaxDiscards),
	}, perType...)

	for i, n := range s.Nodes {
		if i >= MaxCards {
			break
		}
		obs.Cards[i][0] = float32(n.Type) / cardNum
		obs.Cards[i][1] = float32(stateCode(n.State)) / float32(game.Discarded)
		obs.Cards[i][2] = float32(n.ZIndex) / 15
		obs.Cards[i][3] = float32(n.Top / e.cfg.Height)
		obs.Cards[i][4] = float32(n.Left / e.cfg.Width)
		obs.Cards[i][5] = float32(len(n.Parents)) / 4
		if n.CanClick {
			obs.Mask[i] = 1
		}
	}

	for i, n := range s.SelectedNodes {
		if i >= QueueSize {
			break
		}
		obs.Queue[i] = float32(n.Type) / cardNum
	}
	return obs
}

// Render writes a text view of the current state.
func (e *Env) Render(w io.Writer) error {
	s := e.game.Snapshot()
	pr := &errWriter{w: w}

	pr.printf("\n=== Game State ===\n")
	pr.printf("Total cards: %d\n", len(s.Nodes))
	pr.printf("Selected cards: %d\n", len(s.SelectedNodes))
	pr.printf("Back count: %d/%d\n", s.UndoCount, s.MaxUndos)
	pr.printf("Remove count: %d/%d\n", s.DiscardCount, s.MaxDiscards)
	pr.printf("\nSelected cards:\n")
	for _, n := range s.SelectedNodes {
		pr.printf("Type %d\n", n.Type)
	}
	pr.printf("\nClickable cards:\n")
	for _, n := range s.Clickable() {
		pr.printf("Type %d at (%g, %g)\n", n.Type, n.Left, n.Top)
	}
	return pr.err
}

func isLive(n game.CardView) bool {
	return n.State == game.Covered.String() || n.State == game.Clickable.String()
}

func stateCode(state string) int {
	for _, s := range []game.State{game.Covered, game.Clickable, game.InHand, game.Eliminated, game.Discarded} {
		if s.String() == state {
			return int(s)
		}
	}
	return 0
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (p *errWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
