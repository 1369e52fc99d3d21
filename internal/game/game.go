package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/triplestack/internal/gameid"
	"github.com/lox/triplestack/internal/randutil"
)

// ErrNoBoard is logged when an operation is attempted before a board was
// successfully built.
var ErrNoBoard = errors.New("no board built")

// ShuffleMode selects what Shuffle redistributes.
type ShuffleMode string

const (
	// ShufflePositions permutes main-field positions and rebuilds occlusion.
	ShufflePositions ShuffleMode = "positions"
	// ShuffleTypes permutes card types, leaving the layout untouched.
	ShuffleTypes ShuffleMode = "types"
)

// Status is the lifecycle of the current game.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Config configures a Game. Use DefaultConfig as a starting point.
type Config struct {
	// CardNum is the number of distinct card types.
	CardNum int
	// LayerNum is accepted for compatibility and only logged.
	LayerNum int
	// Trap feeds the board's trap parity flag.
	Trap bool
	// ConsumeOnSelect removes selected cards from the field collection
	// instead of leaving them in place marked InHand.
	ConsumeOnSelect bool
	// Container supplies the play area size in pixels.
	Container Container
	// Events are optional presentation callbacks.
	Events Callbacks

	// MaxUndos and MaxDiscards cap the helper actions per game. Zero picks
	// the defaults of 1 and 2; a negative value disables the action.
	MaxUndos    int
	MaxDiscards int
	ShuffleMode ShuffleMode

	// MatchDelay is how long a completed triple stays in the hand before it
	// is eliminated. Zero resolves matches inline.
	MatchDelay time.Duration
	Clock      quartz.Clock

	// Seed seeds board generation; zero picks a time-based seed.
	Seed   int64
	Logger *log.Logger
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		CardNum:     4,
		LayerNum:    2,
		Trap:        true,
		MaxUndos:    1,
		MaxDiscards: 2,
		ShuffleMode: ShufflePositions,
		MatchDelay:  100 * time.Millisecond,
	}
}

// Settings are the per-game options InitData can override.
type Settings struct {
	CardNum  int
	LayerNum int
	Trap     bool
}

// Game owns one board and serialises every mutation of it.
type Game struct {
	mu sync.Mutex

	cfg      Config
	settings Settings
	logger   *log.Logger
	clock    quartz.Clock
	bus      EventBus
	rng      *rand.Rand

	board  *Board
	id     string
	gen    int
	status Status

	last      int
	lastEpoch int
	epoch     int
	undos     int
	discards  int

	canUndo    bool
	canDiscard bool

	pending []*pendingMatch
	timers  []*quartz.Timer

	outbox []GameEvent
	dirty  bool
}

// New creates a game and deals the first board.
func New(cfg Config) (*Game, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.CardNum == 0 {
		cfg.CardNum = 4
	}
	if cfg.MaxUndos == 0 {
		cfg.MaxUndos = 1
	}
	if cfg.MaxDiscards == 0 {
		cfg.MaxDiscards = 2
	}
	if cfg.ShuffleMode == "" {
		cfg.ShuffleMode = ShufflePositions
	}
	cfg.Seed = randutil.Seed(cfg.Seed)

	g := &Game{
		cfg:    cfg,
		logger: cfg.Logger.WithPrefix("game"),
		clock:  cfg.Clock,
		bus:    NewEventBus(),
		rng:    randutil.New(cfg.Seed),
		status: StatusIdle,
		last:   -1,
		settings: Settings{
			CardNum:  cfg.CardNum,
			LayerNum: cfg.LayerNum,
			Trap:     cfg.Trap,
		},
	}
	g.bus.Subscribe(&g.cfg.Events)

	if err := g.InitData(nil); err != nil {
		return nil, err
	}
	return g, nil
}

// Events returns the bus observers subscribe to.
func (g *Game) Events() EventBus {
	return g.bus
}

// ID returns the current game's identifier.
func (g *Game) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

// InitData starts a new game, discarding the current one. A nil settings
// reuses the previous settings; zero CardNum or LayerNum keep the previous
// value.
func (g *Game) InitData(s *Settings) error {
	var err error
	g.run(func() {
		err = g.initLocked(s)
	})
	return err
}

func (g *Game) initLocked(s *Settings) error {
	if s != nil {
		if s.CardNum > 0 {
			g.settings.CardNum = s.CardNum
		}
		if s.LayerNum > 0 {
			g.settings.LayerNum = s.LayerNum
		}
		g.settings.Trap = s.Trap
	}

	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
	g.pending = nil
	g.gen++
	g.board = nil
	g.status = StatusIdle
	g.last = -1
	g.undos = 0
	g.discards = 0
	g.epoch = 0
	g.dirty = true

	width, height, err := measure(g.cfg.Container)
	if err != nil {
		g.logger.Error("Cannot build board", "error", err)
		g.refreshFlags()
		return err
	}

	board, err := buildBoard(g.settings.CardNum, g.settings.Trap, width, height, g.rng)
	if err != nil {
		g.logger.Error("Cannot build board", "error", err)
		g.refreshFlags()
		return fmt.Errorf("build board: %w", err)
	}

	g.board = board
	g.id = gameid.Generate()
	g.status = StatusPlaying
	g.refreshFlags()

	g.logger.Info("New game",
		"id", g.id,
		"cardNum", g.settings.CardNum,
		"layerNum", g.settings.LayerNum,
		"trap", board.Trap(),
		"cards", len(board.cards),
		"width", width,
		"height", height)
	return nil
}

// run executes fn as one logical turn and then notifies observers outside
// the lock, so callbacks may call back into the game.
func (g *Game) run(fn func()) {
	g.mu.Lock()
	fn()
	events := g.flush()
	g.mu.Unlock()

	for _, e := range events {
		g.bus.Publish(e)
	}
}

func (g *Game) emit(t EventType, cardID string) {
	handSize := 0
	if g.board != nil {
		handSize = len(g.board.hand)
	}
	g.outbox = append(g.outbox, NewPlayEvent(t, g.id, cardID, handSize, g.clock.Now()))
	g.dirty = true
}

func (g *Game) flush() []GameEvent {
	if !g.dirty {
		return nil
	}
	events := append(g.outbox, StateEvent{Snapshot: g.snapshotLocked(), timestamp: g.clock.Now()})
	g.outbox = nil
	g.dirty = false
	return events
}

// ready reports whether gameplay operations may run.
func (g *Game) ready(op string) bool {
	if g.board == nil {
		g.logger.Warn("Operation before board was built", "op", op, "error", ErrNoBoard)
		return false
	}
	return g.status == StatusPlaying
}

// refreshFlags recomputes whether undo and discard are currently allowed.
func (g *Game) refreshFlags() {
	playing := g.board != nil && g.status == StatusPlaying
	g.canDiscard = playing && len(g.freeHand()) >= 3 && g.discards < g.cfg.MaxDiscards
	g.canUndo = playing && g.last >= 0 && !g.isPending(g.last) && g.undos < g.cfg.MaxUndos
}

// freeHand returns hand cards not committed to a pending match, in order.
func (g *Game) freeHand() []int {
	out := make([]int, 0, len(g.board.hand))
	for _, idx := range g.board.hand {
		if !g.isPending(idx) {
			out = append(out, idx)
		}
	}
	return out
}
