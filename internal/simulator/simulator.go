package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/fileutil"
	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/randutil"
	"github.com/lox/triplestack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games       int
	Strategy    string
	Seed        int64
	Workers     int
	CardNum     int
	Trap        bool
	ShuffleMode game.ShuffleMode
	Width       float64
	Height      float64
	// MaxMoves bounds a single game; zero uses a generous default.
	MaxMoves int
	Logger   *log.Logger
}

const defaultMaxMoves = 2000

// Simulator plays many headless games with one strategy.
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Workers <= 0 {
		config.Workers = min(runtime.NumCPU(), 8)
	}
	if config.MaxMoves <= 0 {
		config.MaxMoves = defaultMaxMoves
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = 800, 600
	}
	return &Simulator{config: config, logger: config.Logger.WithPrefix("simulator")}
}

// Run plays every game and returns the aggregate. Game i is seeded from
// randutil.Derive(Seed, i), so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if _, err := bot.New(s.config.Strategy, randutil.New(1), s.logger); err != nil {
		return nil, err
	}

	results := make([]statistics.GameResult, s.config.Games)
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range s.config.Games {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for range s.config.Workers {
		g.Go(func() error {
			for i := range jobs {
				r, err := s.playGame(ctx, randutil.Derive(s.config.Seed, i))
				if err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
				results[i] = r
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"games", stats.Games,
		"strategy", s.config.Strategy,
		"winRate", fmt.Sprintf("%.3f", stats.WinRate()),
		"meanCleared", fmt.Sprintf("%.1f", stats.Mean()))
	return stats, nil
}

// matchCounter counts eliminated triples.
type matchCounter struct{ matches int }

func (m *matchCounter) OnEvent(e game.GameEvent) {
	switch e.EventType() {
	case game.EventTypeDrop, game.EventTypeWin:
		m.matches++
	}
}

// playGame plays one game to completion, a stall or the move limit.
func (s *Simulator) playGame(ctx context.Context, seed int64) (statistics.GameResult, error) {
	cfg := game.DefaultConfig()
	cfg.Container = game.Size{Width: s.config.Width, Height: s.config.Height}
	cfg.MatchDelay = 0
	cfg.Seed = seed
	cfg.Trap = s.config.Trap
	if s.config.CardNum > 0 {
		cfg.CardNum = s.config.CardNum
	}
	if s.config.ShuffleMode != "" {
		cfg.ShuffleMode = s.config.ShuffleMode
	}
	cfg.Logger = s.config.Logger

	g, err := game.New(cfg)
	if err != nil {
		return statistics.GameResult{}, err
	}
	counter := &matchCounter{}
	g.Events().Subscribe(counter)

	strategy, err := bot.New(s.config.Strategy, randutil.New(seed), s.config.Logger)
	if err != nil {
		return statistics.GameResult{}, err
	}

	moves := 0
	for ; moves < s.config.MaxMoves; moves++ {
		if err := ctx.Err(); err != nil {
			return statistics.GameResult{}, err
		}
		snap := g.Snapshot()
		if snap.Status != game.StatusPlaying {
			break
		}
		m := strategy.Next(snap)
		if m.Kind == bot.Pass {
			break
		}
		bot.Apply(g, m)
	}

	snap := g.Snapshot()
	result := statistics.GameResult{
		Seed:     seed,
		Won:      snap.Status == game.StatusWon,
		Lost:     snap.Status == game.StatusLost,
		Cleared:  counter.matches * 3,
		Moves:    moves,
		Undos:    snap.UndoCount,
		Discards: snap.DiscardCount,
	}
	s.logger.Debug("Game finished", "seed", seed, "status", snap.Status, "cleared", result.Cleared, "moves", moves)
	return result, nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, games int, strategy string, seed int64, logger *log.Logger) (*statistics.Statistics, error) {
	return New(Config{
		Games:    games,
		Strategy: strategy,
		Seed:     seed,
		Trap:     true,
		Logger:   logger,
	}).Run(ctx)
}

// Report is the JSON document written by WriteReport.
type Report struct {
	Strategy string             `json:"strategy"`
	Seed     int64              `json:"seed"`
	CardNum  int                `json:"cardNum"`
	Summary  statistics.Summary `json:"summary"`
}

// NewReport assembles a report for stats produced by this simulator.
func (s *Simulator) NewReport(stats *statistics.Statistics) Report {
	cardNum := s.config.CardNum
	if cardNum <= 0 {
		cardNum = game.DefaultConfig().CardNum
	}
	return Report{
		Strategy: s.config.Strategy,
		Seed:     s.config.Seed,
		CardNum:  cardNum,
		Summary:  stats.Summarize(),
	}
}

// WriteReport writes r to path atomically.
func WriteReport(path string, r Report) error {
	if path == "" {
		return errors.New("report path is empty")
	}
	return fileutil.WriteJSONAtomic(path, r)
}

// PrintSummary writes a human readable summary of the results.
func PrintSummary(w io.Writer, stats *statistics.Statistics, strategy string) {
	sum := stats.Summarize()

	fmt.Fprintf(w, "\n=== RESULTS for %s strategy ===\n", strategy)
	fmt.Fprintf(w, "Games played: %d\n", sum.Games)
	fmt.Fprintf(w, "Won: %d  Lost: %d  Stalled: %d\n", sum.Wins, sum.Losses, sum.Stalled)
	fmt.Fprintf(w, "Win rate: %.2f%% (95%% CI [%.2f%%, %.2f%%])\n",
		sum.WinRate*100, sum.WinRateLow*100, sum.WinRateHigh*100)

	fmt.Fprintf(w, "\n=== CARDS CLEARED ===\n")
	fmt.Fprintf(w, "Mean: %.2f  Median: %.1f  Std Dev: %.2f\n", sum.MeanCleared, sum.MedianClear, sum.StdDev)
	fmt.Fprintf(w, "95%% CI: [%.2f, %.2f]\n", sum.ClearedLow, sum.ClearedHigh)
	fmt.Fprintf(w, "Percentiles: P5=%.0f, P25=%.0f, P75=%.0f, P95=%.0f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Fprintf(w, "Best: %d cards (seed %d)\n", sum.BestCleared, sum.BestSeed)

	fmt.Fprintf(w, "\n=== HELPERS ===\n")
	fmt.Fprintf(w, "Average moves: %.1f\n", sum.AvgMoves)
	fmt.Fprintf(w, "Undos used: %d  Discards used: %d\n", sum.UndosUsed, sum.DiscardsUsed)
}
