package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult is the outcome of a single simulated game.
type GameResult struct {
	Seed     int64 // RNG seed for this game (for replay)
	Won      bool
	Lost     bool // hand filled up; neither Won nor Lost means the strategy stalled
	Cleared  int  // cards eliminated
	Moves    int
	Undos    int
	Discards int
}

// Statistics aggregates game results. The running sums track cards cleared
// per game.
type Statistics struct {
	Games   int
	Wins    int
	Losses  int
	Stalled int

	SumCleared  float64
	SumCleared2 float64   // Sum of squares for variance calculation
	Values      []float64 // Cleared per game, for median/percentiles

	TotalMoves    int
	TotalUndos    int
	TotalDiscards int
	BestCleared   int
	BestSeed      int64
}

// Add incorporates a game result.
func (s *Statistics) Add(r GameResult) {
	cleared := float64(r.Cleared)
	s.Games++
	s.SumCleared += cleared
	s.SumCleared2 += cleared * cleared
	s.Values = append(s.Values, cleared)

	switch {
	case r.Won:
		s.Wins++
	case r.Lost:
		s.Losses++
	default:
		s.Stalled++
	}

	s.TotalMoves += r.Moves
	s.TotalUndos += r.Undos
	s.TotalDiscards += r.Discards

	if s.Games == 1 || r.Cleared > s.BestCleared {
		s.BestCleared = r.Cleared
		s.BestSeed = r.Seed
	}
}

// Merge folds other into s. Values keep s's order followed by other's.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil || other.Games == 0 {
		return
	}
	if s.Games == 0 || other.BestCleared > s.BestCleared {
		s.BestCleared = other.BestCleared
		s.BestSeed = other.BestSeed
	}
	s.Games += other.Games
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Stalled += other.Stalled
	s.SumCleared += other.SumCleared
	s.SumCleared2 += other.SumCleared2
	s.Values = append(s.Values, other.Values...)
	s.TotalMoves += other.TotalMoves
	s.TotalUndos += other.TotalUndos
	s.TotalDiscards += other.TotalDiscards
}

// WinRate returns the fraction of games won.
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// WinRateCI95 returns the normal-approximation 95% interval for the win
// rate, clamped to [0, 1].
func (s *Statistics) WinRateCI95() (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.WinRate()
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// Mean returns the mean number of cards cleared per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumCleared / float64(s.Games)
}

// Variance returns the sample variance of cards cleared
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumCleared2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
	return math.Max(0, v)
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median cards cleared
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated value at p (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the counters are consistent with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)", len(s.Values), s.Games)
	}
	if s.Wins+s.Losses+s.Stalled != s.Games {
		return fmt.Errorf("outcomes %d won + %d lost + %d stalled do not add up to %d games",
			s.Wins, s.Losses, s.Stalled, s.Games)
	}
	return nil
}

// Summary is the serialisable form written to simulation reports.
type Summary struct {
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Stalled      int     `json:"stalled"`
	WinRate      float64 `json:"winRate"`
	WinRateLow   float64 `json:"winRateLow"`
	WinRateHigh  float64 `json:"winRateHigh"`
	MeanCleared  float64 `json:"meanCleared"`
	MedianClear  float64 `json:"medianCleared"`
	StdDev       float64 `json:"stdDev"`
	ClearedLow   float64 `json:"clearedLow"`
	ClearedHigh  float64 `json:"clearedHigh"`
	AvgMoves     float64 `json:"avgMoves"`
	BestCleared  int     `json:"bestCleared"`
	BestSeed     int64   `json:"bestSeed"`
	UndosUsed    int     `json:"undosUsed"`
	DiscardsUsed int     `json:"discardsUsed"`
}

// Summarize computes the derived figures.
func (s *Statistics) Summarize() Summary {
	winLow, winHigh := s.WinRateCI95()
	low, high := s.ConfidenceInterval95()
	avgMoves := 0.0
	if s.Games > 0 {
		avgMoves = float64(s.TotalMoves) / float64(s.Games)
	}
	return Summary{
		Games:        s.Games,
		Wins:         s.Wins,
		Losses:       s.Losses,
		Stalled:      s.Stalled,
		WinRate:      s.WinRate(),
		WinRateLow:   winLow,
		WinRateHigh:  winHigh,
		MeanCleared:  s.Mean(),
		MedianClear:  s.Median(),
		StdDev:       s.StdDev(),
		ClearedLow:   low,
		ClearedHigh:  high,
		AvgMoves:     avgMoves,
		BestCleared:  s.BestCleared,
		BestSeed:     s.BestSeed,
		UndosUsed:    s.TotalUndos,
		DiscardsUsed: s.TotalDiscards,
	}
}
