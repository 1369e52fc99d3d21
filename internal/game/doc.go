// Package game implements the rules of a "collect three of a kind" tile
// matching puzzle.
//
// A board holds 270 cards: two side stacks of 15 and a layered pyramid built
// from the remaining 240. Each card records the cards that occlude it; only
// cards with no blocking parent are clickable. Selected cards move into a
// hand of seven; three of a kind are eliminated after a short delay. The
// board is won when field, reserve and hand are all empty and lost when the
// hand fills up.
//
// # Basic Usage
//
//	cfg := game.DefaultConfig()
//	cfg.Container = game.Size{Width: 800, Height: 600}
//	g, err := game.New(cfg)
//	if err != nil {
//	    return err
//	}
//	for _, c := range g.Snapshot().Clickable() {
//	    g.Select(c.ID)
//	    break
//	}
//
// Helper actions are Undo (once per game), Discard (twice per game, moving
// three hand cards into the reserve), SelectFromReserve and Shuffle.
//
// # Timing
//
// Match elimination is deferred by Config.MatchDelay on the injected
// quartz.Clock so a presentation layer can animate it. Tests use
// quartz.NewMock and advance the clock; headless callers set MatchDelay to
// zero and matches resolve inline.
package game
