package game

import (
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"
)

// Board generation constants.
const (
	TotalCards    = 270
	CopiesPerType = 15
	FieldCards    = 240
	StackSize     = 15
	CardSize      = 40.0
	StackSpacing  = 2.0

	// Every floor consumes at least one card.
	maxFloors = FieldCards
)

var (
	// ErrInvalidContainer is returned when the container has no usable size.
	ErrInvalidContainer = errors.New("container dimensions unavailable")
	// ErrInvalidCardNum is returned when the distinct type count is not positive.
	ErrInvalidCardNum = errors.New("card type count must be positive")
)

// Container is the presentation-layer surface the builder measures.
type Container interface {
	ClientWidth() float64
	ClientHeight() float64
}

// Size is a fixed-size Container.
type Size struct {
	Width  float64
	Height float64
}

func (s Size) ClientWidth() float64  { return s.Width }
func (s Size) ClientHeight() float64 { return s.Height }

// measure reads the container, rejecting missing or non-positive sizes.
func measure(c Container) (float64, float64, error) {
	if c == nil {
		return 0, 0, ErrInvalidContainer
	}
	w, h := c.ClientWidth(), c.ClientHeight()
	if !(w > 0) || !(h > 0) {
		return 0, 0, fmt.Errorf("%w: %vx%v", ErrInvalidContainer, w, h)
	}
	return w, h, nil
}

// buildBoard deals a fresh board: two side stacks followed by the layered
// field, then runs the initial state pass.
func buildBoard(cardNum int, trap bool, width, height float64, rng *rand.Rand) (*Board, error) {
	if cardNum <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCardNum, cardNum)
	}

	b := newBoard(width, height)
	b.trap = trap && rng.IntN(100) != 50

	pool := dealPool(cardNum, rng)
	center := pool[:FieldCards]
	left := pool[FieldCards : FieldCards+StackSize]
	right := pool[FieldCards+StackSize:]

	floors, err := splitFloors(center, rng)
	if err != nil {
		return nil, err
	}

	midY := height/2 + 100
	b.layStack(StackLeft, left, 50, midY)
	b.layStack(StackRight, right, width-90, midY)
	b.layFloors(floors, width/2, midY, rng)

	updateState(b)
	return b, nil
}

// dealPool returns TotalCards types as whole triples spread round-robin over
// cardNum types, shuffled twice.
func dealPool(cardNum int, rng *rand.Rand) []int {
	pool := make([]int, 0, TotalCards)
	for t := 0; len(pool) < TotalCards; t++ {
		typ := t%cardNum + 1
		pool = append(pool, typ, typ, typ)
	}
	for range 2 {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	return pool
}

// splitFloors cuts the field pool into floors. Floor f takes between half and
// all of f² cards, clamped to what remains.
func splitFloors(cards []int, rng *rand.Rand) ([][]int, error) {
	var floors [][]int
	for f := 1; len(cards) > 0; f++ {
		if f > maxFloors {
			return nil, fmt.Errorf("floor layout exceeded %d floors with %d cards left", maxFloors, len(cards))
		}
		capacity := f * f
		lo := max(1, (capacity+1)/2)
		n := min(lo+rng.IntN(capacity-lo+1), len(cards))
		floors = append(floors, cards[:n])
		cards = cards[n:]
	}
	return floors, nil
}

// layStack places a side pile. Card i is blocked by card i+1 above it.
func (b *Board) layStack(side Stack, types []int, left, top float64) {
	prev := -1
	for i, typ := range types {
		idx := b.add(&Card{
			ID:    fmt.Sprintf("stack-%s-%d", side, i),
			Type:  typ,
			Index: i,
			Stack: side,
			Position: Position{
				Top:    top,
				Left:   left + float64(i)*StackSpacing,
				ZIndex: i,
			},
			State: Covered,
		})
		if prev >= 0 {
			below := b.cards[prev]
			below.Parents = append(below.Parents, idx)
		}
		b.field = append(b.field, idx)
		prev = idx
	}
}

// layFloors places the pyramid. Each card on a floor is linked only against
// the previous floor: the earlier card underneath gains the new card as a
// parent.
func (b *Board) layFloors(floors [][]int, midX, midY float64, rng *rand.Rand) {
	var prev []int
	for layer, types := range floors {
		f := layer + 1
		grid := f * f
		used := make(map[int]bool, len(types))
		current := make([]int, 0, len(types))

		for _, typ := range types {
			i := rng.IntN(grid)
			for used[i] {
				i = rng.IntN(grid)
			}
			used[i] = true

			row, column := i/f, i%f
			pos := Position{
				Row:    row,
				Column: column,
				Top:    midY + CardSize*float64(row) - CardSize/2*float64(layer),
				Left:   midX + CardSize*float64(column) - CardSize/2*float64(layer),
				ZIndex: layer,
			}
			idx := b.add(&Card{
				ID:       fmt.Sprintf("%d-%d", layer, i),
				Type:     typ,
				Index:    i,
				Position: pos,
				State:    Covered,
			})
			for _, p := range prev {
				under := b.cards[p]
				if overlaps(under.Position, pos) {
					under.Parents = append(under.Parents, idx)
				}
			}
			current = append(current, idx)
		}

		b.field = append(b.field, current...)
		prev = current
	}
}

// overlaps reports whether two cards share screen area: both axes within one
// card size.
func overlaps(a, b Position) bool {
	return math.Abs(a.Top-b.Top) <= CardSize && math.Abs(a.Left-b.Left) <= CardSize
}
