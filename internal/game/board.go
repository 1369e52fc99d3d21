package game

import "slices"

// HandCapacity is the number of cards the hand holds before the game is lost.
const HandCapacity = 7

// ReserveSlot records one card of a discarded triple.
type ReserveSlot struct {
	Type     int
	Position Position
	SourceID string
	// Played is set once the slot's card has been taken back out of the
	// reserve, so peeling never reveals it twice.
	Played bool
}

// ReserveSet is one committed triple, indexed by position in set.
type ReserveSet []ReserveSlot

// Board is the arena holding every card created during one game. The ordered
// collections store arena indices.
type Board struct {
	cards []*Card
	byID  map[string]int

	field   []int
	hand    []int
	reserve []int
	history []ReserveSet

	width  float64
	height float64
	trap   bool
}

func newBoard(width, height float64) *Board {
	return &Board{
		byID:   make(map[string]int),
		width:  width,
		height: height,
	}
}

// add registers a card in the arena and returns its index. Ids are never
// reused within a board.
func (b *Board) add(c *Card) int {
	if _, exists := b.byID[c.ID]; exists {
		panic("game: duplicate card id " + c.ID)
	}
	idx := len(b.cards)
	b.cards = append(b.cards, c)
	b.byID[c.ID] = idx
	return idx
}

func (b *Board) lookup(id string) (int, bool) {
	idx, ok := b.byID[id]
	return idx, ok
}

func (b *Board) card(idx int) *Card {
	return b.cards[idx]
}

// fieldCards returns the field cards that are still in play.
func (b *Board) fieldCards() []int {
	out := make([]int, 0, len(b.field))
	for _, idx := range b.field {
		if b.cards[idx].State.OnField() {
			out = append(out, idx)
		}
	}
	return out
}

func (b *Board) inField(idx int) bool {
	return slices.Contains(b.field, idx)
}

func (b *Board) handPosition(idx int) int {
	return slices.Index(b.hand, idx)
}

func (b *Board) reservePosition(idx int) int {
	return slices.Index(b.reserve, idx)
}

// Win reports whether the field, reserve and hand are all empty.
func (b *Board) Win() bool {
	if len(b.hand) > 0 || len(b.reserve) > 0 {
		return false
	}
	for _, idx := range b.field {
		if b.cards[idx].State.OnField() {
			return false
		}
	}
	return true
}

// Trap reports the board's trap parity flag.
func (b *Board) Trap() bool {
	return b.trap
}

func removeIndex(list []int, idx int) []int {
	if i := slices.Index(list, idx); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
