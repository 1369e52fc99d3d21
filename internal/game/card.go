package game

import "fmt"

// State is the play state of a card.
type State int

const (
	Covered State = iota
	Clickable
	InHand
	Eliminated
	// Discarded marks a field card whose tile was moved to the reserve. The
	// reserve plays it through its own display entity.
	Discarded
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Covered:
		return "covered"
	case Clickable:
		return "clickable"
	case InHand:
		return "in_hand"
	case Eliminated:
		return "eliminated"
	case Discarded:
		return "discarded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OnField reports whether a card in this state is still addressable on the
// field. Only field states block the cards beneath them.
func (s State) OnField() bool {
	return s == Covered || s == Clickable
}

// Stack identifies which side pile a card was dealt into.
type Stack int

const (
	StackNone Stack = iota
	StackLeft
	StackRight
)

func (s Stack) String() string {
	switch s {
	case StackLeft:
		return "left"
	case StackRight:
		return "right"
	default:
		return "field"
	}
}

// Position is where a card sits. Top and Left are pixel coordinates used for
// overlap testing; ZIndex orders stacking (higher is on top).
type Position struct {
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	ZIndex int     `json:"zIndex"`
}

// Card is a single tile. Parents holds arena indices of the cards that
// occlude it; the board owns every card.
type Card struct {
	ID       string
	Type     int
	Index    int
	Stack    Stack
	Position Position
	State    State
	Parents  []int

	// Set only on reserve entities.
	SetIndex      *int
	PositionInSet *int
}

// InReserve reports whether the card carries reserve bookkeeping.
func (c *Card) InReserve() bool {
	return c.SetIndex != nil && c.PositionInSet != nil
}

func intPtr(v int) *int { return &v }
