package game

import (
	"reflect"
	"slices"
	"sync"
	"time"
)

// EventType identifies a game event.
type EventType string

const (
	EventTypeClick EventType = "click"
	EventTypeDrop  EventType = "drop"
	EventTypeWin   EventType = "win"
	EventTypeLose  EventType = "lose"
	EventTypeState EventType = "state"
)

func (et EventType) String() string {
	return string(et)
}

// GameEvent is anything published on the event bus.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// PlayEvent is published for click, drop, win and lose.
type PlayEvent struct {
	Type      EventType
	GameID    string
	CardID    string
	HandSize  int
	timestamp time.Time
}

func (e PlayEvent) EventType() EventType { return e.Type }
func (e PlayEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayEvent creates a play event stamped with the given time.
func NewPlayEvent(t EventType, gameID, cardID string, handSize int, at time.Time) PlayEvent {
	return PlayEvent{
		Type:      t,
		GameID:    gameID,
		CardID:    cardID,
		HandSize:  handSize,
		timestamp: at,
	}
}

// StateEvent is published once an operation has fully completed and carries
// the externally visible state at that moment.
type StateEvent struct {
	Snapshot  Snapshot
	timestamp time.Time
}

func (e StateEvent) EventType() EventType { return EventTypeState }
func (e StateEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber receives published events.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription.
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	// Unsubscribe removes a subscriber by identity. Subscribe by pointer
	// to be able to unsubscribe later.
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory, synchronous event bus.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus.
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if !isComparable(subscriber) {
		return
	}
	bus.subscribers = slices.DeleteFunc(bus.subscribers, func(s EventSubscriber) bool {
		return isComparable(s) && s == subscriber
	})
}

// isComparable reports whether s can be compared with ==. Func-typed and
// Callbacks subscribers cannot, so they are never unsubscribed.
func isComparable(s EventSubscriber) bool {
	return s != nil && reflect.TypeOf(s).Comparable()
}

func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subscribers)
	bus.mu.RUnlock()

	for _, s := range subs {
		s.OnEvent(event)
	}
}

// Callbacks are the optional presentation hooks. A nil field is a silent
// no-op.
type Callbacks struct {
	Click func()
	Drop  func()
	Win   func()
	Lose  func()
}

// OnEvent routes play events to the matching callback.
func (c Callbacks) OnEvent(event GameEvent) {
	var fn func()
	switch event.EventType() {
	case EventTypeClick:
		fn = c.Click
	case EventTypeDrop:
		fn = c.Drop
	case EventTypeWin:
		fn = c.Win
	case EventTypeLose:
		fn = c.Lose
	}
	if fn != nil {
		fn()
	}
}
