package server

import (
	"encoding/json"
	"time"

	"github.com/lox/triplestack/internal/game"
)

// MessageType identifies a WebSocket message.
type MessageType string

// Client → Server
const (
	MessageTypeNewGame       MessageType = "new_game"
	MessageTypeSelect        MessageType = "select"
	MessageTypeSelectReserve MessageType = "select_reserve"
	MessageTypeUndo          MessageType = "undo"
	MessageTypeDiscard       MessageType = "discard"
	MessageTypeShuffle       MessageType = "shuffle"
	MessageTypeHint          MessageType = "hint"
)

// Server → Client
const (
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
	MessageTypeError MessageType = "error"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a message stamped with at.
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	msg := &Message{Type: messageType, Timestamp: at}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return msg, nil
}

// NewGameData starts a fresh board. Zero fields keep the current settings.
type NewGameData struct {
	CardNum  int   `json:"cardNum,omitempty"`
	LayerNum int   `json:"layerNum,omitempty"`
	Trap     *bool `json:"trap,omitempty"`
}

// CardData addresses a card by id.
type CardData struct {
	ID string `json:"id"`
}

// EventData mirrors a game play event.
type EventData struct {
	Type     game.EventType `json:"type"`
	CardID   string         `json:"cardId,omitempty"`
	HandSize int            `json:"handSize"`
}

// HintData is the suggested next move.
type HintData struct {
	Action string `json:"action"`
	CardID string `json:"cardId,omitempty"`
	Type   int    `json:"type,omitempty"`
}

// ErrorData reports a rejected message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
