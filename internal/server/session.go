package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/randutil"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("session closed")

// Session is one WebSocket client playing its own game.
type Session struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	game      *game.Game
	hint      bot.Strategy
	settings  game.Settings
	logger    *log.Logger
	clock     quartz.Clock
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu   sync.Mutex
	idle *quartz.Timer
}

func newSession(conn *websocket.Conn, s *Server) (*Session, error) {
	cfg := s.cfg.Game
	cfg.Clock = s.clock
	cfg.Logger = s.cfg.Logger
	cfg.Events = game.Callbacks{}

	g, err := game.New(cfg)
	if err != nil {
		return nil, err
	}

	hint, err := bot.New(s.cfg.HintStrategy, randutil.New(randutil.Seed(cfg.Seed)), s.cfg.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &Session{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: s,
		game:   g,
		hint:   hint,
		settings: game.Settings{
			CardNum:  cfg.CardNum,
			LayerNum: cfg.LayerNum,
			Trap:     cfg.Trap,
		},
		logger: s.logger.WithPrefix("session").With("game", g.ID()),
		clock:  s.clock,
		ctx:    ctx,
		cancel: cancel,
	}
	g.Events().Subscribe(sess)
	return sess, nil
}

// Start sends the opening state and begins handling the connection.
func (s *Session) Start() {
	s.mu.Lock()
	s.idle = s.clock.AfterFunc(s.server.cfg.IdleTimeout, s.expire, "idle")
	s.mu.Unlock()

	s.sendState(s.game.Snapshot())
	go s.writePump()
	go s.readPump()
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.game.Events().Unsubscribe(s)
		s.mu.Lock()
		if s.idle != nil {
			s.idle.Stop()
		}
		s.mu.Unlock()
		_ = s.conn.Close()
	})
}

// Game returns the session's game.
func (s *Session) Game() *game.Game {
	return s.game
}

// OnEvent forwards game events to the client.
func (s *Session) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.StateEvent:
		s.sendState(e.Snapshot)
	case game.PlayEvent:
		s.sendMessage(MessageTypeEvent, EventData{Type: e.Type, CardID: e.CardID, HandSize: e.HandSize}, "")
	}
}

func (s *Session) sendState(snap game.Snapshot) {
	s.sendMessage(MessageTypeState, snap, "")
}

func (s *Session) sendError(code, message, requestID string) {
	s.sendMessage(MessageTypeError, ErrorData{Code: code, Message: message}, requestID)
}

func (s *Session) sendMessage(t MessageType, data any, requestID string) {
	msg, err := NewMessage(t, data, s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}
	msg.RequestID = requestID
	if err := s.enqueue(msg); err != nil {
		s.logger.Debug("Dropped message", "type", t, "error", err)
	}
}

func (s *Session) enqueue(msg *Message) error {
	select {
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
	}

	select {
	case s.send <- msg:
		return nil
	default:
		s.logger.Warn("Session send buffer full, closing session")
		s.Close()
		return ErrSessionClosed
	}
}

// expire runs when the client has been silent for the idle timeout. The
// nil message tells the write pump to close after flushing the error.
func (s *Session) expire() {
	s.logger.Info("Session idle, closing")
	s.sendError("idle_timeout", "session closed after inactivity", "")
	_ = s.enqueue(nil)
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idle != nil {
		s.idle.Reset(s.server.cfg.IdleTimeout, "idle")
	}
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		s.touch()
		s.handleMessage(&msg)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if msg == nil {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "idle timeout"))
				return
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) handleMessage(msg *Message) {
	s.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeNewGame:
		var data NewGameData
		if !s.decode(msg, &data) {
			return
		}
		s.newGame(data, msg.RequestID)

	case MessageTypeSelect, MessageTypeSelectReserve:
		var data CardData
		if !s.decode(msg, &data) {
			return
		}
		if data.ID == "" {
			s.sendError("invalid_data", "card id is required", msg.RequestID)
			return
		}
		if msg.Type == MessageTypeSelect {
			s.game.Select(data.ID)
		} else {
			s.game.SelectFromReserve(data.ID)
		}

	case MessageTypeUndo:
		s.game.Undo()

	case MessageTypeDiscard:
		s.game.Discard()

	case MessageTypeShuffle:
		s.game.Shuffle()

	case MessageTypeHint:
		m := s.hint.Next(s.game.Snapshot())
		s.sendMessage(MessageTypeHint, HintData{Action: m.Kind.String(), CardID: m.CardID, Type: m.Type}, msg.RequestID)

	default:
		s.logger.Warn("Unknown message type", "type", msg.Type)
		s.sendError("unknown_message", "unknown message type: "+msg.Type.String(), msg.RequestID)
	}
}

func (s *Session) newGame(data NewGameData, requestID string) {
	if data.CardNum > 0 {
		s.settings.CardNum = data.CardNum
	}
	if data.LayerNum > 0 {
		s.settings.LayerNum = data.LayerNum
	}
	if data.Trap != nil {
		s.settings.Trap = *data.Trap
	}

	settings := s.settings
	if err := s.game.InitData(&settings); err != nil {
		s.sendError("new_game_failed", err.Error(), requestID)
		return
	}
	s.logger.Info("Started new game", "id", s.game.ID(), "cardNum", settings.CardNum)
}

func (s *Session) decode(msg *Message, v any) bool {
	if len(msg.Data) == 0 {
		if _, ok := v.(*NewGameData); ok {
			return true
		}
		s.sendError("invalid_data", "message data is required", msg.RequestID)
		return false
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		s.sendError("invalid_data", err.Error(), msg.RequestID)
		return false
	}
	return true
}
