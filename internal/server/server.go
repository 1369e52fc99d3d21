package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/triplestack/internal/game"
)

// Config configures a Server.
type Config struct {
	Addr string
	// Game is the template for every session's game. Clock and Logger are
	// replaced with the server's.
	Game         game.Config
	HintStrategy string
	IdleTimeout  time.Duration
	Clock        quartz.Clock
	Logger       *log.Logger
}

// Server serves the hint endpoint and one game per WebSocket session.
type Server struct {
	cfg      Config
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock

	mu       sync.Mutex
	sessions map[*Session]struct{}
	http     *http.Server
}

// NewServer creates a server with its routes registered.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.HintStrategy == "" {
		cfg.HintStrategy = "first"
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}

	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Browser clients are served from other origins.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   cfg.Logger.WithPrefix("server"),
		clock:    cfg.Clock,
		sessions: make(map[*Session]struct{}),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/predict", s.handlePredict)
	s.mux.HandleFunc("/ws", s.handleWebSocket)
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.mu.Lock()
	s.http = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	s.logger.Info("Starting server", "addr", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown closes every session and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	srv := s.http
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	total := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("Session opened", "game", sess.game.ID(), "total", total)
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	total := len(s.sessions)
	s.mu.Unlock()
	s.logger.Info("Session closed", "total", total)
}

// handleWebSocket upgrades the request and starts a session with a new game.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	sess, err := newSession(conn, s)
	if err != nil {
		s.logger.Error("Failed to start session", "error", err)
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "cannot create game"))
		_ = conn.Close()
		return
	}

	s.register(sess)
	sess.Start()

	go func() {
		<-sess.ctx.Done()
		s.unregister(sess)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
