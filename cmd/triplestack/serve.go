package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lox/triplestack/internal/server"
)

// ServeCmd runs the HTTP and WebSocket server.
type ServeCmd struct {
	Addr string `help:"Listen address, overriding the config file"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.logger(cfg, nil)

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	gameCfg := cfg.GameConfig()
	s := server.NewServer(server.Config{
		Addr:         addr,
		Game:         gameCfg,
		HintStrategy: cfg.Server.HintStrategy,
		IdleTimeout:  cfg.IdleTimeout(),
		Logger:       logger,
	})

	logger.Info("Starting triplestack server",
		"address", addr,
		"card_num", gameCfg.CardNum,
		"trap", gameCfg.Trap,
		"hint_strategy", cfg.Server.HintStrategy,
		"idle_timeout", cfg.IdleTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
