package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/triplestack/internal/config"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"triplestack.hcl" type:"path" help:"Config file (missing file uses defaults)"`
	LogLevel string `help:"Log level (debug, info, warn, error), overriding the config file"`
	NoColor  bool   `help:"Disable colour output"`
}

// load reads the config file and applies the global overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Config, err)
	}
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return cfg, nil
}

// logger builds the process logger at the configured level.
func (g *Globals) logger(cfg *config.Config, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
	})
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	if g.NoColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}
