// Package config loads triplestack.hcl.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/game"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "triplestack.hcl"

// Config is the complete configuration file.
type Config struct {
	Server     *ServerSettings     `hcl:"server,block"`
	Game       *GameSettings       `hcl:"game,block"`
	Simulation *SimulationSettings `hcl:"simulation,block"`
}

// ServerSettings configures `triplestack serve`.
type ServerSettings struct {
	Address      string `hcl:"address,optional"`
	Port         int    `hcl:"port,optional"`
	LogLevel     string `hcl:"log_level,optional"`
	IdleTimeout  string `hcl:"idle_timeout,optional"`
	HintStrategy string `hcl:"hint_strategy,optional"`
}

// GameSettings configures every game the binary creates.
type GameSettings struct {
	CardNum         int     `hcl:"card_num,optional"`
	LayerNum        int     `hcl:"layer_num,optional"`
	Trap            *bool   `hcl:"trap,optional"`
	ConsumeOnSelect bool    `hcl:"consume_on_select,optional"`
	MaxUndos        int     `hcl:"max_undos,optional"`
	MaxDiscards     int     `hcl:"max_discards,optional"`
	ShuffleMode     string  `hcl:"shuffle_mode,optional"`
	MatchDelay      string  `hcl:"match_delay,optional"`
	Width           float64 `hcl:"width,optional"`
	Height          float64 `hcl:"height,optional"`
}

// SimulationSettings configures `triplestack simulate`.
type SimulationSettings struct {
	Games    int    `hcl:"games,optional"`
	Strategy string `hcl:"strategy,optional"`
	Workers  int    `hcl:"workers,optional"`
	Seed     int64  `hcl:"seed,optional"`
	Report   string `hcl:"report,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var c Config
	if diags := gohcl.DecodeBody(file.Body, nil, &c); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Simulation == nil {
		c.Simulation = &SimulationSettings{}
	}

	s := c.Server
	if s.Address == "" {
		s.Address = "localhost"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.IdleTimeout == "" {
		s.IdleTimeout = "10m"
	}
	if s.HintStrategy == "" {
		s.HintStrategy = "first"
	}

	def := game.DefaultConfig()
	g := c.Game
	if g.CardNum == 0 {
		g.CardNum = def.CardNum
	}
	if g.LayerNum == 0 {
		g.LayerNum = def.LayerNum
	}
	if g.Trap == nil {
		trap := def.Trap
		g.Trap = &trap
	}
	if g.MaxUndos == 0 {
		g.MaxUndos = def.MaxUndos
	}
	if g.MaxDiscards == 0 {
		g.MaxDiscards = def.MaxDiscards
	}
	if g.ShuffleMode == "" {
		g.ShuffleMode = string(def.ShuffleMode)
	}
	if g.MatchDelay == "" {
		g.MatchDelay = def.MatchDelay.String()
	}
	if g.Width == 0 {
		g.Width = 800
	}
	if g.Height == 0 {
		g.Height = 600
	}

	sim := c.Simulation
	if sim.Games == 0 {
		sim.Games = 1000
	}
	if sim.Strategy == "" {
		sim.Strategy = "greedy"
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every setting.
func (c *Config) Validate() error {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}
	if !slices.Contains(logLevels, s.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %v)", s.LogLevel, logLevels)
	}
	if _, err := parsePositiveDuration("idle_timeout", s.IdleTimeout); err != nil {
		return err
	}
	if !slices.Contains(bot.Names(), s.HintStrategy) {
		return fmt.Errorf("server: invalid hint strategy %q", s.HintStrategy)
	}

	g := c.Game
	if g.CardNum < 1 {
		return fmt.Errorf("game: card_num must be positive, got %d", g.CardNum)
	}
	if g.LayerNum < 0 {
		return fmt.Errorf("game: layer_num must not be negative, got %d", g.LayerNum)
	}
	switch game.ShuffleMode(g.ShuffleMode) {
	case game.ShufflePositions, game.ShuffleTypes:
	default:
		return fmt.Errorf("game: invalid shuffle mode %q", g.ShuffleMode)
	}
	if d, err := time.ParseDuration(g.MatchDelay); err != nil || d < 0 {
		return fmt.Errorf("game: invalid match_delay %q", g.MatchDelay)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("game: board size must be positive, got %vx%v", g.Width, g.Height)
	}

	sim := c.Simulation
	if sim.Games < 1 {
		return fmt.Errorf("simulation: games must be positive, got %d", sim.Games)
	}
	if sim.Workers < 0 {
		return fmt.Errorf("simulation: workers must not be negative, got %d", sim.Workers)
	}
	if !slices.Contains(bot.Names(), sim.Strategy) {
		return fmt.Errorf("simulation: invalid strategy %q", sim.Strategy)
	}
	return nil
}

func parsePositiveDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("server: invalid %s %q", name, v)
	}
	return d, nil
}

// ServerAddress returns host:port.
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns the parsed session idle timeout. Call Validate first.
func (c *Config) IdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.IdleTimeout)
	return d
}

// GameConfig converts the game block into a game.Config. Container, clock
// and logger are left for the caller.
func (c *Config) GameConfig() game.Config {
	g := c.Game
	cfg := game.DefaultConfig()
	cfg.CardNum = g.CardNum
	cfg.LayerNum = g.LayerNum
	cfg.Trap = *g.Trap
	cfg.ConsumeOnSelect = g.ConsumeOnSelect
	cfg.MaxUndos = g.MaxUndos
	cfg.MaxDiscards = g.MaxDiscards
	cfg.ShuffleMode = game.ShuffleMode(g.ShuffleMode)
	if d, err := time.ParseDuration(g.MatchDelay); err == nil {
		cfg.MatchDelay = d
	}
	cfg.Container = game.Size{Width: g.Width, Height: g.Height}
	return cfg
}
