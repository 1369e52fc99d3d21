package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the hint and WebSocket game server"`
	Play     PlayCmd          `cmd:"" help:"Play a game in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play many games with a bot strategy and report results"`
	Episode  EpisodeCmd       `cmd:"" help:"Run one agent-environment episode with a bot strategy"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("triplestack"),
		kong.Description("Collect three of a kind: tile-matching game server, terminal client and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
