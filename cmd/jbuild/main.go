package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/jbuild/cmd/jbuild/commands"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("jbuild"),
		kong.Description("Multi-project Java library builder"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
