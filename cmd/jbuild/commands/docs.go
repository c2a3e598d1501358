package commands

import (
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/setup"
)

// DocsCmd implements the 'docs' command.
type DocsCmd struct {
	Projects []string `short:"p" name:"project" help:"Restrict generation to these projects"`
}

func (d *DocsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return RunTargets(ctx, cfg, orchestrator.Options{Command: "docs", Targets: []string{setup.TaskDocs}, Projects: d.Projects})
}
