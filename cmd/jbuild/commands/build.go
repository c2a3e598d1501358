package commands

import (
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/setup"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Projects []string `short:"p" name:"project" help:"Restrict the build to these projects"`
	Targets  []string `arg:"" optional:"" help:"Tasks to run (default: build)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	targets := b.Targets
	if len(targets) == 0 {
		targets = []string{setup.TaskBuild}
	}
	ctx, cancel := signalContext()
	defer cancel()
	return RunTargets(ctx, cfg, orchestrator.Options{Command: "build", Targets: targets, Projects: b.Projects})
}
