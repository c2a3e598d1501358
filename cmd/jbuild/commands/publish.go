package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Projects []string `short:"p" name:"project" help:"Restrict publishing to these projects"`
	DryRun   bool     `name:"dry-run" help:"Stage signed artifacts locally instead of uploading"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	target := publish.SelectTarget(cfg.Publish, cfg.Library.Version)
	slog.Info("Publishing", slog.String("repository", target), slog.Bool("dry_run", p.DryRun))
	ctx, cancel := signalContext()
	defer cancel()
	return RunTargets(ctx, cfg, orchestrator.Options{
		Command:  "publish",
		Targets:  []string{publish.TaskPublish},
		Projects: p.Projects,
		DryRun:   p.DryRun,
	})
}
