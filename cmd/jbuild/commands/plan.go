package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/orchestrator"
	"git.home.luguber.info/inful/jbuild/internal/project"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Targets []string `arg:"" optional:"" help:"Show only the execution plan for these tasks"`
}

func (p *PlanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	b, err := orchestrator.New(cfg, orchestrator.Options{Command: "plan"}).Prepare(ctx)
	if err != nil {
		return err
	}
	for proj := range b.Projects().All() {
		if err := WritePlan(os.Stdout, proj, p.Targets); err != nil {
			return err
		}
	}
	return nil
}

// WritePlan prints the tasks of p in execution order. Without targets it
// plans every registered task.
func WritePlan(w io.Writer, p *project.Project, targets []string) error {
	c := p.Tasks()
	var present []string
	if len(targets) == 0 {
		present = c.Names()
	}
	for _, t := range targets {
		if c.Has(t) {
			present = append(present, t)
		}
	}
	color.New(color.Bold).Fprintf(w, "%s %s\n", p.Name(), p.Metadata().Version)
	if len(present) == 0 {
		fmt.Fprintln(w, "  (no tasks)")
		return nil
	}
	plan, err := c.Plan(present...)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, t := range plan {
		line := fmt.Sprintf("  %2d. %s\t%s", i+1, t.Name(), t.Description())
		if deps := t.Dependencies(); len(deps) > 0 {
			line += "\tafter " + strings.Join(deps, ", ")
		}
		if fins := t.Finalizers(); len(fins) > 0 {
			line += "\tfinalized by " + strings.Join(fins, ", ")
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}
