package archive

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Action writes the *Spec attached to the task. The spec is read when the
// task runs, so the manifest may be attached after registration.
func Action(ctx context.Context, t *task.Task) error {
	spec, ok := task.SpecOf[*Spec](t)
	if !ok || spec == nil {
		return errors.InternalError("archive task has no spec").WithTask(t.Name()).Build()
	}
	stats, err := Write(ctx, *spec)
	if err != nil {
		return err
	}
	slog.Debug("Wrote archive", logfields.Task(t.Name()), logfields.Path(spec.Path),
		slog.Int("entries", stats.Entries), slog.Int("substituted", stats.Substituted))
	return nil
}
