// Package notify publishes per-project build outcomes to NATS JetStream.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
)

// Event is the message published for each finished project.
type Event struct {
	RunID      string    `json:"run_id"`
	Project    string    `json:"project"`
	Version    string    `json:"version"`
	Outcome    string    `json:"outcome"`
	FailedTask string    `json:"failed_task,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher sends a message on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Notifier publishes outcome events.
type Notifier struct {
	pub     Publisher
	subject string
	close   func()
}

// New wraps a publisher. Events go to subject.<project>.
func New(pub Publisher, subject string) *Notifier {
	return &Notifier{pub: pub, subject: subject, close: func() {}}
}

const streamName = "JBUILD_OUTCOMES"

type jetStreamPublisher struct {
	js jetstream.JetStream
}

func (p jetStreamPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	_, err := p.js.Publish(ctx, subject, data)
	return err
}

// Connect dials NATS, ensures the outcome stream exists and returns a
// notifier on it.
func Connect(ctx context.Context, cfg config.EventsConfig) (*Notifier, error) {
	if cfg.NATSURL == "" {
		return nil, errors.ConfigError("events.nats_url is required").Build()
	}
	conn, err := nats.Connect(cfg.NATSURL, nats.Name("jbuild"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, errors.EventsError("failed to connect to NATS").WithContext("url", cfg.NATSURL).WithCause(err).Build()
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.EventsError("failed to create JetStream context").WithCause(err).Build()
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Build outcomes published by jbuild",
		Subjects:    []string{cfg.Subject + ".>"},
		MaxAge:      30 * 24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, errors.EventsError("failed to ensure outcome stream").WithCause(err).Build()
	}

	slog.Info("NATS notifier initialized", logfields.URL(cfg.NATSURL), slog.String("subject", cfg.Subject))
	n := New(jetStreamPublisher{js: js}, cfg.Subject)
	n.close = conn.Close
	return n, nil
}

// Subject returns the subject an event for project is published on.
func (n *Notifier) Subject(project string) string {
	return n.subject + "." + strings.ReplaceAll(project, ".", "_")
}

// ProjectFinished publishes ev. Failures are returned as retryable events
// errors; callers log them without failing the build.
func (n *Notifier) ProjectFinished(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.EventsError("failed to marshal outcome event").WithCause(err).Build()
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.pub.Publish(pctx, n.Subject(ev.Project), data); err != nil {
		return errors.EventsError("failed to publish outcome event").
			WithProject(ev.Project).WithCause(err).Build()
	}
	slog.Debug("Published outcome event", logfields.Project(ev.Project), logfields.Outcome(ev.Outcome))
	return nil
}

// Close releases the connection.
func (n *Notifier) Close() {
	if n != nil && n.close != nil {
		n.close()
	}
}
