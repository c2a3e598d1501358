package eventstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

const memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS runs_log (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id  TEXT    NOT NULL,
	type    TEXT    NOT NULL,
	project TEXT    NOT NULL DEFAULT '',
	at_ms   INTEGER NOT NULL,
	payload BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_log_run ON runs_log(run_id);
CREATE INDEX IF NOT EXISTS runs_log_at ON runs_log(at_ms);
`

const selectRecords = `SELECT id, run_id, type, project, at_ms, payload FROM runs_log`

// SQLiteStore is the Store behind history.database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the history database at path.
// ":memory:" gives a private in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.HistoryError("cannot create history directory").
				WithContext("path", path).WithCause(err).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.HistoryError("cannot open history database").
			WithContext("path", path).WithCause(err).Build()
	}
	// One connection serializes writers and keeps an in-memory database alive.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.HistoryError("cannot create history schema").
			WithContext("path", path).WithCause(err).Build()
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec *Record) error {
	if rec.At.IsZero() {
		rec.At = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs_log (run_id, type, project, at_ms, payload) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Type, rec.Project, rec.At.UnixMilli(), rec.Payload)
	if err != nil {
		return errors.HistoryError("cannot append history record").
			WithContext("run_id", rec.RunID).WithContext("type", rec.Type).WithCause(err).Build()
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) Run(ctx context.Context, runID string) ([]Record, error) {
	return s.query(ctx, selectRecords+` WHERE run_id = ? ORDER BY id`, runID)
}

func (s *SQLiteStore) Since(ctx context.Context, t time.Time) ([]Record, error) {
	return s.query(ctx, selectRecords+` WHERE at_ms >= ? ORDER BY id`, t.UnixMilli())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.HistoryError("cannot query history").WithCause(err).Build()
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ms int64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Type, &r.Project, &ms, &r.Payload); err != nil {
			return nil, errors.HistoryError("cannot read history record").WithCause(err).Build()
		}
		r.At = time.UnixMilli(ms)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.HistoryError("cannot read history").WithCause(err).Build()
	}
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
