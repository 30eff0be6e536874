package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// SQLite persists the run's dataset to a local database: the newsletters
// table is replaced wholesale each run inside one transaction, and a row per
// run is appended for history. It never carries dedup state between runs.
type SQLite struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) a SQLite database at the given path and
// configures WAL mode.
func NewSQLiteSink(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	records_seen       INTEGER NOT NULL,
	merged             INTEGER NOT NULL,
	kept               INTEGER NOT NULL,
	dropped_incomplete INTEGER NOT NULL,
	failed_sources     INTEGER NOT NULL,
	result             TEXT,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS newsletters (
	identity_key     TEXT PRIMARY KEY,
	name             TEXT,
	link             TEXT,
	publisher        TEXT,
	email            TEXT,
	subscriber_count INTEGER,
	social_accounts  TEXT,
	provenance       TEXT,
	is_complete      INTEGER NOT NULL,
	run_id           TEXT NOT NULL REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_newsletters_run_id ON newsletters(run_id);
`

func (s *SQLite) Name() string { return "sqlite" }

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Write replaces the newsletters table with this run's records and appends
// the run summary. Everything happens in one transaction so a failure leaves
// the previous dataset intact.
func (s *SQLite) Write(ctx context.Context, newsletters []model.Newsletter, result *model.RunResult) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: migrate: %v", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: begin: %v", err)
	}
	defer tx.Rollback() //nolint:errcheck

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: marshal result: %v", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, records_seen, merged, kept, dropped_incomplete, failed_sources, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.RecordsSeen, result.Merged, result.Kept,
		result.DroppedIncomplete, result.FailedSources, string(resultJSON), time.Now().UTC(),
	); err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: insert run: %v", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM newsletters`); err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: clear newsletters: %v", err)
	}

	for _, n := range newsletters {
		socialJSON, err := json.Marshal(n.Social)
		if err != nil {
			return eris.Wrapf(ErrSinkWrite, "sqlite: marshal social: %v", err)
		}
		provJSON, err := json.Marshal(n.Provenance)
		if err != nil {
			return eris.Wrapf(ErrSinkWrite, "sqlite: marshal provenance: %v", err)
		}

		var count any
		if n.SubscriberCount != nil {
			count = *n.SubscriberCount
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO newsletters (identity_key, name, link, publisher, email, subscriber_count, social_accounts, provenance, is_complete, run_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.IdentityKey, n.Name, n.Link, n.Publisher, n.Email,
			count, string(socialJSON), string(provJSON), n.Complete, result.RunID,
		); err != nil {
			return eris.Wrapf(ErrSinkWrite, "sqlite: insert newsletter %s: %v", n.IdentityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrapf(ErrSinkWrite, "sqlite: commit: %v", err)
	}

	zap.L().Info("sqlite: dataset written",
		zap.Int("records", len(newsletters)),
		zap.String("run_id", result.RunID),
	)
	return nil
}
