// Package history records applied evolutions in a SQLite database.
//
// Every apply stores a Version: the signature the database was evolved to and
// the evolution steps that got it there. The latest version serves as the
// base signature of the next apply.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemaevolve/internal/evolution"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// ErrNoHistory is returned by Latest when nothing was recorded yet.
var ErrNoHistory = errors.New("no recorded versions")

// Version is one recorded evolution target.
type Version struct {
	ID        string
	Dialect   string
	Signature string
	CreatedAt time.Time
	StepCount int
	// Steps is empty for versions returned by List.
	Steps []Step
}

// Step is one recorded mutation of a version.
type Step struct {
	Namespace string
	Label     string
	SQL       string
}

// Project decodes the recorded signature.
func (v *Version) Project() (*signature.Project, error) {
	return signature.Decode(strings.NewReader(v.Signature))
}

// Store is the history database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path and migrates
// it. Use ":memory:" for an in-memory store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dsn := path + "?_foreign_keys=on"
	if path != ":memory:" {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A second connection to :memory: would see a different database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("opened history store", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the history database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores target as a new version reached by plan.
func (s *Store) Record(ctx context.Context, target *signature.Project, plan *evolution.Plan) (*Version, error) {
	var buf bytes.Buffer
	if err := signature.Encode(&buf, target); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}

	v := &Version{
		ID:        uuid.New().String(),
		Signature: buf.String(),
		CreatedAt: time.Now().UTC(),
	}
	if plan != nil {
		v.Dialect = plan.Dialect
		for _, step := range plan.Steps {
			v.Steps = append(v.Steps, Step{
				Namespace: step.Namespace,
				Label:     step.Mutation.String(),
				SQL:       strings.Join(step.SQL, "\n"),
			})
		}
	}

	v.StepCount = len(v.Steps)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO versions (id, dialect, signature, created_at) VALUES (?, ?, ?, ?)`,
		v.ID, v.Dialect, v.Signature, v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record version: %w", err)
	}
	for i, step := range v.Steps {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO evolutions (version_id, position, namespace, label, sql_text) VALUES (?, ?, ?, ?, ?)`,
			v.ID, i, step.Namespace, step.Label, step.SQL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to record evolution step: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit version: %w", err)
	}

	s.logger.Info("recorded version",
		slog.String("id", v.ID),
		slog.Int("steps", len(v.Steps)))
	return v, nil
}

// Latest returns the most recent version with its steps.
func (s *Store) Latest(ctx context.Context) (*Version, error) {
	v := &Version{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, dialect, signature, created_at FROM versions ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&v.ID, &v.Dialect, &v.Signature, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}

	v.Steps, err = s.steps(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.StepCount = len(v.Steps)
	return v, nil
}

// List returns every version, newest first, without steps or signatures.
func (s *Store) List(ctx context.Context) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, v.dialect, v.created_at, COUNT(e.id)
		FROM versions v LEFT JOIN evolutions e ON e.version_id = v.id
		GROUP BY v.id
		ORDER BY v.created_at DESC, v.rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.Dialect, &v.CreatedAt, &v.StepCount); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *Store) steps(ctx context.Context, versionID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT namespace, label, sql_text FROM evolutions WHERE version_id = ? ORDER BY position`,
		versionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get evolution steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var step Step
		if err := rows.Scan(&step.Namespace, &step.Label, &step.SQL); err != nil {
			return nil, fmt.Errorf("failed to scan evolution step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
