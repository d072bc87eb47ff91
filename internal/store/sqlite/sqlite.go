// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Terravet Contributors

// Package sqlite implements store.AssessmentStore on a single SQLite
// database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/terravet/terravet/internal/store"
	tverr "github.com/terravet/terravet/pkg/errors"
)

// Compile-time interface check.
var _ store.AssessmentStore = (*AssessmentStore)(nil)

// AssessmentStore persists assessments in SQLite. Scalar columns carry the
// fields queried and listed directly; the full query and report are stored
// as JSON blobs.
type AssessmentStore struct {
	db *sql.DB
}

// New opens (or creates) the assessment database at dbPath and initialises
// the schema.
func New(dbPath string) (*AssessmentStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "opening assessment db")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "pinging assessment db")
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "migrating assessment db")
	}

	return &AssessmentStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS assessments (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	latitude       REAL NOT NULL,
	longitude      REAL NOT NULL,
	score          REAL NOT NULL,
	recommendation TEXT NOT NULL,
	confidence     INTEGER NOT NULL,
	automatic_fail INTEGER NOT NULL DEFAULT 0,
	query          TEXT NOT NULL DEFAULT '{}',
	report         TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
CREATE INDEX IF NOT EXISTS idx_assessments_recommendation ON assessments(recommendation);
`
	_, err := db.Exec(ddl)
	return err
}

// Save persists an assessment, assigning an id and timestamp when unset.
func (s *AssessmentStore) Save(ctx context.Context, a *store.Assessment) error {
	if a == nil {
		return tverr.New(tverr.CodeStoreInvalidInput, "nil assessment")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.Report.ID = a.ID
	if a.Report.CreatedAt.IsZero() {
		a.Report.CreatedAt = time.Now().UTC()
	}

	queryJSON, err := json.Marshal(a.Query)
	if err != nil {
		return tverr.Wrap(err, tverr.CodeStoreInvalidInput, "encoding query")
	}
	reportJSON, err := json.Marshal(a.Report)
	if err != nil {
		return tverr.Wrap(err, tverr.CodeStoreInvalidInput, "encoding report")
	}

	const q = `INSERT INTO assessments
(id, created_at, latitude, longitude, score, recommendation, confidence, automatic_fail, query, report)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		a.ID, formatTime(a.Report.CreatedAt),
		a.Query.Latitude, a.Query.Longitude,
		a.Report.Score, string(a.Report.Recommendation), a.Report.Confidence,
		boolToInt(a.Report.AutomaticFail),
		string(queryJSON), string(reportJSON),
	)
	if err != nil {
		return tverr.Wrapf(err, tverr.CodeStoreDatabaseFailure, "inserting assessment %s", a.ID)
	}
	return nil
}

// Get returns one assessment by id.
func (s *AssessmentStore) Get(ctx context.Context, id string) (*store.Assessment, error) {
	const q = `SELECT id, query, report FROM assessments WHERE id = ?`
	row := s.db.QueryRowContext(ctx, q, id)
	a, err := scanAssessment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, tverr.Errorf(tverr.CodeStoreAssessmentNotFound, "assessment %s", id)
	}
	if err != nil {
		return nil, tverr.Wrapf(err, tverr.CodeStoreDatabaseFailure, "getting assessment %s", id)
	}
	return a, nil
}

// List returns assessments newest first.
func (s *AssessmentStore) List(ctx context.Context, opts store.ListOpts) ([]*store.Assessment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	const q = `SELECT id, query, report FROM assessments
ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, limit, opts.Offset)
	if err != nil {
		return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "listing assessments")
	}
	defer rows.Close() //nolint:errcheck

	var out []*store.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows.Scan)
		if err != nil {
			return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "scanning assessment row")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, tverr.Wrap(err, tverr.CodeStoreDatabaseFailure, "iterating assessments")
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *AssessmentStore) Close() error { return s.db.Close() }

func scanAssessment(scan func(dest ...any) error) (*store.Assessment, error) {
	var a store.Assessment
	var queryJSON, reportJSON string
	if err := scan(&a.ID, &queryJSON, &reportJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(queryJSON), &a.Query); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(reportJSON), &a.Report); err != nil {
		return nil, err
	}
	return &a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
