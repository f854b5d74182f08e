// Package catalog keeps a SQLite record of generation runs, so fleets of
// templates can be generated over time and queried later.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open instead of sql.Open so the right driver name is used for the
// build mode.
package catalog

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/FocuswithJustin/ArenaForge/core/errors"
	"github.com/FocuswithJustin/ArenaForge/internal/output"
)

// DriverType identifies the underlying implementation, "purego" or "cgo".
func DriverType() string {
	return driverType
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	template   TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	total      INTEGER NOT NULL,
	produced   INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS variants (
	run_id TEXT NOT NULL REFERENCES runs(id),
	idx    INTEGER NOT NULL,
	name   TEXT NOT NULL,
	hash   TEXT NOT NULL,
	labels TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// Run is one recorded generation run.
type Run struct {
	ID        string
	Template  string
	Seed      int
	Total     int64
	Produced  int
	CreatedAt string
}

// Catalog is an open run catalog.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize catalog schema")
	}
	return &Catalog{db: db}, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// RecordRun stores a finished run and its variants in one transaction.
func (c *Catalog) RecordRun(m *output.Manifest) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, template, seed, total, produced, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Template, m.Seed, m.Total, m.Produced, m.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert run %s", m.RunID)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO variants (run_id, idx, name, hash, labels) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare variant insert")
	}
	defer stmt.Close()

	for _, v := range m.Variants {
		labels, err := json.Marshal(v.Labels)
		if err != nil {
			return errors.Wrapf(err, "encode labels for %s", v.Name)
		}
		if _, err := stmt.Exec(m.RunID, v.Index, v.Name, v.BLAKE3, string(labels)); err != nil {
			return errors.Wrapf(err, "insert variant %s", v.Name)
		}
	}
	return tx.Commit()
}

// Runs returns all recorded runs, newest first.
func (c *Catalog) Runs() ([]Run, error) {
	rows, err := c.db.Query(
		`SELECT id, template, seed, total, produced, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Template, &r.Seed, &r.Total, &r.Produced, &r.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Variants returns the variant records of one run in expansion order.
func (c *Catalog) Variants(runID string) ([]output.VariantRecord, error) {
	rows, err := c.db.Query(
		`SELECT idx, name, hash, labels FROM variants WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "query variants of %s", runID)
	}
	defer rows.Close()

	var out []output.VariantRecord
	for rows.Next() {
		var v output.VariantRecord
		var labels string
		if err := rows.Scan(&v.Index, &v.Name, &v.BLAKE3, &labels); err != nil {
			return nil, errors.Wrap(err, "scan variant")
		}
		if strings.TrimSpace(labels) != "" && labels != "null" {
			if err := json.Unmarshal([]byte(labels), &v.Labels); err != nil {
				return nil, errors.Wrapf(err, "decode labels of %s", v.Name)
			}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.NewNotFound("run", runID)
	}
	return out, nil
}
