// Package state tracks what docsmith has built, in a small DuckDB database
// under the cache dir. It powers the status report and the notice that the
// API surface has not changed between builds.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

type DB struct {
	conn *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_package_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_build_id START 1;`,

		`CREATE TABLE IF NOT EXISTS packages (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			fingerprint TEXT,
			symbol_count INTEGER NOT NULL DEFAULT 0,
			section_count INTEGER NOT NULL DEFAULT 0,
			scanned_at TIMESTAMP,
			built_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_packages_name ON packages (name)`,

		`CREATE TABLE IF NOT EXISTS builds (
			id INTEGER PRIMARY KEY,
			package_id INTEGER REFERENCES packages(id),
			started_at TIMESTAMP NOT NULL,
			duration_ms INTEGER NOT NULL,
			tool TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_builds_package ON builds (package_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// --- Package operations ---

type Package struct {
	ID           int
	Name         string
	Fingerprint  *string
	SymbolCount  int
	SectionCount int
	ScannedAt    *time.Time
	BuiltAt      *time.Time
}

func (db *DB) UpsertPackage(name string) (*Package, error) {
	var p Package
	err := db.conn.QueryRow(
		`SELECT id, name, fingerprint, symbol_count, section_count, scanned_at, built_at
		 FROM packages WHERE name = ?`, name,
	).Scan(&p.ID, &p.Name, &p.Fingerprint, &p.SymbolCount, &p.SectionCount, &p.ScannedAt, &p.BuiltAt)

	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("checking package: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO packages (id, name) VALUES (nextval('seq_package_id'), ?)`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting package: %w", err)
	}

	var id int
	if err := db.conn.QueryRow("SELECT currval('seq_package_id')").Scan(&id); err != nil {
		return nil, fmt.Errorf("getting package id: %w", err)
	}

	return &Package{ID: id, Name: name}, nil
}

// RecordScan stores the latest snapshot fingerprint and counts for a
// package, returning whether the fingerprint changed since last time.
func (db *DB) RecordScan(pkgID int, fingerprint string, symbolCount, sectionCount int) (changed bool, err error) {
	var prev *string
	err = db.conn.QueryRow(`SELECT fingerprint FROM packages WHERE id = ?`, pkgID).Scan(&prev)
	if err != nil {
		return false, fmt.Errorf("reading fingerprint: %w", err)
	}
	changed = prev == nil || *prev != fingerprint

	_, err = db.conn.Exec(
		`UPDATE packages SET fingerprint = ?, symbol_count = ?, section_count = ?,
		 scanned_at = CURRENT_TIMESTAMP WHERE id = ?`,
		fingerprint, symbolCount, sectionCount, pkgID,
	)
	if err != nil {
		return false, fmt.Errorf("recording scan: %w", err)
	}
	return changed, nil
}

func (db *DB) MarkBuilt(pkgID int) error {
	_, err := db.conn.Exec(`UPDATE packages SET built_at = CURRENT_TIMESTAMP WHERE id = ?`, pkgID)
	return err
}

func (db *DB) GetPackage(name string) (*Package, error) {
	var p Package
	err := db.conn.QueryRow(
		`SELECT id, name, fingerprint, symbol_count, section_count, scanned_at, built_at
		 FROM packages WHERE name = ?`, name,
	).Scan(&p.ID, &p.Name, &p.Fingerprint, &p.SymbolCount, &p.SectionCount, &p.ScannedAt, &p.BuiltAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListPackages() ([]Package, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, fingerprint, symbol_count, section_count, scanned_at, built_at
		 FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pkgs []Package
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.Name, &p.Fingerprint, &p.SymbolCount, &p.SectionCount, &p.ScannedAt, &p.BuiltAt); err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// --- Build history ---

type Build struct {
	ID          int
	PackageID   int
	PackageName string
	StartedAt   time.Time
	Duration    time.Duration
	Tool        string
	Status      string
}

func (db *DB) RecordBuild(pkgID int, startedAt time.Time, duration time.Duration, tool, status string) error {
	_, err := db.conn.Exec(
		`INSERT INTO builds (id, package_id, started_at, duration_ms, tool, status)
		 VALUES (nextval('seq_build_id'), ?, ?, ?, ?, ?)`,
		pkgID, startedAt, duration.Milliseconds(), tool, status,
	)
	if err != nil {
		return fmt.Errorf("recording build: %w", err)
	}
	return nil
}

func (db *DB) RecentBuilds(limit int) ([]Build, error) {
	rows, err := db.conn.Query(
		`SELECT b.id, b.package_id, p.name, b.started_at, b.duration_ms, b.tool, b.status
		 FROM builds b JOIN packages p ON p.id = b.package_id
		 ORDER BY b.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var b Build
		var ms int64
		if err := rows.Scan(&b.ID, &b.PackageID, &b.PackageName, &b.StartedAt, &ms, &b.Tool, &b.Status); err != nil {
			return nil, err
		}
		b.Duration = time.Duration(ms) * time.Millisecond
		builds = append(builds, b)
	}
	return builds, nil
}
