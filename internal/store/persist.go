package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenPersistentDB opens (creating if absent) a sqlite database that
// records a run's seeded global rules and global substitutions, so a
// long multi-file run that's interrupted can resume without reseeding
// rules already known to fire (spec.md §4.3's Rule Store is
// "process-lifetime" for one invocation; this is the opt-in durability
// layer one invocation can use across restarts, grounded on the
// teacher's own choice of a SQLite-backed store for run history).
func OpenPersistentDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening persistent db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initializing schema in %s: %w", path, err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS seeded_global_rules (
	rule_name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS global_substitutions (
	capture_name TEXT NOT NULL UNIQUE,
	snippet TEXT NOT NULL
);
`

// PersistGlobalRule records that rule name has fired a Global edge at
// least once, idempotently.
func PersistGlobalRule(db *sql.DB, name string) error {
	_, err := db.Exec(`INSERT OR IGNORE INTO seeded_global_rules (rule_name) VALUES (?)`, name)
	return err
}

// PersistGlobalSubstitution records (or updates) one global substitution.
func PersistGlobalSubstitution(db *sql.DB, name, snippet string) error {
	_, err := db.Exec(
		`INSERT INTO global_substitutions (capture_name, snippet) VALUES (?, ?)
		 ON CONFLICT(capture_name) DO UPDATE SET snippet = excluded.snippet`,
		name, snippet)
	return err
}

// LoadPersisted returns every previously persisted global rule name and
// global substitution, for a caller resuming a prior run.
func LoadPersisted(db *sql.DB) (ruleNames []string, subs map[string]string, err error) {
	ruleRows, err := db.Query(`SELECT rule_name FROM seeded_global_rules`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: loading seeded global rules: %w", err)
	}
	defer ruleRows.Close()
	for ruleRows.Next() {
		var name string
		if err := ruleRows.Scan(&name); err != nil {
			return nil, nil, err
		}
		ruleNames = append(ruleNames, name)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, nil, err
	}

	subRows, err := db.Query(`SELECT capture_name, snippet FROM global_substitutions`)
	if err != nil {
		return nil, nil, fmt.Errorf("store: loading global substitutions: %w", err)
	}
	defer subRows.Close()
	subs = make(map[string]string)
	for subRows.Next() {
		var name, snippet string
		if err := subRows.Scan(&name, &snippet); err != nil {
			return nil, nil, err
		}
		subs[name] = snippet
	}
	if err := subRows.Err(); err != nil {
		return nil, nil, err
	}
	return ruleNames, subs, nil
}
