// Package migrations owns the versioned schema of the books and chapters
// tables. The chain is strictly ordered: each step upgrades exactly one
// version, steps are applied in sequence inside their own transaction, and
// the installed version is tracked with PRAGMA user_version.
//
// If the installed version has no path to the current version (for example a
// downgrade or a corrupted version marker), the store is rebuilt empty. That
// destructive fallback is an accepted policy, not an error path.
package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// CurrentVersion is the schema version a fresh database is created at.
const CurrentVersion = 6

// Step upgrades the schema from From to To. Index creation inside a step is
// guarded with IF NOT EXISTS; data-copy steps assume exactly-once application.
type Step struct {
	From  int
	To    int
	Apply func(tx *sql.Tx) error
}

const booksSchema = `CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	cover_path TEXT,
	chapters_count INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0,
	is_synced INTEGER NOT NULL DEFAULT 0
)`

const chaptersSchema = `CREATE TABLE IF NOT EXISTS chapters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL DEFAULT '',
	words_count INTEGER NOT NULL DEFAULT 0,
	is_favorite INTEGER NOT NULL DEFAULT 0,
	content TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL DEFAULT 0,
	UNIQUE (book_id, position)
)`

const (
	bookIndex     = `CREATE INDEX IF NOT EXISTS idx_chapters_book_id ON chapters(book_id)`
	positionIndex = `CREATE INDEX IF NOT EXISTS idx_chapters_position ON chapters(position)`
)

// Chain is the ordered migration chain from version 1 to CurrentVersion.
var Chain = []Step{
	{From: 1, To: 2, Apply: addBookUpdatedAt},
	{From: 2, To: 3, Apply: rebuildBooksWithSyncState},
	{From: 3, To: 4, Apply: rebuildChaptersWithSurrogateKey},
	{From: 4, To: 5, Apply: addChapterContent},
	{From: 5, To: 6, Apply: reassertChapterIndexes},
}

// Apply brings the database at dbConn to CurrentVersion. A fresh database
// (user_version 0, no tables) is created directly at the current schema.
func Apply(db *sql.DB) error {
	installed, err := userVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if installed == CurrentVersion {
		return nil
	}

	if installed == 0 {
		return createFresh(db)
	}

	path, ok := chainFrom(installed)
	if !ok {
		log.Printf("No migration path from schema version %d to %d, rebuilding store (data will be lost)", installed, CurrentVersion)
		return rebuild(db)
	}

	for _, step := range path {
		if err := applyStep(db, step); err != nil {
			return fmt.Errorf("migrate %d->%d: %w", step.From, step.To, err)
		}
		log.Printf("Applied schema migration %d->%d", step.From, step.To)
	}
	return nil
}

// chainFrom returns the consecutive steps leading from installed to
// CurrentVersion, or false when no gap-free path exists.
func chainFrom(installed int) ([]Step, bool) {
	var path []Step
	next := installed
	for _, step := range Chain {
		if step.From != next {
			continue
		}
		path = append(path, step)
		next = step.To
	}
	if next != CurrentVersion {
		return nil, false
	}
	return path, true
}

// applyStep runs one step and advances user_version inside the same
// transaction, so a crash between the data copy and the version bump cannot
// leave a committed step that re-runs on restart.
func applyStep(db *sql.DB, step Step) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := step.Apply(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := setUserVersion(tx, step.To); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func createFresh(db *sql.DB) error {
	for _, stmt := range []string{booksSchema, chaptersSchema, bookIndex, positionIndex} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return setUserVersion(db, CurrentVersion)
}

// rebuild is the destructive fallback: drop both tables and recreate the
// current schema empty.
func rebuild(db *sql.DB) error {
	for _, stmt := range []string{`DROP TABLE IF EXISTS chapters`, `DROP TABLE IF EXISTS books`} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("drop old schema: %w", err)
		}
	}
	return createFresh(db)
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

// execer lets setUserVersion run against either the raw connection (fresh
// creation) or a step's transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setUserVersion(db execer, v int) error {
	// PRAGMA does not accept bind parameters.
	_, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v))
	return err
}

// addBookUpdatedAt (1->2) adds the last-modified column. Existing rows get
// "now at migration time" rather than a zero value.
func addBookUpdatedAt(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE books ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}
	_, err := tx.Exec(`UPDATE books SET updated_at = ?`, time.Now().UnixMilli())
	return err
}

// rebuildBooksWithSyncState (2->3) rebuilds the books table to add the
// creation timestamp and the synced flag. Existing rows inherit updated_at
// as their creation time and start unsynced.
func rebuildBooksWithSyncState(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE books_new (
			id TEXT PRIMARY KEY NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			cover_path TEXT,
			chapters_count INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL DEFAULT 0,
			is_synced INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO books_new (id, title, description, cover_path, chapters_count, updated_at, created_at, is_synced)
			SELECT id, title, description, cover_path, chapters_count, updated_at, updated_at, 0 FROM books`,
		`DROP TABLE books`,
		`ALTER TABLE books_new RENAME TO books`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// rebuildChaptersWithSurrogateKey (3->4) rebuilds the chapters table with a
// surrogate primary key, NOT NULL defaults for previously-nullable columns,
// and the two secondary indexes.
func rebuildChaptersWithSurrogateKey(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE chapters_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			words_count INTEGER NOT NULL DEFAULT 0,
			is_favorite INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0,
			UNIQUE (book_id, position)
		)`,
		`INSERT INTO chapters_new (book_id, position, title, description, date, words_count, is_favorite, updated_at)
			SELECT book_id, position, COALESCE(title, ''), COALESCE(description, ''), COALESCE(date, ''),
				COALESCE(words_count, 0), COALESCE(is_favorite, 0), COALESCE(updated_at, 0) FROM chapters`,
		`DROP TABLE chapters`,
		`ALTER TABLE chapters_new RENAME TO chapters`,
		bookIndex,
		positionIndex,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// addChapterContent (4->5) adds the free-text content column.
func addChapterContent(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE chapters ADD COLUMN content TEXT NOT NULL DEFAULT ''`)
	return err
}

// reassertChapterIndexes (5->6) re-creates the two chapter indexes. A prior
// partial failure may have left one missing; IF NOT EXISTS makes the step
// safe to run any number of times.
func reassertChapterIndexes(tx *sql.Tx) error {
	for _, s := range []string{bookIndex, positionIndex} {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
