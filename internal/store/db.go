package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned by updates that require an existing row.
	ErrNotFound = errors.New("post not found")

	// ErrIntegrity is returned when a cross-reference write points at a
	// missing parent row. Callers are responsible for inserting parents
	// before cross-references.
	ErrIntegrity = errors.New("referential integrity violation")
)

// Store wraps the SQLite replica of the remote post collection.
type Store struct {
	db    *sql.DB
	watch *notifier
}

// Open opens or creates the replica database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db, watch: newNotifier()}

	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		title TEXT NOT NULL,
		html TEXT NOT NULL,
		feature_image TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		visibility TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		excerpt TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS authors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		profile_image TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS post_author_cross_ref (
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id TEXT NOT NULL REFERENCES authors(id),
		PRIMARY KEY (post_id, author_id)
	);

	CREATE TABLE IF NOT EXISTS post_tag_cross_ref (
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		tag_id TEXT NOT NULL REFERENCES tags(id),
		PRIMARY KEY (post_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_post_author_author ON post_author_cross_ref(author_id);
	CREATE INDEX IF NOT EXISTS idx_post_tag_tag ON post_tag_cross_ref(tag_id);
	CREATE INDEX IF NOT EXISTS idx_posts_updated ON posts(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// translateErr maps driver constraint failures onto the store's error
// taxonomy.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return err
}
