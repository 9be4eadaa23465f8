// Package cookiestore persists the browser cookies that authenticate
// a scraping session. The store is a plain name -> value bag; callers
// snapshot it on load, mutate their own copy, and save only when the
// Changed diff reports a difference.
package cookiestore

import (
	"context"
	"database/sql"
	"os"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) (Store, error) {
	_, err := db.Exec(Schema)
	if err != nil {
		return Store{}, err
	}
	return Store{db: db}, nil
}

// Open creates or opens a cookie database at the given path.
func Open(path string) (Store, error) {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		f, err := os.Create(path)
		if err != nil {
			return Store{}, err
		}
		f.Close()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return Store{}, err
	}

	return New(db)
}

func (s Store) Close() error {
	return s.db.Close()
}

func (s Store) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, value FROM cookies")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cookies := map[string]string{}
	for rows.Next() {
		var name, value string
		err := rows.Scan(&name, &value)
		if err != nil {
			return nil, err
		}
		cookies[name] = value
	}
	return cookies, rows.Err()
}

// Save replaces the stored bag with the given one atomically.
func (s Store) Save(ctx context.Context, cookies map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "DELETE FROM cookies")
	if err != nil {
		return err
	}
	for name, value := range cookies {
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO cookies (name, value) VALUES (?, ?)",
			name, value,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Changed reports whether the two snapshots differ. Entries missing
// from `next` are not counted as changes, a scrape that never touched
// a cookie shouldn't force a rewrite.
func Changed(prev, next map[string]string) bool {
	for name, value := range next {
		old, ok := prev[name]
		if !ok || old != value {
			return true
		}
	}
	return false
}
