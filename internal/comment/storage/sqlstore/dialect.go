package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the few places where Postgres and SQLite differ.
// Collation must compare bytes so timestamps order as plain strings.
type Dialect struct {
	Name        string
	Driver      string
	Placeholder sq.PlaceholderFormat
	Collation   string
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Placeholder: sq.Dollar, Collation: `"C"`}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Placeholder: sq.Question, Collation: "BINARY"}
)

const Schema = `
CREATE TABLE IF NOT EXISTS comments (
	cid         TEXT PRIMARY KEY,
	uid         TEXT NOT NULL,
	parent_id   TEXT,
	subreddit   TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL DEFAULT '',
	ups         INTEGER NOT NULL DEFAULT 0,
	downs       INTEGER NOT NULL DEFAULT 0,
	"timestamp" TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS comments_uid_idx ON comments (uid);
`

// Open opens the database and pings it, backing off between attempts.
func Open(ctx context.Context, d Dialect, dsn string, attempts int) (*sql.DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}

	if d.Name == SQLite.Name {
		// one writer, and in-memory databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(40)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if attempts <= 0 {
		attempts = 1
	}
	sleep := 500 * time.Millisecond
	var last error
	for i := 1; i <= attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		last = db.PingContext(pctx)
		cancel()
		if last == nil {
			return db, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping %s after %d attempts: %w", d.Name, attempts, last)
}
