package fetch

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// PageCache is a SQLite-backed TTL cache for fetched pages. Re-running
// an audit inside the TTL reuses pages instead of re-rendering them.
type PageCache struct {
	db  *sql.DB
	ttl time.Duration
}

const pageCacheMigration = `
CREATE TABLE IF NOT EXISTS page_cache (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	html        TEXT NOT NULL DEFAULT '',
	status_code INTEGER NOT NULL DEFAULT 0,
	source      TEXT NOT NULL DEFAULT '',
	fetched_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_cache_url ON page_cache(url);
CREATE INDEX IF NOT EXISTS idx_page_cache_expires_at ON page_cache(expires_at);
`

// NewPageCache opens (or creates) the cache database at dsn with WAL
// mode and runs the migration.
func NewPageCache(dsn string, ttl time.Duration) (*PageCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(pageCacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PageCache{db: db, ttl: ttl}, nil
}

// Close releases the underlying database handle.
func (c *PageCache) Close() error {
	return c.db.Close()
}

// Get returns the freshest unexpired page for a URL, or nil when absent.
func (c *PageCache) Get(ctx context.Context, url string) (*Page, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT url, title, body, html, status_code, source FROM page_cache
		 WHERE url = ? AND expires_at > datetime('now')
		 ORDER BY fetched_at DESC LIMIT 1`,
		url,
	)

	var p Page
	err := row.Scan(&p.URL, &p.Title, &p.Text, &p.HTML, &p.StatusCode, &p.Source)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "cache: get page")
	}
	return &p, nil
}

// Put stores a fetched page with the cache TTL. The raw markup rides
// along so cache hits still feed structured-data extraction.
func (c *PageCache) Put(ctx context.Context, page *Page) error {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO page_cache (id, url, title, body, html, status_code, source, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), page.URL, page.Title, page.Text, page.HTML, page.StatusCode, page.Source, now, now.Add(c.ttl),
	)
	return eris.Wrap(err, "cache: put page")
}

// Purge deletes expired entries and reports how many were removed.
func (c *PageCache) Purge(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM page_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "cache: rows affected")
}

// Invalidate removes all cached entries for a URL. Refresh runs use this
// to force a live fetch.
func (c *PageCache) Invalidate(ctx context.Context, url string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM page_cache WHERE url = ?`, url)
	return eris.Wrap(err, "cache: invalidate")
}
