// package artwork caches cover images for search results.
//
// Remote image URLs are downloaded once into the plugin directory and the
// local reference is remembered in SQLite keyed by item URI, so repeated
// searches render icons without refetching.
package artwork

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebar/internal/shared"
	"golang.org/x/time/rate"
)

const schema = `
	CREATE TABLE IF NOT EXISTS artwork (
		uri        TEXT PRIMARY KEY,
		ref        TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)
`

// Cache resolves remote artwork URLs to local files, remembering
// resolutions in SQLite. Safe for concurrent use by search workers.
type Cache struct {
	db      *sql.DB
	dir     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// CacheOpts contains configuration options for creating a Cache.
type CacheOpts struct {
	DB     *sql.DB
	Dir    string
	Client *http.Client
	Logger *log.Logger
}

// Stats summarizes cache contents for diagnostics.
type Stats struct {
	Entries   int   `json:"entries"`
	DiskBytes int64 `json:"disk_bytes"`
}

// NewCache creates a Cache writing images under opts.Dir and initializes
// the artwork table.
func NewCache(opts CacheOpts) (*Cache, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("%w: artwork cache requires a database", shared.ErrInvalidArgument)
	}
	if opts.Dir == "" {
		return nil, fmt.Errorf("%w: artwork cache requires a directory", shared.ErrInvalidArgument)
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artwork directory: %w", err)
	}

	if _, err := opts.DB.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize artwork table: %w", err)
	}

	return &Cache{
		db:      opts.DB,
		dir:     opts.Dir,
		client:  opts.Client,
		limiter: rate.NewLimiter(rate.Limit(20), 10),
		logger:  opts.Logger,
	}, nil
}

// Resolve returns a local file reference for imageURL, downloading it on
// first use. key identifies the item the image belongs to.
func (c *Cache) Resolve(ctx context.Context, key, imageURL string) (string, error) {
	if imageURL == "" {
		return "", nil
	}

	if ref, ok := c.lookup(key); ok {
		return ref, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ref, err := c.download(ctx, key, imageURL)
	if err != nil {
		return "", err
	}

	if err := c.store(key, ref); err != nil {
		c.logger.Warn("failed to record artwork", "key", key, "error", err)
	}

	return ref, nil
}

// Prune removes cache entries older than maxAge along with their files.
// Returns the number of entries removed.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	rows, err := c.db.Query(`SELECT uri, ref FROM artwork WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to query stale artwork: %w", err)
	}
	defer rows.Close()

	type entry struct{ uri, ref string }
	var stale []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.uri, &e.ref); err != nil {
			return 0, fmt.Errorf("failed to scan artwork row: %w", err)
		}
		stale = append(stale, e)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("row iteration error: %w", err)
	}

	for _, e := range stale {
		if err := os.Remove(e.ref); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove artwork file", "ref", e.ref, "error", err)
		}
		if _, err := c.db.Exec(`DELETE FROM artwork WHERE uri = ?`, e.uri); err != nil {
			return 0, fmt.Errorf("failed to delete artwork row: %w", err)
		}
	}

	return len(stale), nil
}

// Stats reports entry count and disk usage of the image directory.
func (c *Cache) Stats() (Stats, error) {
	var stats Stats

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM artwork`).Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("failed to count artwork: %w", err)
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			stats.DiskBytes += info.Size()
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to measure artwork directory: %w", err)
	}

	return stats, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) lookup(key string) (string, bool) {
	var ref string
	err := c.db.QueryRow(`SELECT ref FROM artwork WHERE uri = ?`, key).Scan(&ref)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("artwork lookup failed", "key", key, "error", err)
		}
		return "", false
	}

	// The file may have been cleaned up outside our control.
	if _, err := os.Stat(ref); err != nil {
		return "", false
	}

	return ref, true
}

func (c *Cache) store(key, ref string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO artwork (uri, ref, fetched_at) VALUES (?, ?, ?)`,
		key, ref, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to store artwork: %w", err)
	}
	return nil
}

func (c *Cache) download(ctx context.Context, key, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build artwork request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: artwork fetch returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	path := filepath.Join(c.dir, fileName(key, resp.Header.Get("Content-Type")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create artwork file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write artwork file: %w", err)
	}

	return path, nil
}

// fileName derives a stable file name from the item key plus an extension
// matching the response content type.
func fileName(key, contentType string) string {
	sum := sha1.Sum([]byte(key))
	name := hex.EncodeToString(sum[:])

	switch contentType {
	case "image/png":
		return name + ".png"
	case "image/gif":
		return name + ".gif"
	default:
		return name + ".jpg"
	}
}
