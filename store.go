package folio

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides the content repository
// operations the publishing pipeline needs: filtered reads, single-record
// lookup by either key variant, an atomic view-counter increment, and
// authoring writes. Database errors never leave this package raw: misses
// become ErrNotFound, everything else is wrapped with context.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy timeout so writers wait
	// instead of returning SQLITE_BUSY, synchronous=NORMAL is safe with WAL.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    published INTEGER NOT NULL DEFAULT 0,
    published_at TEXT NOT NULL,
    updated_at TEXT,
    views INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS media (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `id, slug, title, excerpt, content, author, category, tags, published, published_at, updated_at, views`

func scanPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var tagsRaw, publishedAt string
	var updatedAt sql.NullString
	var published int
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Author,
		&p.Category, &tagsRaw, &published, &publishedAt, &updatedAt, &p.Views); err != nil {
		return BlogPost{}, err
	}
	p.Published = published == 1
	if t, err := time.Parse(time.RFC3339, publishedAt); err == nil {
		p.PublishedAt = t
	}
	if updatedAt.Valid {
		if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
			p.UpdatedAt = &t
		}
	}
	tags, err := decodeTags(tagsRaw)
	if err != nil {
		// Legacy-data shim: a row with an undecodable tag column keeps its
		// place in every projection, it just contributes no tags.
		slog.Warn("skipping malformed tag encoding", "slug", p.Slug, "error", err)
		tags = nil
	}
	p.Tags = tags
	return p, nil
}

// ListPosts returns posts ordered by publish time descending. When
// publishedOnly is true, drafts are excluded.
func (s *Store) ListPosts(publishedOnly bool) ([]BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM posts ORDER BY published_at DESC`
	if publishedOnly {
		q = `SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY published_at DESC`
	}
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single published post by key. Misses and drafts both
// report ErrNotFound.
func (s *Store) GetPost(key ContentKey) (BlogPost, error) {
	return s.getPost(key, true)
}

// GetPostAny returns a post by key regardless of published status (for admin).
func (s *Store) GetPostAny(key ContentKey) (BlogPost, error) {
	return s.getPost(key, false)
}

func (s *Store) getPost(key ContentKey, publishedOnly bool) (BlogPost, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE `
	var arg any
	if key.IsNumeric() {
		q += `id = ?`
		arg = key.ID()
	} else {
		q += `slug = ?`
		arg = key.Slug()
	}
	if publishedOnly {
		q += ` AND published = 1`
	}
	p, err := scanPost(s.db.QueryRow(q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, ErrNotFound
	}
	if err != nil {
		return BlogPost{}, fmt.Errorf("get post %s: %w", key, err)
	}
	return p, nil
}

// SlugExists reports whether any post already owns the given slug.
func (s *Store) SlugExists(slug string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM posts WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, fmt.Errorf("check slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// CreatePost inserts a new post. The slug is derived from the title and
// disambiguated with a numeric suffix on collision; it is fixed from here on.
// Two writers can derive the same slug before either inserts, so the UNIQUE
// index on posts.slug is the arbiter: the loser re-derives and retries.
func (s *Store) CreatePost(p BlogPost) (BlogPost, error) {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return BlogPost{}, fmt.Errorf("encode tags: %w", err)
	}
	for attempt := 0; attempt < 10; attempt++ {
		slug, err := uniqueSlug(p.Title, s.SlugExists)
		if err != nil {
			return BlogPost{}, err
		}
		p.Slug = slug
		res, err := s.db.Exec(`INSERT INTO posts (slug, title, excerpt, content, author, category, tags, published, published_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Slug, p.Title, p.Excerpt, p.Content, p.Author, p.Category, tags,
			boolInt(p.Published), p.PublishedAt.Format(time.RFC3339))
		if isSlugTaken(err) {
			continue
		}
		if err != nil {
			return BlogPost{}, fmt.Errorf("create post: %w", err)
		}
		p.ID, err = res.LastInsertId()
		if err != nil {
			return BlogPost{}, fmt.Errorf("create post: %w", err)
		}
		return p, nil
	}
	return BlogPost{}, fmt.Errorf("create post: slug %q contended", p.Slug)
}

func isSlugTaken(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: posts.slug")
}

// UpdatePost patches every authored field of the post with the given id.
// The slug and the view counter are deliberately untouched, and updated_at is
// stamped with the write time.
func (s *Store) UpdatePost(id int64, p BlogPost) (BlogPost, error) {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return BlogPost{}, fmt.Errorf("encode tags: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE posts SET title = ?, excerpt = ?, content = ?, author = ?,
		category = ?, tags = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Excerpt, p.Content, p.Author, p.Category, tags,
		boolInt(p.Published), now, id)
	if err != nil {
		return BlogPost{}, fmt.Errorf("update post %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return BlogPost{}, ErrNotFound
	}
	return s.GetPostAny(NumericKey(id))
}

// DeletePost removes a post by id.
func (s *Store) DeletePost(id int64) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter for the post addressed by key and
// returns the new value. The read-modify-write happens inside a single UPDATE
// so concurrent page views cannot lose updates. A miss reports ErrNotFound
// and never creates a row.
func (s *Store) IncrementViews(key ContentKey) (int64, error) {
	q := `UPDATE posts SET views = views + 1 WHERE slug = ? RETURNING views`
	var arg any = key.Slug()
	if key.IsNumeric() {
		q = `UPDATE posts SET views = views + 1 WHERE id = ? RETURNING views`
		arg = key.ID()
	}
	var views int64
	err := s.db.QueryRow(q, arg).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment views %s: %w", key, err)
	}
	return views, nil
}

// Categories returns the sorted, deduplicated set of categories across all
// published posts.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.db.Query(`SELECT category FROM posts WHERE published = 1`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if cat != "" {
			set[cat] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return sortedSet(set), nil
}

// Tags returns the sorted, deduplicated union of tags across all published
// posts. A row with a malformed tag encoding is skipped (and logged) without
// failing the aggregation.
func (s *Store) Tags() ([]string, error) {
	rows, err := s.db.Query(`SELECT slug, tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var slug, raw string
		if err := rows.Scan(&slug, &raw); err != nil {
			return nil, fmt.Errorf("scan tags: %w", err)
		}
		tags, err := decodeTags(raw)
		if err != nil {
			slog.Warn("skipping malformed tag encoding", "slug", slug, "error", err)
			continue
		}
		for _, t := range tags {
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return sortedSet(set), nil
}

// ListMedia returns all stored media metadata, newest first.
func (s *Store) ListMedia() ([]MediaFile, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, size, uploaded_at FROM media ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var files []MediaFile
	for rows.Next() {
		var m MediaFile
		if err := rows.Scan(&m.Filename, &m.OriginalName, &m.Size, &m.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		files = append(files, m)
	}
	return files, rows.Err()
}

// SaveMedia upserts metadata for an uploaded file.
func (s *Store) SaveMedia(m MediaFile) error {
	if m.UploadedAt == "" {
		m.UploadedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO media (filename, original_name, size, uploaded_at) VALUES (?, ?, ?, ?)`,
		m.Filename, m.OriginalName, m.Size, m.UploadedAt)
	if err != nil {
		return fmt.Errorf("save media: %w", err)
	}
	return nil
}

// DeleteMedia removes a media record by filename.
func (s *Store) DeleteMedia(filename string) error {
	res, err := s.db.Exec(`DELETE FROM media WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("delete media %q: %w", filename, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// encodeTags serializes a tag list as a JSON array for the tags column.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeTags parses the JSON-array tag column.
func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
