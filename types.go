package folio

import (
	"strconv"
	"time"
)

// BlogPost is the core content type stored in SQLite. The numeric ID is the
// surrogate key; Slug is the stable public route segment. Once a post is
// created its slug is never rewritten — external links depend on it.
type BlogPost struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Author      string     `json:"author"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Published   bool       `json:"published"`
	PublishedAt time.Time  `json:"publishedAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Views       int64      `json:"views"`
}

// LastModified returns the update timestamp if the post has one, otherwise
// the publish timestamp. Used for sitemap lastmod.
func (p BlogPost) LastModified() time.Time {
	if p.UpdatedAt != nil {
		return *p.UpdatedAt
	}
	return p.PublishedAt
}

// Role is a principal's authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Satisfies reports whether the role meets the given requirement.
// Admin satisfies everything.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// Principal is the authenticated identity resolved from a request's session.
// It is owned by the session layer; nothing here persists it.
type Principal struct {
	Name string
	Role Role
}

// ContentKey addresses a post by either its numeric surrogate id or its slug.
// The variant is decided once, at the HTTP boundary, so the store never has to
// re-infer what kind of key it was handed.
type ContentKey struct {
	id      int64
	slug    string
	numeric bool
}

// ParseContentKey classifies a raw path segment: a string that parses as a
// non-negative integer addresses by id, anything else by slug.
func ParseContentKey(raw string) ContentKey {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
		return NumericKey(n)
	}
	return SlugKey(raw)
}

// NumericKey builds a ContentKey addressing by surrogate id.
func NumericKey(id int64) ContentKey {
	return ContentKey{id: id, numeric: true}
}

// SlugKey builds a ContentKey addressing by slug.
func SlugKey(slug string) ContentKey {
	return ContentKey{slug: slug}
}

// IsNumeric reports whether the key addresses by surrogate id.
func (k ContentKey) IsNumeric() bool { return k.numeric }

// ID returns the numeric id; only meaningful when IsNumeric is true.
func (k ContentKey) ID() int64 { return k.id }

// Slug returns the slug; only meaningful when IsNumeric is false.
func (k ContentKey) Slug() string { return k.slug }

// String returns the key as it appeared on the wire, for log messages.
func (k ContentKey) String() string {
	if k.numeric {
		return strconv.FormatInt(k.id, 10)
	}
	return k.slug
}

// MediaFile is stored metadata for an uploaded asset. Transformation and
// storage of the bytes themselves belong to an external collaborator; the
// backend only tracks and deletes entries.
type MediaFile struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	UploadedAt   string `json:"uploadedAt"`
}
