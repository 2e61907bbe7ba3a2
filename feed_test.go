package folio

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFeedOrdersNewestFirst(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com", Description: "desc"}
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t2.Add(24 * time.Hour)

	// The store hands posts over newest-first; the feed must preserve that.
	posts := []BlogPost{
		{ID: 3, Slug: "third", Title: "Third", PublishedAt: t3},
		{ID: 2, Slug: "second", Title: "Second", PublishedAt: t2},
		{ID: 1, Slug: "first", Title: "First", PublishedAt: t1},
	}

	feed := buildFeed(cfg, posts, time.Now())
	require.Len(t, feed.Channel.Items, 3)
	assert.Equal(t, "Third", feed.Channel.Items[0].Title)
	assert.Equal(t, "Second", feed.Channel.Items[1].Title)
	assert.Equal(t, "First", feed.Channel.Items[2].Title)
}

func TestBuildFeedFields(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com", Description: "desc"}
	published := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	feed := buildFeed(cfg, []BlogPost{{
		ID:          7,
		Slug:        "hello-world",
		Title:       "Hello World",
		Excerpt:     "An excerpt",
		Author:      "jane",
		Category:    "engineering",
		Tags:        []string{"go", "web"},
		PublishedAt: published,
	}}, now)

	// lastBuildDate is synthesis time, not the newest item time.
	assert.Equal(t, now.Format(time.RFC1123Z), feed.Channel.LastBuildDate)

	require.Len(t, feed.Channel.Items, 1)
	item := feed.Channel.Items[0]
	assert.Equal(t, "https://example.com/blogs/hello-world", item.Link)
	assert.Equal(t, "An excerpt", item.Description)
	assert.Equal(t, "jane", item.Author)
	assert.Equal(t, []string{"engineering", "go", "web"}, item.Categories)
	assert.Equal(t, published.Format(time.RFC1123Z), item.PubDate)
	assert.Equal(t, "folio-post-7", item.GUID.Value)
	assert.False(t, item.GUID.IsPermaLink)
}

func TestFeedEscapesReservedMarkup(t *testing.T) {
	cfg := SiteConfig{Name: "Site", URL: "https://example.com"}
	feed := buildFeed(cfg, []BlogPost{{
		ID:          1,
		Slug:        "markup",
		Title:       `Generics <T> & "constraints"`,
		Excerpt:     "a < b && c > d",
		PublishedAt: time.Now(),
	}}, time.Now())

	out, err := xml.Marshal(feed)
	require.NoError(t, err)
	body := string(out)
	assert.NotContains(t, body, "<T>")
	assert.Contains(t, body, "&lt;T&gt;")
	assert.Contains(t, body, "&amp;")
}
