package folio

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RouteEntry is one sitemap URL with its change metadata. Entries are built
// per request and never persisted.
type RouteEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// BuildSitemap enumerates the site's public routes in a fixed order: the
// configured static pages first, then one entry per published post, then one
// entry per configured service offering. Posts may be nil when the dynamic
// source is unavailable — the static and service subsets still come back.
func BuildSitemap(cfg SiteConfig, posts []BlogPost, now time.Time) []RouteEntry {
	entries := make([]RouteEntry, 0, len(cfg.StaticRoutes)+len(posts)+len(cfg.Services))
	for _, r := range cfg.StaticRoutes {
		entries = append(entries, RouteEntry{
			Loc:        BuildURL(cfg.URL, strings.TrimPrefix(r.Path, "/")),
			LastMod:    now,
			ChangeFreq: r.ChangeFreq,
			Priority:   r.Priority,
		})
	}
	for _, p := range posts {
		entries = append(entries, RouteEntry{
			Loc:        BuildURL(cfg.URL, "blogs", p.Slug),
			LastMod:    p.LastModified(),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}
	for _, svc := range cfg.Services {
		slug := Slugify(svc.Title)
		if slug == "" {
			continue
		}
		entries = append(entries, RouteEntry{
			Loc:        BuildURL(cfg.URL, "services", slug),
			LastMod:    now,
			ChangeFreq: "monthly",
			Priority:   0.7,
		})
	}
	return entries
}

func renderSitemap(c echo.Context, entries []RouteEntry) error {
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, sitemapURL{
			Loc:        e.Loc,
			LastMod:    e.LastMod.Format("2006-01-02"),
			ChangeFreq: e.ChangeFreq,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		})
	}
	doc := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(doc)
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}
