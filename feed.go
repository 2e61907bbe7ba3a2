package folio

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// RSS 2.0 document shape. Rendering goes through encoding/xml so authored
// text with reserved markup characters is always escaped.
type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// buildFeed synthesizes the syndication feed from the published corpus.
// Posts are expected in publish-time-descending order (the store's list
// order); ties on equal timestamps keep input order. now becomes
// lastBuildDate — synthesis time, not the newest item time.
func buildFeed(cfg SiteConfig, posts []BlogPost, now time.Time) rssXML {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		categories := make([]string, 0, 1+len(p.Tags))
		if p.Category != "" {
			categories = append(categories, p.Category)
		}
		categories = append(categories, p.Tags...)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        BuildURL(cfg.URL, "blogs", p.Slug),
			Description: p.Excerpt,
			Author:      p.Author,
			Categories:  categories,
			PubDate:     p.PublishedAt.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: "folio-post-" + strconv.FormatInt(p.ID, 10)},
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         cfg.Name,
			Link:          BuildURL(cfg.URL, "blog", "feed.xml"),
			Description:   cfg.Description,
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         items,
		},
	}
}

func (a *App) renderFeed(c echo.Context, posts []BlogPost) error {
	feed := buildFeed(a.Config, posts, a.now())
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
