package folio

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleIncrementView bumps the view counter for the post addressed by the
// path segment, which may be a numeric id or a slug. A miss is a 404 and
// never creates a post.
func (a *App) handleIncrementView(c echo.Context) error {
	key := ParseContentKey(c.Param("key"))
	views, err := a.Store.IncrementViews(key)
	if errors.Is(err, ErrNotFound) {
		return respondError(c, http.StatusNotFound, "blog not found")
	}
	if err != nil {
		c.Logger().Errorf("increment views: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to record view")
	}
	return respondOK(c, map[string]any{"viewCount": views})
}

func (a *App) handleListBlogs(c echo.Context) error {
	posts, err := a.Cache.Posts()
	if err != nil {
		c.Logger().Errorf("list blogs: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to load blogs")
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	return respondOK(c, map[string]any{"blogs": posts})
}

func (a *App) handleGetBlog(c echo.Context) error {
	key := ParseContentKey(c.Param("key"))
	post, err := a.Store.GetPost(key)
	if errors.Is(err, ErrNotFound) {
		return respondError(c, http.StatusNotFound, "blog not found")
	}
	if err != nil {
		c.Logger().Errorf("get blog %s: %v", key, err)
		return respondError(c, http.StatusInternalServerError, "failed to load blog")
	}
	return respondOK(c, map[string]any{"blog": post})
}

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Cache.Categories()
	if err != nil {
		c.Logger().Errorf("list categories: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to load categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return respondOK(c, map[string]any{"categories": categories})
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Cache.Tags()
	if err != nil {
		c.Logger().Errorf("list tags: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to load tags")
	}
	if tags == nil {
		tags = []string{}
	}
	return respondOK(c, map[string]any{"tags": tags})
}

// handleFeed renders the syndication feed. There is no meaningful static
// fallback for a feed of dynamic content, so a repository failure surfaces
// as a top-level error.
func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Posts()
	if err != nil {
		c.Logger().Errorf("feed: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to build feed")
	}
	return a.renderFeed(c, posts)
}

// handleSitemap renders the sitemap. When the content store is unreachable
// the sitemap degrades to the static and service routes instead of failing.
func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.Posts()
	if err != nil {
		c.Logger().Warnf("sitemap degraded to static routes: %v", err)
		posts = nil
	}
	return renderSitemap(c, BuildSitemap(a.Config, posts, a.now()))
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin\n\nSitemap: %s/sitemap\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}
