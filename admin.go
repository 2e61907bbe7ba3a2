package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// blogPayload is the request body for create/update operations. The slug is
// deliberately absent: it is derived from the title at creation time and
// immutable afterwards.
type blogPayload struct {
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Author    string   `json:"author"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Published bool     `json:"published"`
}

func (p blogPayload) toPost(author string) BlogPost {
	if p.Author == "" {
		p.Author = author
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, strings.ToLower(t))
		}
	}
	return BlogPost{
		Title:     strings.TrimSpace(p.Title),
		Excerpt:   p.Excerpt,
		Content:   p.Content,
		Author:    p.Author,
		Category:  strings.TrimSpace(p.Category),
		Tags:      tags,
		Published: p.Published,
	}
}

type loginPayload struct {
	Password string `json:"password"`
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return respondError(c, http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	var body loginPayload
	if err := c.Bind(&body); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(a.Config.AdminPassword)) != 1 {
		return respondError(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err := setAdminSession(c, a.Config.Author); err != nil {
		return err
	}
	return respondOK(c, map[string]any{"role": string(RoleAdmin)})
}

func handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return respondOK(c, nil)
}

// handleAdminListBlogs returns every post, drafts included.
func (a *App) handleAdminListBlogs(c echo.Context) error {
	posts, err := a.Store.ListPosts(false)
	if err != nil {
		c.Logger().Errorf("admin list blogs: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to load blogs")
	}
	if posts == nil {
		posts = []BlogPost{}
	}
	return respondOK(c, map[string]any{"blogs": posts})
}

func (a *App) handleCreateBlog(c echo.Context) error {
	var body blogPayload
	if err := c.Bind(&body); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	post := body.toPost(a.Config.Author)
	if post.Title == "" {
		return respondError(c, http.StatusBadRequest, "title is required")
	}
	created, err := a.Store.CreatePost(post)
	if errors.Is(err, ErrEmptySlug) {
		return respondError(c, http.StatusBadRequest, "title must contain at least one letter or digit")
	}
	if err != nil {
		c.Logger().Errorf("create blog: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to create blog")
	}
	a.Cache.Invalidate()
	return respondOK(c, map[string]any{"blog": created})
}

func (a *App) handleUpdateBlog(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid blog id")
	}
	var body blogPayload
	if err := c.Bind(&body); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	post := body.toPost(a.Config.Author)
	if post.Title == "" {
		return respondError(c, http.StatusBadRequest, "title is required")
	}
	updated, err := a.Store.UpdatePost(id, post)
	if errors.Is(err, ErrNotFound) {
		return respondError(c, http.StatusNotFound, "blog not found")
	}
	if err != nil {
		c.Logger().Errorf("update blog %d: %v", id, err)
		return respondError(c, http.StatusInternalServerError, "failed to update blog")
	}
	a.Cache.Invalidate()
	return respondOK(c, map[string]any{"blog": updated})
}

func (a *App) handleDeleteBlog(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid blog id")
	}
	if err := a.Store.DeletePost(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respondError(c, http.StatusNotFound, "blog not found")
		}
		c.Logger().Errorf("delete blog %d: %v", id, err)
		return respondError(c, http.StatusInternalServerError, "failed to delete blog")
	}
	a.Cache.Invalidate()
	return respondOK(c, nil)
}

func (a *App) handleListMedia(c echo.Context) error {
	files, err := a.Store.ListMedia()
	if err != nil {
		c.Logger().Errorf("list media: %v", err)
		return respondError(c, http.StatusInternalServerError, "failed to load media")
	}
	if files == nil {
		files = []MediaFile{}
	}
	return respondOK(c, map[string]any{"media": files})
}

// handleDeleteMedia removes a media record and its file. The filename is
// confined to the media directory; a record miss is a 404, a missing file on
// disk is not an error (it may already be gone).
func (a *App) handleDeleteMedia(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return respondError(c, http.StatusBadRequest, "filename is required")
	}
	if err := a.Store.DeleteMedia(filename); err != nil {
		if errors.Is(err, ErrNotFound) {
			return respondError(c, http.StatusNotFound, "media not found")
		}
		c.Logger().Errorf("delete media %q: %v", filename, err)
		return respondError(c, http.StatusInternalServerError, "failed to delete media")
	}
	_ = os.Remove(filepath.Join(a.mediaDir, filename))
	return respondOK(c, nil)
}
