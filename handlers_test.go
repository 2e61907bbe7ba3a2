package folio

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *App {
	t.Helper()
	store := setupTestStore(t)
	return &App{
		Config: testConfig(),
		Echo:   echo.New(),
		Store:  store,
		Cache:  NewContentCache(store, time.Minute),
	}
}

func jsonRequest(a *App, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return a.Echo.NewContext(req, rec), rec
}

func TestViewEndpointBySlugAndID(t *testing.T) {
	a := testApp(t)
	created := mustCreate(t, a.Store, BlogPost{Title: "Counted Post", Published: true})

	c, rec := jsonRequest(a, http.MethodPost, "/blogs/counted-post/view", "")
	c.SetParamNames("key")
	c.SetParamValues("counted-post")
	require.NoError(t, a.handleIncrementView(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["viewCount"])

	// Same post addressed by surrogate id keeps the same counter.
	c, rec = jsonRequest(a, http.MethodPost, "/blogs/1/view", "")
	c.SetParamNames("key")
	c.SetParamValues(jsonNumber(created.ID))
	require.NoError(t, a.handleIncrementView(c))
	body = decodeEnvelope(t, rec)
	assert.Equal(t, float64(2), body["viewCount"])
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestViewEndpointNotFound(t *testing.T) {
	a := testApp(t)
	c, rec := jsonRequest(a, http.MethodPost, "/blogs/ghost/view", "")
	c.SetParamNames("key")
	c.SetParamValues("ghost")
	require.NoError(t, a.handleIncrementView(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestCategoriesEndpoint(t *testing.T) {
	a := testApp(t)
	mustCreate(t, a.Store, BlogPost{Title: "A", Category: "web", Published: true})
	mustCreate(t, a.Store, BlogPost{Title: "B", Category: "api", Published: true})

	c, rec := jsonRequest(a, http.MethodGet, "/blogs/categories", "")
	require.NoError(t, a.handleCategories(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"api", "web"}, body["categories"])
}

func TestTagsEndpoint(t *testing.T) {
	a := testApp(t)
	mustCreate(t, a.Store, BlogPost{Title: "A", Tags: []string{"go", "web"}, Published: true})

	c, rec := jsonRequest(a, http.MethodGet, "/blogs/tags", "")
	require.NoError(t, a.handleTags(c))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"go", "web"}, body["tags"])
}

func TestTagsEndpointEmptyCorpus(t *testing.T) {
	a := testApp(t)
	c, rec := jsonRequest(a, http.MethodGet, "/blogs/tags", "")
	require.NoError(t, a.handleTags(c))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["tags"])
}

func TestFeedEndpoint(t *testing.T) {
	a := testApp(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mustCreate(t, a.Store, BlogPost{Title: "Older Post", Published: true, PublishedAt: base})
	mustCreate(t, a.Store, BlogPost{Title: "Newer Post", Published: true, PublishedAt: base.Add(time.Hour)})

	c, rec := jsonRequest(a, http.MethodGet, "/blog/feed.xml", "")
	require.NoError(t, a.handleFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/xml")

	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "lastBuildDate")
	newer := strings.Index(body, "Newer Post")
	older := strings.Index(body, "Older Post")
	require.GreaterOrEqual(t, newer, 0)
	require.GreaterOrEqual(t, older, 0)
	assert.Less(t, newer, older, "feed must be newest first")
}

func TestFeedEndpointStoreFailure(t *testing.T) {
	a := testApp(t)

	// Unlike the sitemap, the feed has no degraded form: a repository
	// failure must surface as a 500 envelope, never a partial document.
	require.NoError(t, a.Store.Close())

	c, rec := jsonRequest(a, http.MethodGet, "/blog/feed.xml", "")
	require.NoError(t, a.handleFeed(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
}

func TestGetBlogEndpoint(t *testing.T) {
	a := testApp(t)
	mustCreate(t, a.Store, BlogPost{Title: "Readable", Excerpt: "short", Published: true})

	c, rec := jsonRequest(a, http.MethodGet, "/blogs/readable", "")
	c.SetParamNames("key")
	c.SetParamValues("readable")
	require.NoError(t, a.handleGetBlog(c))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	blog := body["blog"].(map[string]any)
	assert.Equal(t, "readable", blog["slug"])
}

func TestCreateBlogEndpoint(t *testing.T) {
	a := testApp(t)

	c, rec := jsonRequest(a, http.MethodPost, "/blogs",
		`{"title":"Brand New Post","excerpt":"e","category":"web","tags":["Go "," web"],"published":true}`)
	require.NoError(t, a.handleCreateBlog(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, true, body["success"])
	blog := body["blog"].(map[string]any)
	assert.Equal(t, "brand-new-post", blog["slug"])
	assert.Equal(t, []any{"go", "web"}, blog["tags"])
}

func TestCreateBlogRequiresTitle(t *testing.T) {
	a := testApp(t)
	c, rec := jsonRequest(a, http.MethodPost, "/blogs", `{"content":"body only"}`)
	require.NoError(t, a.handleCreateBlog(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBlogEndpointNotFound(t *testing.T) {
	a := testApp(t)
	c, rec := jsonRequest(a, http.MethodPut, "/blogs/99", `{"title":"New Title"}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, a.handleUpdateBlog(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBlogEndpoint(t *testing.T) {
	a := testApp(t)
	created := mustCreate(t, a.Store, BlogPost{Title: "Doomed", Published: true})

	c, rec := jsonRequest(a, http.MethodDelete, "/blogs/1", "")
	c.SetParamNames("id")
	c.SetParamValues(jsonNumber(created.ID))
	require.NoError(t, a.handleDeleteBlog(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err := a.Store.GetPostAny(NumericKey(created.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}
