package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ETagMiddleware())

	router.GET("/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"site_name": "Versare"})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Imóvel não encontrado"})
	})
	router.GET("/text", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/json", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return router
}

func do(router *gin.Engine, method, path, ifNoneMatch string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestETag_FirstRequestThenNotModified(t *testing.T) {
	router := setupTestRouter()

	w := do(router, "GET", "/json", "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.JSONEq(t, `{"site_name":"Versare"}`, w.Body.String())

	w = do(router, "GET", "/json", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(router, "GET", "/json", `W/`+etag+`, "outra"`)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = do(router, "GET", "/json", `"outra"`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, etag, w.Header().Get("ETag"))
}

func TestETag_SkipsErrorsAndNonJSON(t *testing.T) {
	router := setupTestRouter()

	w := do(router, "GET", "/missing", "*")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
	assert.Contains(t, w.Body.String(), "Imóvel não encontrado")

	w = do(router, "GET", "/text", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Empty(t, w.Header().Get("ETag"))

	w = do(router, "POST", "/json", "*")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
}

func TestMatches(t *testing.T) {
	etag := ETag([]byte("abc"))

	assert.True(t, Matches(etag, etag))
	assert.True(t, Matches("*", etag))
	assert.False(t, Matches("", etag))
	assert.False(t, Matches(ETag([]byte("abd")), etag))
}
