package site

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versare/common"
	"versare/database"
	"versare/models"
)

func setupTestRouter(t *testing.T) (*gin.Engine, string) {
	db, err := common.OpenSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	for _, p := range []models.Property{
		{Code: "A", Title: "A", Type: models.PropertyTypeSale, PropertyType: "casa", Price: 1, Status: models.PropertyStatusActive, City: "X", Neighborhood: "Y"},
		{Code: "B", Title: "B", Type: models.PropertyTypeSale, PropertyType: "casa", Price: 1, Status: models.PropertyStatusSold, City: "X", Neighborhood: "Y"},
	} {
		p := p
		require.NoError(t, db.Create(&p).Error)
	}

	public := t.TempDir()
	uploads := filepath.Join(public, "assets", "images", "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(public, "admin"), 0755))
	require.NoError(t, os.MkdirAll(uploads, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>site</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(public, "details.html"), []byte("<h1>detalhes</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(public, "admin", "index.html"), []byte("<h1>painel</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "foto.jpg"), []byte("jpg"), 0644))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSiteModule(db, "https://versare.com.br/", public, uploads, "/assets/images/uploads").RegisterRoutes(router)
	return router, public
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStaticPages(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(router, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "site")

	w = get(router, "/admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "painel")

	w = get(router, "/details.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "detalhes")

	w = get(router, "/assets/images/uploads/foto.jpg")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, get(router, "/nao-existe.html").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/../../etc/passwd").Code)
}

func TestUnknownAPIRoute(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(router, "/api/nada")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Rota não encontrada"}`, w.Body.String())
}

func TestSitemap_ActivePropertiesOnly(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := get(router, "/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, w.Body.String(), "<loc>https://versare.com.br/</loc>")
	assert.Contains(t, w.Body.String(), "https://versare.com.br/details.html?id=1")
	assert.NotContains(t, w.Body.String(), "details.html?id=2")
}
