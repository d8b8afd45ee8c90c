package site

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

// SiteModule serve o site público, o painel e as imagens enviadas.
type SiteModule struct {
	db         *gorm.DB
	siteURL    string
	publicDir  string
	uploadsDir string
	uploadsURL string
}

func NewSiteModule(db *gorm.DB, siteURL, publicDir, uploadsDir, uploadsURL string) *SiteModule {
	return &SiteModule{
		db:         db,
		siteURL:    strings.TrimSuffix(siteURL, "/"),
		publicDir:  publicDir,
		uploadsDir: uploadsDir,
		uploadsURL: uploadsURL,
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.Static(s.uploadsURL, s.uploadsDir)

	router.GET("/", s.index)
	router.GET("/admin", s.admin)
	router.GET("/sitemap.xml", s.sitemap)

	router.NoRoute(s.static)
}

func (s *SiteModule) index(c *gin.Context) {
	c.File(filepath.Join(s.publicDir, "index.html"))
}

func (s *SiteModule) admin(c *gin.Context) {
	c.File(filepath.Join(s.publicDir, "admin", "index.html"))
}

// static serve os arquivos do site. Rotas /api desconhecidas respondem JSON.
func (s *SiteModule) static(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || path == "/api" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
		return
	}

	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}

	file := filepath.Join(s.publicDir, filepath.FromSlash(filepath.Clean("/"+path)))
	info, err := os.Stat(file)
	if err == nil && info.IsDir() {
		file = filepath.Join(file, "index.html")
		info, err = os.Stat(file)
	}
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}

	c.File(file)
}

func (s *SiteModule) sitemap(c *gin.Context) {
	var properties []models.Property
	err := s.db.WithContext(c.Request.Context()).
		Select("id", "updated_at").
		Where("status = ?", models.PropertyStatusActive).
		Order("id").
		Find(&properties).Error
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	sitemap.WriteString("  <url>\n")
	sitemap.WriteString("    <loc>" + s.siteURL + "/</loc>\n")
	sitemap.WriteString("    <changefreq>daily</changefreq>\n")
	sitemap.WriteString("    <priority>1.0</priority>\n")
	sitemap.WriteString("  </url>\n")

	for _, p := range properties {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + s.siteURL + "/details.html?id=" + strconv.FormatUint(uint64(p.ID), 10) + "</loc>\n")
		sitemap.WriteString("    <lastmod>" + p.UpdatedAt.Format(time.RFC3339) + "</lastmod>\n")
		sitemap.WriteString("    <changefreq>weekly</changefreq>\n")
		sitemap.WriteString("    <priority>0.8</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}
