package dashboard

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"versare/analytics"
	"versare/common"
	"versare/models"
)

const (
	recentLimit = 5
	topDays     = 30
	topLimit    = 5
)

// ViewRanking devolve os imóveis mais visitados no período.
type ViewRanking interface {
	TopProperties(ctx context.Context, days int, limit int) ([]analytics.PropertyViews, error)
}

type Stats struct {
	TotalProperties  int64                     `json:"total_properties"`
	ActiveProperties int64                     `json:"active_properties"`
	SoldProperties   int64                     `json:"sold_properties"`
	TotalContacts    int64                     `json:"total_contacts"`
	NewContacts      int64                     `json:"new_contacts"`
	TotalWhatsapp    int64                     `json:"total_whatsapp"`
	UnreadWhatsapp   int64                     `json:"unread_whatsapp"`
	RecentContacts   []models.Contact          `json:"recent_contacts"`
	RecentWhatsapp   []models.WhatsappMessage  `json:"recent_whatsapp"`
	TopProperties    []analytics.PropertyViews `json:"top_properties"`
}

type DashboardModule struct {
	db    *gorm.DB
	views ViewRanking
}

func NewDashboardModule(db *gorm.DB, views ViewRanking) *DashboardModule {
	return &DashboardModule{db: db, views: views}
}

func (m *DashboardModule) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/dashboard-stats", m.stats)
	admin.GET("/dashboard", m.stats)
}

func (m *DashboardModule) stats(c *gin.Context) {
	stats, err := m.Stats(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Stats dispara as consultas em paralelo; qualquer erro derruba o resultado todo.
func (m *DashboardModule) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		RecentContacts: []models.Contact{},
		RecentWhatsapp: []models.WhatsappMessage{},
		TopProperties:  []analytics.PropertyViews{},
	}

	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, model interface{}, query string, args ...interface{}) {
		g.Go(func() error {
			q := m.db.WithContext(gctx).Model(model)
			if query != "" {
				q = q.Where(query, args...)
			}
			return q.Count(dst).Error
		})
	}

	count(&stats.TotalProperties, &models.Property{}, "")
	count(&stats.ActiveProperties, &models.Property{}, "status = ?", models.PropertyStatusActive)
	count(&stats.SoldProperties, &models.Property{}, "status = ?", models.PropertyStatusSold)
	count(&stats.TotalContacts, &models.Contact{}, "")
	count(&stats.NewContacts, &models.Contact{}, "status = ?", models.LeadStatusNew)
	count(&stats.TotalWhatsapp, &models.WhatsappMessage{}, "")
	count(&stats.UnreadWhatsapp, &models.WhatsappMessage{}, "viewed = ?", false)

	g.Go(func() error {
		return m.db.WithContext(gctx).Order("created_at DESC, id DESC").Limit(recentLimit).
			Find(&stats.RecentContacts).Error
	})
	g.Go(func() error {
		return m.db.WithContext(gctx).Order("created_at DESC, id DESC").Limit(recentLimit).
			Find(&stats.RecentWhatsapp).Error
	})

	if m.views != nil {
		g.Go(func() error {
			top, err := m.views.TopProperties(gctx, topDays, topLimit)
			if err != nil {
				return err
			}
			if top != nil {
				stats.TopProperties = top
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
