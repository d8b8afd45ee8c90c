package analytics

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"versare/common"
)

const (
	visitorCookie = "versare_visitor_id"
	// visitas do mesmo visitante ao mesmo imóvel dentro da janela contam uma vez
	viewThrottle = 30 * time.Minute
)

// PropertyView representa uma visita à página de um imóvel
type PropertyView struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	VisitorID  string    `gorm:"not null;index" json:"visitor_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// PropertyViews é a contagem de visitas de um imóvel
type PropertyViews struct {
	PropertyID uint   `json:"property_id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	Views      int64  `json:"views"`
}

type AnalyticsModule struct {
	db *gorm.DB
}

// NewAnalyticsModule migra a tabela de visitas. Devolve nil se não for possível;
// todos os métodos aceitam receptor nil e viram no-op.
func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		common.Logger.Warn("Analytics sem banco, tracking desabilitado")
		return nil
	}

	if err := db.AutoMigrate(&PropertyView{}); err != nil {
		common.Logger.WithError(err).Error("Erro ao migrar tabela property_views")
		return nil
	}

	return &AnalyticsModule{db: db}
}

// TrackView identifica o visitante pelo cookie e grava a visita em segundo plano.
func (a *AnalyticsModule) TrackView(c *gin.Context, propertyID uint) {
	if a == nil || a.db == nil {
		return
	}

	visitorID := a.visitorID(c)

	go func() {
		if _, err := a.RecordView(context.Background(), propertyID, visitorID, time.Now()); err != nil {
			common.Logger.WithError(err).WithField("property_id", propertyID).Warn("Erro ao registrar visita")
		}
	}()
}

// RecordView grava a visita se o visitante não viu o imóvel na última meia hora.
// Devolve true quando a visita foi gravada.
func (a *AnalyticsModule) RecordView(ctx context.Context, propertyID uint, visitorID string, at time.Time) (bool, error) {
	if a == nil || a.db == nil {
		return false, nil
	}

	db := a.db.WithContext(ctx)

	var recent int64
	err := db.Model(&PropertyView{}).
		Where("visitor_id = ? AND property_id = ? AND created_at > ?", visitorID, propertyID, at.Add(-viewThrottle)).
		Count(&recent).Error
	if err != nil {
		return false, err
	}
	if recent > 0 {
		return false, nil
	}

	view := PropertyView{PropertyID: propertyID, VisitorID: visitorID, CreatedAt: at}
	if err := db.Create(&view).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (a *AnalyticsModule) visitorID(c *gin.Context) string {
	if cookie, err := c.Cookie(visitorCookie); err == nil && cookie != "" {
		return cookie
	}

	id := uuid.NewString()
	// 2 anos
	c.SetCookie(visitorCookie, id, 60*60*24*365*2, "/", "", false, true)
	return id
}

// ViewCount devolve o total de visitas registradas de um imóvel
func (a *AnalyticsModule) ViewCount(ctx context.Context, propertyID uint) (int64, error) {
	if a == nil || a.db == nil {
		return 0, nil
	}

	var count int64
	err := a.db.WithContext(ctx).Model(&PropertyView{}).Where("property_id = ?", propertyID).Count(&count).Error
	return count, err
}

// TopProperties devolve os imóveis mais visitados dos últimos N dias.
// Imóveis já removidos não aparecem.
func (a *AnalyticsModule) TopProperties(ctx context.Context, days int, limit int) ([]PropertyViews, error) {
	results := []PropertyViews{}
	if a == nil || a.db == nil {
		return results, nil
	}

	since := time.Now().AddDate(0, 0, -days)

	err := a.db.WithContext(ctx).Model(&PropertyView{}).
		Select("property_views.property_id, properties.code, properties.title, COUNT(*) AS views").
		Joins("JOIN properties ON properties.id = property_views.property_id").
		Where("property_views.created_at >= ?", since).
		Group("property_views.property_id, properties.code, properties.title").
		Order("views DESC, property_views.property_id").
		Limit(limit).
		Scan(&results).Error
	return results, err
}
