package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"versare/analytics"
	"versare/common"
	"versare/database"
	"versare/models"
)

type failingRanking struct{}

func (failingRanking) TopProperties(ctx context.Context, days int, limit int) ([]analytics.PropertyViews, error) {
	return nil, errors.New("ranking indisponível")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := common.OpenSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func seedLeads(t *testing.T, db *gorm.DB) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	statuses := []string{models.PropertyStatusActive, models.PropertyStatusActive, models.PropertyStatusSold, models.PropertyStatusInactive}
	for i, status := range statuses {
		require.NoError(t, db.Create(&models.Property{
			Code: fmt.Sprintf("P%d", i), Title: "Imóvel", Type: models.PropertyTypeSale,
			PropertyType: "casa", Price: 1, Status: status, City: "São Paulo", Neighborhood: "Moema",
		}).Error)
	}

	for i := 0; i < 7; i++ {
		status := models.LeadStatusNew
		if i%2 == 1 {
			status = models.LeadStatusResponded
		}
		require.NoError(t, db.Create(&models.Contact{
			Name: fmt.Sprintf("Contato %d", i), Email: "c@example.com", Phone: "1", Message: "oi",
			Status: status, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.WhatsappMessage{
			Name: "W", Phone: "1", Message: "oi", PropertyTitle: "T", PropertyCode: "P0",
			PropertyType: "venda", PropertyPrice: 1, Status: models.LeadStatusNew, Viewed: i == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	seedLeads(t, db)

	views := analytics.NewAnalyticsModule(db)
	_, err := views.RecordView(context.Background(), 1, "v1", time.Now())
	require.NoError(t, err)

	stats, err := NewDashboardModule(db, views).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalProperties)
	assert.Equal(t, int64(2), stats.ActiveProperties)
	assert.Equal(t, int64(1), stats.SoldProperties)
	assert.Equal(t, int64(7), stats.TotalContacts)
	assert.Equal(t, int64(4), stats.NewContacts)
	assert.Equal(t, int64(3), stats.TotalWhatsapp)
	assert.Equal(t, int64(2), stats.UnreadWhatsapp)

	require.Len(t, stats.RecentContacts, 5)
	assert.Equal(t, "Contato 6", stats.RecentContacts[0].Name)
	assert.Len(t, stats.RecentWhatsapp, 3)

	require.Len(t, stats.TopProperties, 1)
	assert.Equal(t, "P0", stats.TopProperties[0].Code)
}

func TestStats_EmptyArrays(t *testing.T) {
	db := setupTestDB(t)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewDashboardModule(db, nil).RegisterRoutes(router.Group("/api/admin"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/admin/dashboard-stats", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{}, body["recent_contacts"])
	assert.Equal(t, []interface{}{}, body["recent_whatsapp"])
	assert.Equal(t, []interface{}{}, body["top_properties"])
	assert.Equal(t, float64(0), body["total_properties"])
}

func TestStats_FailureFailsAggregate(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewDashboardModule(db, failingRanking{}).Stats(context.Background())
	require.Error(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewDashboardModule(db, failingRanking{}).RegisterRoutes(router.Group("/api/admin"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/admin/dashboard-stats", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
