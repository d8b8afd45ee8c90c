package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"versare/common"
	"versare/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := common.OpenSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db))
	return db
}

func TestSeed_AdminAndSampleData(t *testing.T) {
	db := setupTestDB(t)

	err := Seed(db, SeedOptions{AdminPassword: "admin123", SampleData: true})
	require.NoError(t, err)

	var admin models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, "Administrador", admin.Name)
	assert.Equal(t, "admin", admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))

	var count int64
	db.Model(&models.Property{}).Count(&count)
	assert.Equal(t, int64(6), count)

	var unlinked int64
	db.Model(&models.Property{}).Where("city_id IS NULL OR neighborhood_id IS NULL").Count(&unlinked)
	assert.Equal(t, int64(0), unlinked)

	var moema models.Property
	require.NoError(t, db.Where("code = ?", "VSR002").First(&moema).Error)
	var n models.Neighborhood
	require.NoError(t, db.First(&n, *moema.NeighborhoodID).Error)
	assert.Equal(t, "Moema", n.Name)
}

func TestSeed_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	opts := SeedOptions{AdminPassword: "admin123", SampleData: true}

	require.NoError(t, Seed(db, opts))
	require.NoError(t, Seed(db, opts))

	var users, properties int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Property{}).Count(&properties)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(6), properties)
}

func TestSeed_WithoutSampleData(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, SeedOptions{AdminPassword: "x", SampleData: false}))

	var count int64
	db.Model(&models.Property{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBackfillLocations_MatchesCityScope(t *testing.T) {
	db := setupTestDB(t)

	sp := models.State{Name: "São Paulo", Abbreviation: "SP"}
	db.Create(&sp)
	campinas := models.City{Name: "Campinas", StateID: sp.ID}
	santos := models.City{Name: "Santos", StateID: sp.ID}
	db.Create(&campinas)
	db.Create(&santos)
	centroSantos := models.Neighborhood{Name: "Centro", CityID: santos.ID}
	centroCampinas := models.Neighborhood{Name: "Centro", CityID: campinas.ID}
	db.Create(&centroSantos)
	db.Create(&centroCampinas)

	p := models.Property{Code: "A1", Title: "Casa", Type: "venda", PropertyType: "casa", Price: 1, Status: "ativo", Neighborhood: "Centro", City: "Campinas"}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, BackfillLocations(db))

	var got models.Property
	db.First(&got, p.ID)
	require.NotNil(t, got.CityID)
	require.NotNil(t, got.NeighborhoodID)
	assert.Equal(t, campinas.ID, *got.CityID)
	assert.Equal(t, centroCampinas.ID, *got.NeighborhoodID)
}

func TestBackfillLocations_UnknownCityLeavesNeighborhood(t *testing.T) {
	db := setupTestDB(t)

	sp := models.State{Name: "São Paulo", Abbreviation: "SP"}
	db.Create(&sp)
	santos := models.City{Name: "Santos", StateID: sp.ID}
	db.Create(&santos)
	db.Create(&models.Neighborhood{Name: "Centro", CityID: santos.ID})

	p := models.Property{Code: "A2", Title: "Casa", Type: "venda", PropertyType: "casa", Price: 1, Status: "ativo", Neighborhood: "Centro", City: "Curitiba"}
	require.NoError(t, db.Create(&p).Error)

	require.NoError(t, BackfillLocations(db))

	var got models.Property
	db.First(&got, p.ID)
	assert.Nil(t, got.CityID)
	assert.Nil(t, got.NeighborhoodID)
}
