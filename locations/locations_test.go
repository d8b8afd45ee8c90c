package locations

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"versare/common"
	"versare/database"
	"versare/models"
	"versare/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := common.OpenSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db := setupTestDB(t)
	files := storage.NewStore(t.TempDir(), "/assets/images/uploads")
	return NewService(db, files), db
}

func setupTestRouter(service *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewLocationsModule(service).RegisterRoutes(api, api.Group("/admin"))
	return router
}

func createTestProperty(t *testing.T, db *gorm.DB, code, city, neighborhood string) *models.Property {
	p := &models.Property{
		Code:         code,
		Title:        "Imóvel " + code,
		Type:         models.PropertyTypeSale,
		PropertyType: "apartamento",
		Price:        100000,
		Status:       models.PropertyStatusActive,
		City:         city,
		Neighborhood: neighborhood,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateState_DuplicateReturnsConflict(t *testing.T) {
	service, _ := setupTestService(t)
	router := setupTestRouter(service)

	w := doJSON(router, "POST", "/api/admin/states", `{"name":"São Paulo","abbreviation":"SP"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.NotZero(t, state["id"])
	assert.Equal(t, "São Paulo", state["name"])
	assert.Equal(t, "SP", state["abbreviation"])

	w = doJSON(router, "POST", "/api/admin/states", `{"name":"São Paulo","abbreviation":"SP"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Já existe um estado")
}

func TestCreateState_Validation(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	_, err := service.CreateState(ctx, StateInput{Name: "Paraná"})
	assert.Equal(t, common.KindBadRequest, common.KindOf(err))

	state, err := service.CreateState(ctx, StateInput{Name: "Paraná", Abbreviation: " pr "})
	require.NoError(t, err)
	assert.Equal(t, "PR", state.Abbreviation)

	// sigla repetida com outro nome também conflita
	_, err = service.CreateState(ctx, StateInput{Name: "Outro", Abbreviation: "PR"})
	assert.Equal(t, common.KindConflict, common.KindOf(err))
}

func TestUpdateState_KeepsOwnName(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	service.CreateState(ctx, StateInput{Name: "Rio de Janeiro", Abbreviation: "RJ"})

	updated, err := service.UpdateState(ctx, sp.ID, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	require.NoError(t, err)
	assert.Equal(t, sp.ID, updated.ID)

	_, err = service.UpdateState(ctx, sp.ID, StateInput{Name: "São Paulo", Abbreviation: "RJ"})
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	_, err = service.UpdateState(ctx, 999, StateInput{Name: "X", Abbreviation: "XX"})
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestCity_DuplicatePerState(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	mg, _ := service.CreateState(ctx, StateInput{Name: "Minas Gerais", Abbreviation: "MG"})

	_, err := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	require.NoError(t, err)

	_, err = service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	// mesmo nome em outro estado é permitido
	_, err = service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: mg.ID})
	assert.NoError(t, err)

	_, err = service.CreateCity(ctx, CityInput{Name: "Santos", StateID: 999})
	assert.Equal(t, common.KindBadRequest, common.KindOf(err))
}

func TestNeighborhood_DuplicatePerCity(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	campinas, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	santos, _ := service.CreateCity(ctx, CityInput{Name: "Santos", StateID: sp.ID})

	_, err := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Centro", CityID: common.OptID{Value: campinas.ID, Valid: true}})
	require.NoError(t, err)

	_, err = service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Centro", CityID: common.OptID{Value: campinas.ID, Valid: true}})
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	_, err = service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Centro", CityID: common.OptID{Value: santos.ID, Valid: true}})
	assert.NoError(t, err)
}

func TestCreateNeighborhood_CityIDAsString(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	router := setupTestRouter(service)

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	city, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})

	body := `{"name":"Cambuí","city_id":"` + jsonID(city.ID) + `"}`
	w := doJSON(router, "POST", "/api/admin/neighborhoods", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "POST", "/api/admin/neighborhoods", `{"name":"Cambuí"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestDeleteState_Guard(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	city, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})

	err := service.DeleteState(ctx, sp.ID)
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	require.NoError(t, service.DeleteCity(ctx, city.ID))
	assert.NoError(t, service.DeleteState(ctx, sp.ID))

	err = service.DeleteState(ctx, sp.ID)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestDeleteCity_Guard(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	city, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	n, _ := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Cambuí", CityID: common.OptID{Value: city.ID, Valid: true}})

	err := service.DeleteCity(ctx, city.ID)
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	require.NoError(t, service.DeleteNeighborhood(ctx, n.ID))

	p := createTestProperty(t, db, "C1", "Campinas", "Outro")
	db.Model(p).Update("city_id", city.ID)

	require.NoError(t, service.DeleteCity(ctx, city.ID))

	// o imóvel perde a referência mas mantém o texto
	var got models.Property
	db.First(&got, p.ID)
	assert.Nil(t, got.CityID)
	assert.Equal(t, "Campinas", got.City)
}

func TestDeleteNeighborhood_GuardByTextAndID(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	city, _ := service.CreateCity(ctx, CityInput{Name: "São Paulo", StateID: sp.ID})
	cityID := common.OptID{Value: city.ID, Valid: true}

	moema, _ := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Moema", CityID: cityID})
	createTestProperty(t, db, "T1", "São Paulo", "Moema")

	err := service.DeleteNeighborhood(ctx, moema.ID)
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	// comparação exata: "moema" minúsculo não conta
	perdizes, _ := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Perdizes", CityID: cityID})
	createTestProperty(t, db, "T2", "São Paulo", "perdizes")
	assert.NoError(t, service.DeleteNeighborhood(ctx, perdizes.ID))

	// referência por id mesmo com o texto diferente
	brooklin, _ := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Brooklin", CityID: cityID})
	p := createTestProperty(t, db, "T3", "São Paulo", "Brooklin Novo")
	db.Model(p).Update("neighborhood_id", brooklin.ID)

	err = service.DeleteNeighborhood(ctx, brooklin.ID)
	assert.Equal(t, common.KindConflict, common.KindOf(err))
}

func TestListLocations_Nested(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	router := setupTestRouter(service)

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	service.CreateState(ctx, StateInput{Name: "Acre", Abbreviation: "AC"})
	campinas, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	service.CreateCity(ctx, CityInput{Name: "Americana", StateID: sp.ID})
	service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Cambuí", CityID: common.OptID{Value: campinas.ID, Valid: true}})
	service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Barão Geraldo", CityID: common.OptID{Value: campinas.ID, Valid: true}})

	tree, err := service.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "Acre", tree[0].Name)
	assert.NotNil(t, tree[0].Cities)
	assert.Empty(t, tree[0].Cities)

	require.Len(t, tree[1].Cities, 2)
	assert.Equal(t, "Americana", tree[1].Cities[0].Name)
	assert.Empty(t, tree[1].Cities[0].Neighborhoods)
	assert.Equal(t, "Campinas", tree[1].Cities[1].Name)
	require.Len(t, tree[1].Cities[1].Neighborhoods, 2)
	assert.Equal(t, "Barão Geraldo", tree[1].Cities[1].Neighborhoods[0].Name)

	w := doJSON(router, "GET", "/api/locations", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cities":[]`)
	assert.Contains(t, w.Body.String(), `"neighborhoods":[]`)
}

func TestPublicCities_PropertyCount(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	campinas, _ := service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	service.CreateCity(ctx, CityInput{Name: "Santos", StateID: sp.ID})

	createTestProperty(t, db, "A", "Campinas", "Centro")
	linked := createTestProperty(t, db, "B", "Campinas (antigo)", "Centro")
	db.Model(linked).Update("city_id", campinas.ID)
	createTestProperty(t, db, "C", "Sorocaba", "Centro")

	cities, err := service.PublicCities(ctx)
	require.NoError(t, err)
	require.Len(t, cities, 2)

	assert.Equal(t, "Campinas", cities[0].Name)
	assert.Equal(t, int64(2), cities[0].PropertyCount)
	assert.Equal(t, "SP", cities[0].StateAbbreviation)
	assert.Equal(t, "Santos", cities[1].Name)
	assert.Equal(t, int64(0), cities[1].PropertyCount)
}

func multipartCity(t *testing.T, name string, stateID uint, image string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("name", name)
	writer.WriteField("state_id", jsonID(stateID))
	if image != "" {
		part, err := writer.CreateFormFile("image", image)
		require.NoError(t, err)
		part.Write([]byte("fake image"))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCityImage_ReplacedOnUpdate(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()
	router := setupTestRouter(service)

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})

	body, contentType := multipartCity(t, "Campinas", sp.ID, "campinas.jpg")
	req, _ := http.NewRequest("POST", "/api/admin/cities", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.City
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.ImageURL)
	oldPath := service.files.Path(*created.ImageURL)
	_, err := os.Stat(oldPath)
	require.NoError(t, err)

	body, contentType = multipartCity(t, "Campinas", sp.ID, "nova.png")
	req, _ = http.NewRequest("PUT", "/api/admin/cities/"+jsonID(created.ID), body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.City
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.ImageURL)
	assert.NotEqual(t, *created.ImageURL, *updated.ImageURL)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(service.files.Path(*updated.ImageURL))
	assert.NoError(t, err)

	// sem imagem nova a atual é mantida
	body, contentType = multipartCity(t, "Campinas", sp.ID, "")
	req, _ = http.NewRequest("PUT", "/api/admin/cities/"+jsonID(created.ID), body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	city, err := service.GetCity(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated.ImageURL, *city.ImageURL)
	assert.Equal(t, "São Paulo", city.StateName)
}

func TestCityUpdate_DuplicateRemovesNewImage(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	service.CreateCity(ctx, CityInput{Name: "Campinas", StateID: sp.ID})
	santos, _ := service.CreateCity(ctx, CityInput{Name: "Santos", StateID: sp.ID})

	_, err := service.UpdateCity(ctx, santos.ID, CityInput{Name: "Campinas", StateID: sp.ID})
	assert.Equal(t, common.KindConflict, common.KindOf(err))

	entries, _ := os.ReadDir(service.files.Dir())
	assert.Empty(t, entries)
}

func TestResolve(t *testing.T) {
	service, _ := setupTestService(t)
	ctx := context.Background()

	sp, _ := service.CreateState(ctx, StateInput{Name: "São Paulo", Abbreviation: "SP"})
	city, _ := service.CreateCity(ctx, CityInput{Name: "São Paulo", StateID: sp.ID})
	n, _ := service.CreateNeighborhood(ctx, NeighborhoodInput{Name: "Moema", CityID: common.OptID{Value: city.ID, Valid: true}})

	cityID, neighborhoodID, err := service.Resolve(ctx, "São Paulo", "Moema")
	require.NoError(t, err)
	require.NotNil(t, cityID)
	require.NotNil(t, neighborhoodID)
	assert.Equal(t, city.ID, *cityID)
	assert.Equal(t, n.ID, *neighborhoodID)

	cityID, neighborhoodID, err = service.Resolve(ctx, "Curitiba", "Batel")
	require.NoError(t, err)
	assert.Nil(t, cityID)
	assert.Nil(t, neighborhoodID)

	// cidade desconhecida não herda bairro homônimo de outra cidade
	cityID, neighborhoodID, err = service.Resolve(ctx, "Curitiba", "Moema")
	require.NoError(t, err)
	assert.Nil(t, cityID)
	assert.Nil(t, neighborhoodID)
}
