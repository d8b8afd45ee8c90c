package locations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"versare/common"
)

type LocationsModule struct {
	service *Service
}

func NewLocationsModule(service *Service) *LocationsModule {
	return &LocationsModule{service: service}
}

func (m *LocationsModule) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.GET("/locations", m.listLocations)
	api.GET("/cities", m.publicCities)

	admin.GET("/states", m.listStates)
	admin.GET("/states/:id", m.getState)
	admin.POST("/states", m.createState)
	admin.PUT("/states/:id", m.updateState)
	admin.DELETE("/states/:id", m.deleteState)

	admin.GET("/cities", m.listCities)
	admin.GET("/cities/:id", m.getCity)
	admin.POST("/cities", m.createCity)
	admin.PUT("/cities/:id", m.updateCity)
	admin.DELETE("/cities/:id", m.deleteCity)

	admin.GET("/neighborhoods", m.listNeighborhoods)
	admin.GET("/neighborhoods/:id", m.getNeighborhood)
	admin.POST("/neighborhoods", m.createNeighborhood)
	admin.PUT("/neighborhoods/:id", m.updateNeighborhood)
	admin.DELETE("/neighborhoods/:id", m.deleteNeighborhood)
}

// queryID lê um filtro opcional da query string; vazio devolve nil.
func queryID(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, common.BadRequest("Parâmetro " + name + " inválido")
	}
	v := uint(id)
	return &v, nil
}

func (m *LocationsModule) listLocations(c *gin.Context) {
	tree, err := m.service.ListLocations(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (m *LocationsModule) publicCities(c *gin.Context) {
	cities, err := m.service.PublicCities(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

func (m *LocationsModule) listStates(c *gin.Context) {
	states, err := m.service.ListStates(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (m *LocationsModule) getState(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	state, err := m.service.GetState(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (m *LocationsModule) createState(c *gin.Context) {
	var in StateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos"))
		return
	}

	state, err := m.service.CreateState(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

func (m *LocationsModule) updateState(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var in StateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos"))
		return
	}

	state, err := m.service.UpdateState(c.Request.Context(), id, in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (m *LocationsModule) deleteState(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteState(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Estado excluído com sucesso"})
}

func (m *LocationsModule) listCities(c *gin.Context) {
	stateID, err := queryID(c, "state_id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	cities, err := m.service.ListCities(c.Request.Context(), stateID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

func (m *LocationsModule) getCity(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	city, err := m.service.GetCity(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, city)
}

// bindCity aceita o formulário multipart do painel (com "image" opcional) ou JSON.
func bindCity(c *gin.Context) (CityInput, error) {
	var in CityInput

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body struct {
			Name    string       `json:"name"`
			StateID common.OptID `json:"state_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			return in, common.BadRequest("Dados inválidos")
		}
		in.Name = body.Name
		in.StateID = body.StateID.Value
		return in, nil
	}

	in.Name = c.PostForm("name")
	if raw := c.PostForm("state_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, common.BadRequest("Estado inválido")
		}
		in.StateID = uint(id)
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		in.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return in, common.BadRequest("Imagem inválida")
	}
	return in, nil
}

func (m *LocationsModule) createCity(c *gin.Context) {
	in, err := bindCity(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	city, err := m.service.CreateCity(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

func (m *LocationsModule) updateCity(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	in, err := bindCity(c)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	city, err := m.service.UpdateCity(c.Request.Context(), id, in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, city)
}

func (m *LocationsModule) deleteCity(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteCity(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cidade excluída com sucesso"})
}

func (m *LocationsModule) listNeighborhoods(c *gin.Context) {
	cityID, err := queryID(c, "city_id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	stateID, err := queryID(c, "state_id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	rows, err := m.service.ListNeighborhoods(c.Request.Context(), cityID, stateID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (m *LocationsModule) getNeighborhood(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	n, err := m.service.GetNeighborhood(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (m *LocationsModule) createNeighborhood(c *gin.Context) {
	var in NeighborhoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos"))
		return
	}

	n, err := m.service.CreateNeighborhood(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (m *LocationsModule) updateNeighborhood(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var in NeighborhoodInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos"))
		return
	}

	n, err := m.service.UpdateNeighborhood(c.Request.Context(), id, in)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (m *LocationsModule) deleteNeighborhood(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteNeighborhood(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bairro excluído com sucesso"})
}
