package settings

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"versare/common"
)

type SettingsModule struct {
	service *Service
}

func NewSettingsModule(service *Service) *SettingsModule {
	return &SettingsModule{service: service}
}

func (m *SettingsModule) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.GET("/settings", m.public)

	admin.GET("/settings", m.all)
	admin.POST("/settings", m.save)
	admin.PUT("/settings", m.save)
}

func (m *SettingsModule) public(c *gin.Context) {
	settings, err := m.service.Public(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (m *SettingsModule) all(c *gin.Context) {
	settings, err := m.service.All(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (m *SettingsModule) save(c *gin.Context) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, common.BadRequest("Nenhuma configuração enviada"))
		return
	}

	values, err := ValuesFromJSON(body)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.Save(c.Request.Context(), values); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Configurações salvas com sucesso!"})
}
