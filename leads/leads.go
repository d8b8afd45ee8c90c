package leads

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"versare/common"
	"versare/models"
)

type LeadsModule struct {
	service *Service
}

func NewLeadsModule(service *Service) *LeadsModule {
	return &LeadsModule{service: service}
}

func (m *LeadsModule) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.POST("/contacts", m.createContact)
	api.POST("/contact", m.createContact)
	api.POST("/whatsapp-message", m.createWhatsapp)

	admin.GET("/contacts", m.listContacts)
	admin.GET("/contacts/:id", m.getContact)
	admin.PUT("/contacts/:id", m.updateContactStatus)
	admin.PUT("/contacts/:id/respond", m.respondContact)
	admin.PUT("/contacts/:id/read", m.readContact)
	admin.DELETE("/contacts/:id", m.deleteContact)

	admin.GET("/whatsapp-messages", m.listWhatsapp)
	admin.GET("/whatsapp-messages/:id", m.getWhatsapp)
	admin.PUT("/whatsapp-messages/:id/viewed", m.markWhatsappViewed)
	admin.PUT("/whatsapp-messages/:id", m.updateWhatsappStatus)
	admin.DELETE("/whatsapp-messages/:id", m.deleteWhatsapp)
}

type statusBody struct {
	Status string `json:"status" binding:"required"`
}

func (m *LeadsModule) createContact(c *gin.Context) {
	var in ContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Todos os campos são obrigatórios"))
		return
	}

	contact, err := m.service.CreateContact(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      contact.ID,
		"success": true,
		"message": "Contato enviado com sucesso!",
	})
}

func (m *LeadsModule) listContacts(c *gin.Context) {
	contacts, err := m.service.ListContacts(c.Request.Context(), strings.TrimSpace(c.Query("status")))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (m *LeadsModule) getContact(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	contact, err := m.service.GetContact(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (m *LeadsModule) updateContactStatus(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, common.BadRequest("Status é obrigatório"))
		return
	}

	if err := m.service.UpdateContactStatus(c.Request.Context(), id, body.Status); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status do contato atualizado com sucesso!"})
}

// respondContact é o atalho do painel para "respondido".
func (m *LeadsModule) respondContact(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.UpdateContactStatus(c.Request.Context(), id, models.LeadStatusResponded); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contato marcado como respondido!"})
}

func (m *LeadsModule) readContact(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.MarkContactRead(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contato marcado como lido!"})
}

func (m *LeadsModule) deleteContact(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteContact(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contato removido com sucesso!"})
}

func (m *LeadsModule) createWhatsapp(c *gin.Context) {
	var in WhatsappInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos: "+err.Error()))
		return
	}

	msg, err := m.service.CreateWhatsappMessage(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      msg.ID,
		"success": true,
		"message": "Mensagem registrada com sucesso!",
	})
}

func (m *LeadsModule) listWhatsapp(c *gin.Context) {
	var viewed *bool
	if raw := strings.TrimSpace(c.Query("viewed")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondError(c, common.BadRequest("Parâmetro viewed inválido"))
			return
		}
		viewed = &v
	}

	messages, err := m.service.ListWhatsappMessages(c.Request.Context(), strings.TrimSpace(c.Query("status")), viewed)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (m *LeadsModule) getWhatsapp(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	msg, err := m.service.GetWhatsappMessage(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (m *LeadsModule) markWhatsappViewed(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	msg, err := m.service.MarkWhatsappViewed(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (m *LeadsModule) updateWhatsappStatus(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, common.BadRequest("Status é obrigatório"))
		return
	}

	if err := m.service.UpdateWhatsappStatus(c.Request.Context(), id, body.Status); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status da mensagem atualizado com sucesso!"})
}

func (m *LeadsModule) deleteWhatsapp(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteWhatsappMessage(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Mensagem removida com sucesso!"})
}
