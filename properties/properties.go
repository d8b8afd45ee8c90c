package properties

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"versare/common"
)

// ViewTracker registra visitas à página de detalhe de um imóvel.
type ViewTracker interface {
	TrackView(c *gin.Context, propertyID uint)
}

type PropertiesModule struct {
	service *Service
	views   ViewTracker
}

func NewPropertiesModule(service *Service, views ViewTracker) *PropertiesModule {
	return &PropertiesModule{service: service, views: views}
}

func (m *PropertiesModule) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.GET("/properties", m.search)
	api.GET("/properties/search", m.search)
	api.GET("/properties/featured", m.featured)
	api.GET("/properties/:id", m.detail)

	admin.GET("/properties", m.search)
	admin.GET("/properties/:id", m.adminDetail)
	admin.POST("/properties", m.create)
	admin.PUT("/properties/:id", m.update)
	admin.DELETE("/properties/:id", m.delete)

	admin.GET("/properties/:id/images", m.listImages)
	admin.POST("/properties/:id/images", m.uploadImages)
	admin.DELETE("/properties/:id/images/:imageId", m.deleteImage)
	admin.PUT("/properties/:id/images/:imageId/main", m.setMainImage)

	admin.GET("/properties/:id/videos", m.listVideos)
	admin.POST("/properties/:id/videos", m.addVideos)
	admin.DELETE("/properties/:id/videos/:videoId", m.deleteVideo)
}

func (m *PropertiesModule) search(c *gin.Context) {
	filter, err := FilterFromQuery(c.Request.URL.Query())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	properties, err := m.service.Search(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (m *PropertiesModule) featured(c *gin.Context) {
	properties, err := m.service.Featured(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (m *PropertiesModule) detail(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	detail, err := m.service.Detail(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if m.views != nil {
		m.views.TrackView(c, id)
	}
	c.JSON(http.StatusOK, detail)
}

func (m *PropertiesModule) adminDetail(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	detail, err := m.service.Detail(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (m *PropertiesModule) create(c *gin.Context) {
	var in PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos: "+err.Error()))
		return
	}

	property, err := m.service.Create(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      property.ID,
		"success": true,
		"message": "Imóvel adicionado com sucesso!",
	})
}

func (m *PropertiesModule) update(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var in PropertyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos: "+err.Error()))
		return
	}

	if err := m.service.Update(c.Request.Context(), id, in); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Imóvel atualizado com sucesso!",
	})
}

func (m *PropertiesModule) delete(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.Delete(c.Request.Context(), id); err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Imóvel removido com sucesso!",
	})
}

func (m *PropertiesModule) listImages(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	images, err := m.service.ListImages(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (m *PropertiesModule) uploadImages(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, common.BadRequest("Nenhuma imagem enviada"))
		return
	}

	images, err := m.service.UploadImages(c.Request.Context(), id, form.File["images"])
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Imagens enviadas com sucesso!",
		"images":  images,
	})
}

func (m *PropertiesModule) deleteImage(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	imageID, err := common.ParamID(c, "imageId")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Imagem removida com sucesso!"})
}

func (m *PropertiesModule) setMainImage(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	imageID, err := common.ParamID(c, "imageId")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.SetMainImage(c.Request.Context(), id, imageID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Imagem principal definida com sucesso!"})
}

func (m *PropertiesModule) listVideos(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	videos, err := m.service.ListVideos(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (m *PropertiesModule) addVideos(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var body struct {
		Videos []VideoInput `json:"videos"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, common.BadRequest("Nenhum vídeo válido enviado"))
		return
	}

	videos, err := m.service.AddVideos(c.Request.Context(), id, body.Videos)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("%d vídeos adicionados com sucesso", len(videos)),
		"property_id": id,
		"videos":      videos,
	})
}

func (m *PropertiesModule) deleteVideo(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	videoID, err := common.ParamID(c, "videoId")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := m.service.DeleteVideo(c.Request.Context(), id, videoID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vídeo removido com sucesso!"})
}
