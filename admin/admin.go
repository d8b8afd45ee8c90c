package admin

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"versare/common"
)

type AdminModule struct {
	auth *AuthService
}

func NewAdminModule(auth *AuthService) *AdminModule {
	return &AdminModule{auth: auth}
}

func (m *AdminModule) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.POST("/auth/login", m.login)
	api.POST("/auth/logout", m.logout)
	api.GET("/auth/me", m.RequireAuth, m.me)

	admin.GET("/users", m.listUsers)
	admin.GET("/users/:id", m.getUser)
	admin.POST("/users", m.createUser)
	admin.PUT("/users/:id", m.updateUser)
	admin.DELETE("/users/:id", m.deleteUser)
}

func (m *AdminModule) login(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, common.BadRequest("Nome de usuário e senha são obrigatórios"))
		return
	}

	result, err := m.auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, result.Token)
	if err := session.Save(); err != nil {
		common.Logger.WithError(err).Warn("Erro ao gravar cookie de sessão")
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user":       result.User,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}

// logout sempre limpa o cookie; se o token ainda for válido a sessão é apagada.
func (m *AdminModule) logout(c *gin.Context) {
	if _, session, err := m.auth.Authenticate(c.Request.Context(), tokenFromRequest(c)); err == nil {
		if err := m.auth.Logout(c.Request.Context(), session.ID); err != nil {
			common.RespondError(c, err)
			return
		}
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		common.Logger.WithError(err).Warn("Erro ao limpar cookie de sessão")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout realizado com sucesso"})
}

func (m *AdminModule) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c)})
}

func (m *AdminModule) listUsers(c *gin.Context) {
	users, err := m.auth.ListUsers(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (m *AdminModule) getUser(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	user, err := m.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (m *AdminModule) createUser(c *gin.Context) {
	var in UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos: "+err.Error()))
		return
	}

	user, err := m.auth.CreateUser(c.Request.Context(), in)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      user.ID,
		"success": true,
		"message": "Usuário criado com sucesso!",
	})
}

func (m *AdminModule) updateUser(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var in UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, common.BadRequest("Dados inválidos: "+err.Error()))
		return
	}

	user, err := m.auth.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Usuário atualizado com sucesso!",
		"user":    user,
	})
}

func (m *AdminModule) deleteUser(c *gin.Context) {
	id, err := common.ParamID(c, "id")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	actor := CurrentUser(c)
	if actor == nil {
		common.RespondError(c, errNotAuthorized)
		return
	}

	if err := m.auth.DeleteUser(c.Request.Context(), actor.ID, id); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Usuário removido com sucesso!"})
}
