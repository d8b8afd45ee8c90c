package admin

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"versare/common"
	"versare/models"
)

const (
	sessionTokenKey = "token"
	contextUserKey  = "user"
	contextSession  = "session_id"
)

// tokenFromRequest aceita Authorization: Bearer ou o token guardado no cookie de sessão.
func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if token, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok {
		return token
	}
	return ""
}

// RequireAuth barra a requisição com 401 se não houver sessão válida.
func (m *AdminModule) RequireAuth(c *gin.Context) {
	user, session, err := m.auth.Authenticate(c.Request.Context(), tokenFromRequest(c))
	if err != nil {
		common.RespondError(c, err)
		c.Abort()
		return
	}

	c.Set(contextUserKey, user)
	c.Set(contextSession, session.ID)
	c.Next()
}

// CurrentUser devolve o usuário autenticado pelo RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	if user, ok := c.Get(contextUserKey); ok {
		return user.(*models.User)
	}
	return nil
}
