package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID lê um id numérico da rota.
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, BadRequest("ID inválido")
	}
	return uint(id), nil
}
