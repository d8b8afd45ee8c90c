package cache

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// responseWriter segura o corpo para calcular a etiqueta antes de enviar.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETagMiddleware responde GETs de JSON com ETag e devolve 304 quando o
// cliente já tem a mesma versão.
func ETagMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		original := c.Writer
		writer := &responseWriter{
			ResponseWriter: original,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		c.Writer = original
		status := original.Status()

		if status != http.StatusOK || !strings.HasPrefix(original.Header().Get("Content-Type"), "application/json") {
			original.WriteHeader(status)
			original.Write(writer.body.Bytes())
			return
		}

		etag := ETag(writer.body.Bytes())
		original.Header().Set("ETag", etag)
		original.Header().Set("Cache-Control", "no-cache")

		if Matches(c.GetHeader("If-None-Match"), etag) {
			original.Header().Del("Content-Type")
			original.Header().Del("Content-Length")
			original.WriteHeader(http.StatusNotModified)
			original.WriteHeaderNow()
			return
		}

		original.WriteHeader(status)
		original.Write(writer.body.Bytes())
	}
}
