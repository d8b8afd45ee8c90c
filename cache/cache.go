package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ETag gera a etiqueta forte de um corpo de resposta.
func ETag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}

// Matches confere o If-None-Match, que pode trazer várias etiquetas, fracas ou "*".
func Matches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
