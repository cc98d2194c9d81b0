package middleware

import (
	"net/http"

	"phreddit/internal/utils"

	"github.com/gin-gonic/gin"
)

// PurgeCacheOnWrite empties the response cache after every successful non-GET
// request, except on the route patterns listed in skip.
func PurgeCacheOnWrite(cache *utils.Cache, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, path := range skip {
		skipped[path] = true
	}
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if skipped[c.FullPath()] {
			return
		}
		if c.Writer.Status() < http.StatusBadRequest {
			cache.Purge()
		}
	}
}
