package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractUintParams проверяет числовые параметры URL (course_id, test_id, ...)
// и сохраняет их в контексте Gin под теми же именами как uint.
func ExtractUintParams(paramNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range paramNames {
			raw := c.Param(name)
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || id == 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "error_type": "invalid_param"})
				return
			}
			c.Set(name, uint(id))
		}
		c.Next()
	}
}

// GetUintParam возвращает параметр, сохраненный ExtractUintParams
func GetUintParam(c *gin.Context, name string) uint {
	value, exists := c.Get(name)
	if !exists {
		return 0
	}
	id, _ := value.(uint)
	return id
}
