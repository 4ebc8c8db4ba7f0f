package middleware

import (
	"Bulletin/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败或缺失则 UID 为 0
func AuthOptionalMiddleware(tm *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Set("user_id", uint64(0))
			c.Next()
			return
		}

		claims, err := tm.ValidateToken(tokenString)
		if err != nil {
			c.Set("user_id", uint64(0))
		} else {
			setIdentity(c, claims)
		}

		c.Next()
	}
}
