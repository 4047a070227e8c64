package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/edu-api/internal/pkg/access"
	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
	"github.com/yourusername/edu-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextKeyIdentity = "identity"
	ContextKeyUserID   = "user_id"
)

// AuthMiddleware проверяет access-токены, выданные сервисом авторизации
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// RequireAuth проверяет заголовок Authorization: Bearer {token}
// и сохраняет access.Identity в контексте. Заблокированный пользователь получает 403.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, apperrors.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired", "error_type": "token_expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}

		if claims.Blocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Blocked", "error_type": "user_blocked"})
			return
		}

		identity := access.NewIdentity(claims.UserID, claims.Blocked, claims.Permissions)
		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyUserID, claims.UserID)

		c.Next()
	}
}

// GetIdentity возвращает пользователя, сохраненного RequireAuth
func GetIdentity(c *gin.Context) (access.Identity, bool) {
	value, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return access.Identity{}, false
	}
	identity, ok := value.(access.Identity)
	return identity, ok
}
