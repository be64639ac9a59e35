package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memoria/pkg/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func JWTAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {

	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and
// lets anonymous requests through untouched.
func OptionalAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := jwtManager.ValidateToken(tokenString); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextRole, claims.Role)
			}
		}
		c.Next()
	}
}

func RoleMiddleware(requiredRole string) gin.HandlerFunc {

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)

		if role != requiredRole {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID returns the authenticated caller, or uuid.Nil for anonymous
// requests.
func CurrentUserID(c *gin.Context) uuid.UUID {
	raw := c.GetString(ContextUserID)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
