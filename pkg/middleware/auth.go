package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sofraeats/marketplace/pkg/common"
	"github.com/sofraeats/marketplace/pkg/models"
)

// Claims represents JWT claims issued by the auth backend
type Claims struct {
	ProfileID uuid.UUID          `json:"profile_id"`
	Email     string             `json:"email"`
	Role      models.ProfileRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens and stores the caller's identity in
// the request context. Token issuance is the auth backend's job; this layer
// only verifies.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		c.Set("profile_id", claims.ProfileID)
		c.Set("profile_email", claims.Email)
		c.Set("profile_role", claims.Role)
		c.Set("auth_subject", claims.Subject)

		c.Next()
	}
}

// RequireRole middleware checks if the caller has one of the required roles
func RequireRole(roles ...models.ProfileRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("profile_role")
		if !exists {
			common.ErrorResponse(c, http.StatusUnauthorized, "profile role not found")
			c.Abort()
			return
		}

		role := value.(models.ProfileRole)

		hasRole := false
		for _, required := range roles {
			if role == required {
				hasRole = true
				break
			}
		}

		if !hasRole {
			common.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetProfileID extracts the authenticated profile ID from context
func GetProfileID(c *gin.Context) (uuid.UUID, error) {
	profileID, exists := c.Get("profile_id")
	if !exists {
		return uuid.Nil, common.ErrUnauthorized
	}
	return profileID.(uuid.UUID), nil
}

// GetAuthID extracts the auth identity (the token subject) from context. On
// first contact the token carries a subject but no profile yet; registration
// resolves the subject to a profile row.
func GetAuthID(c *gin.Context) (uuid.UUID, error) {
	value, exists := c.Get("auth_subject")
	if !exists {
		return uuid.Nil, common.ErrUnauthorized
	}
	subject, _ := value.(string)
	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, common.ErrUnauthorized
	}
	return id, nil
}

// GetProfileRole extracts the authenticated profile role from context
func GetProfileRole(c *gin.Context) (models.ProfileRole, error) {
	role, exists := c.Get("profile_role")
	if !exists {
		return "", common.ErrUnauthorized
	}
	return role.(models.ProfileRole), nil
}
