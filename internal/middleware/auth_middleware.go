package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store user information in Gin context
const UserContextKey = "user"

// UserContext represents the authenticated user's information
type UserContext struct {
	UserID uuid.UUID   `json:"user_id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// IsAdmin reports whether the user is an administrator
func (u UserContext) IsAdmin() bool {
	return u.Role == models.RoleAdmin
}

// AuthMiddleware creates a middleware that validates JWT tokens. Websocket
// upgrades may pass the token as ?token= since browsers cannot set headers there.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, code, message := bearerToken(c)
		if code != "" {
			authFailed(c, code, message)
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				logrus.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).Info("AUTH FAILED: token expired")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please refresh your token.",
					"code":    "TOKEN_EXPIRED",
				})
				return
			}
			logrus.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path,
				"ip":    c.ClientIP(),
				"error": err.Error(),
			}).Warn("AUTH FAILED: invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Invalid access token",
				"code":    "INVALID_TOKEN",
			})
			return
		}

		c.Set(UserContextKey, UserContext{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   models.Role(claims.Role),
		})
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, message string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, "", ""
			}
		}
		return "", "MISSING_AUTH_HEADER", "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>"
	}

	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "INVALID_AUTH_FORMAT", "Token cannot be empty"
	}
	return token, "", ""
}

func authFailed(c *gin.Context, code, message string) {
	logrus.WithFields(logrus.Fields{
		"path": c.Request.URL.Path,
		"ip":   c.ClientIP(),
		"code": code,
	}).Info("AUTH FAILED")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
		"code":    code,
	})
}

// RequireRole creates a middleware that checks if user has one of the roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		for _, role := range roles {
			if userCtx.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// GetUserContext retrieves the user context from Gin context
func GetUserContext(c *gin.Context) (UserContext, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return UserContext{}, false
	}

	userCtx, ok := value.(UserContext)
	if !ok {
		return UserContext{}, false
	}

	return userCtx, true
}

// MustGetUserContext retrieves the user context or panics (use only after AuthMiddleware)
func MustGetUserContext(c *gin.Context) UserContext {
	userCtx, exists := GetUserContext(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return userCtx
}
