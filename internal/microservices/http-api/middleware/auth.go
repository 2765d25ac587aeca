package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares.
const (
	ContextClaims = "claims"
	ContextUserID = "userID"
	ContextRole   = "role"
)

// TokenValidator is the part of service.AuthService the middlewares need.
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// RoleSource reports a user's role as currently stored. Access tokens carry
// the role from when they were issued; admin routes check it again here.
type RoleSource interface {
	CurrentRole(ctx context.Context, userID string) (string, error)
}

// Authenticator validates tokens and re-reads roles.
type Authenticator interface {
	TokenValidator
	RoleSource
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *service.Claims) {
	c.Set(ContextClaims, claims)
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
}

// AuthMiddleware is a Gin middleware for JWT authentication of API requests
// It checks for the presence and validity of a JWT token in the Authorization header
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through. Public reads use it to mark isMine and myVote.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := validator.ValidateToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole checks if the user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequireAdmin requires the admin role in the token claims and, when roles is
// non-nil, in storage as well, so a demoted or deleted admin is turned away
// before the access token expires.
func RequireAdmin(roles RoleSource) gin.HandlerFunc {
	byClaims := RequireRole(models.RoleAdmin)
	if roles == nil {
		return byClaims
	}
	return func(c *gin.Context) {
		if byClaims(c); c.IsAborted() {
			return
		}
		role, err := roles.CurrentRole(c.Request.Context(), UserID(c))
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		case role != models.RoleAdmin:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Set(ContextRole, role)
		c.Next()
	}
}

// UserID returns the authenticated user's id, or "" for anonymous callers.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
