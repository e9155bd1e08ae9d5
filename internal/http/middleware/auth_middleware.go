package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
)

// AuthMiddleware accepts a bearer token only while its session is alive
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			}
			return
		}

		// logout revokes the session, so a token without one is never accepted
		if claims.SessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		session, err := sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil || session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session invalid or expired"})
			return
		}
		if session.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Session user mismatch"})
			return
		}

		c.Set(KeyUserID, strconv.FormatUint(uint64(claims.UserID), 10))
		c.Set(KeyUserRole, claims.Role)
		c.Set(KeySessionID, claims.SessionID)
		c.Next()
	}
}

// Actor returns the authenticated caller stored by AuthMiddleware
func Actor(c *gin.Context) (domain.Actor, bool) {
	rawID, ok := c.Get(KeyUserID)
	if !ok {
		return domain.Actor{}, false
	}
	id, err := strconv.ParseUint(rawID.(string), 10, 64)
	if err != nil {
		return domain.Actor{}, false
	}
	role, _ := c.Get(KeyUserRole)
	roleStr, _ := role.(string)
	return domain.Actor{UserID: uint(id), Role: domain.Role(roleStr)}, true
}
